// Command dmd downloads minecraft-data block tables for the block registry.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
)

func main() {
	var (
		base     = flag.String("base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
		platform = flag.String("platform", "pc", "platform of schemas")
		ver      = flag.String("version", "1.8", "version of schemas")
		out      = flag.String("o", "./data/blocks", "output dir path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *out == "" || *platform == "" || *ver == "" {
		log.Error("output dir, platform and version are required")
		os.Exit(2)
	}

	path := fmt.Sprintf("%s/%s-%s", *out, *platform, *ver)
	if err := os.RemoveAll(path); err != nil {
		log.Error("clean output dir", "path", path, "error", err)
		os.Exit(1)
	}

	log.Info("start downloading block data", "path", path)

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.8
	url := fmt.Sprintf("git::%s//data/%s/%s", *base, *platform, *ver)
	if err := get.Get(path, url); err != nil {
		log.Error("download block data", "url", url, "error", err)
		os.Exit(1)
	}

	blocks := filepath.Join(path, "blocks.json")
	reg, err := gamedata.LoadBlocksFile(blocks, gamedata.Default())
	if err != nil {
		log.Error("validate block data", "path", blocks, "error", err)
		os.Exit(1)
	}

	log.Info("done downloading block data", "path", blocks, "blocks", len(reg.All()))
}

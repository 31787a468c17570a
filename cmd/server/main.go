package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/voxel-engine/internal/config"
	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/storage"
	"github.com/OCharnyshevich/voxel-engine/internal/world"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/gen"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "", "YAML config file (default <data-dir>/config.yaml)")

	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "world generator: default or flat")
	flag.IntVar(&cfg.SpawnRadius, "spawn-radius", cfg.SpawnRadius, "chunks generated around spawn at startup")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")
	flag.IntVar(&cfg.RandomTickSpeed, "random-tick-speed", cfg.RandomTickSpeed, "random ticks per chunk section per tick")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers (0 = GOMAXPROCS)")
	flag.IntVar(&cfg.MaxTicketsPerTick, "max-tickets", cfg.MaxTicketsPerTick, "block updates dispatched per tick")
	flag.Float64Var(&cfg.CaveThreshold, "cave-threshold", cfg.CaveThreshold, "cave noise threshold")
	flag.StringVar(&cfg.BlockData, "block-data", cfg.BlockData, "minecraft-data blocks.json to merge into the block table")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for config and level data")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		log.Error("open storage", "error", err)
		os.Exit(1)
	}

	fromFile := config.DefaultConfig()
	if *configPath != "" {
		if fromFile, err = config.Load(*configPath); err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
	} else if err := store.LoadConfig(fromFile); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	blocks := gamedata.Default()
	if cfg.BlockData != "" {
		if blocks, err = gamedata.LoadBlocksFile(cfg.BlockData, blocks); err != nil {
			log.Error("load block data", "error", err)
			os.Exit(1)
		}
		log.Info("loaded block data", "path", cfg.BlockData, "blocks", len(blocks.All()))
	}

	wcfg := world.Config{
		Log:               log,
		Blocks:            blocks,
		TickRate:          cfg.TickRate,
		RandomTickSpeed:   cfg.RandomTickSpeed,
		MaxTicketsPerTick: cfg.MaxTicketsPerTick,
		Workers:           cfg.Workers,
	}

	lvl, err := store.LoadLevel()
	if err != nil {
		log.Error("load level", "error", err)
		os.Exit(1)
	}
	if lvl != nil {
		if lvl.Seed != cfg.Seed || lvl.Generator != cfg.GeneratorType {
			log.Warn("existing level overrides configured seed and generator", "seed", lvl.Seed, "generator", lvl.Generator)
		}
		cfg.Seed, cfg.GeneratorType = lvl.Seed, lvl.Generator
		if id, err := uuid.Parse(lvl.ID); err == nil {
			wcfg.ID = id
		}
		wcfg.Age, wcfg.TimeOfDay = lvl.Age, lvl.TimeOfDay
	}
	wcfg.Seed = cfg.Seed

	switch cfg.GeneratorType {
	case "flat":
		wcfg.Generator = gen.NewFlatGenerator(blocks)
	default:
		wcfg.Generator = gen.NewDefaultGenerator(gen.Options{
			Seed:          cfg.Seed,
			CaveThreshold: cfg.CaveThreshold,
			Blocks:        blocks,
		})
	}

	w, err := world.New(wcfg)
	if err != nil {
		log.Error("create world", "error", err)
		os.Exit(1)
	}
	if err := store.LoadWorld(w); err != nil {
		log.Error("load world", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("world starting",
		"id", w.ID().String(),
		"generator", cfg.GeneratorType,
		"seed", cfg.Seed,
		"spawnRadius", cfg.SpawnRadius,
	)
	if _, err := w.GenerateRadius(ctx, chunk.Pos{}, cfg.SpawnRadius); err != nil {
		log.Error("pre-generate spawn", "error", err)
	}
	log.Info("spawn ready", "y", w.SpawnHeight())

	if err := w.Run(ctx); err != nil {
		log.Error("world error", "error", err)
	}

	if err := store.SaveLevel(storage.LevelFromWorld(w, cfg.GeneratorType)); err != nil {
		log.Error("save level", "error", err)
		os.Exit(1)
	}
	if err := store.SaveWorld(w); err != nil {
		log.Error("save world", "error", err)
		os.Exit(1)
	}
	log.Info("world saved")
}

package gamedata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
)

// rawBlock is one entry of minecraft-data's blocks.json.
type rawBlock struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	DisplayName  string          `json:"displayName"`
	Hardness     *float64        `json:"hardness"`
	StackSize    int             `json:"stackSize"`
	Diggable     bool            `json:"diggable"`
	BoundingBox  string          `json:"boundingBox"`
	Material     string          `json:"material"`
	Transparent  bool            `json:"transparent"`
	EmitLight    int             `json:"emitLight"`
	FilterLight  int             `json:"filterLight"`
	Resistance   float64         `json:"resistance"`
	HarvestTools map[string]bool `json:"harvestTools"`
}

// LoadBlocks reads a blocks.json document and merges it onto base. Data
// fields come from the document; engine flags of blocks already in base
// are kept. Blocks unknown to base are added as solid when their bounding
// box is a full block.
func LoadBlocks(r io.Reader, base *Registry) (*Registry, error) {
	var raw []rawBlock
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}

	merged := base.All()
	index := make(map[int]int, len(merged))
	for i, b := range merged {
		index[b.ID] = i
	}

	for _, rb := range raw {
		if _, err := block.New(rb.ID); err != nil {
			return nil, fmt.Errorf("block %q: %w", rb.Name, err)
		}
		tools, err := parseHarvestTools(rb.HarvestTools)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", rb.Name, err)
		}

		b := Block{Solid: rb.BoundingBox == "block"}
		if i, ok := index[rb.ID]; ok {
			b = merged[i]
		}
		b.ID = rb.ID
		b.Name = rb.Name
		b.DisplayName = rb.DisplayName
		b.Hardness = rb.Hardness
		b.StackSize = rb.StackSize
		b.Diggable = rb.Diggable
		b.BoundingBox = rb.BoundingBox
		b.Material = rb.Material
		b.Transparent = rb.Transparent
		b.EmitLight = rb.EmitLight
		b.FilterLight = rb.FilterLight
		b.Resistance = rb.Resistance
		b.HarvestTools = tools

		if i, ok := index[rb.ID]; ok {
			merged[i] = b
		} else {
			index[rb.ID] = len(merged)
			merged = append(merged, b)
		}
	}
	return NewRegistry(merged), nil
}

// LoadBlocksFile reads blocks.json from path and merges it onto base.
func LoadBlocksFile(path string, base *Registry) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open block data: %w", err)
	}
	defer f.Close()

	reg, err := LoadBlocks(f, base)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return reg, nil
}

func parseHarvestTools(raw map[string]bool) (map[int]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tools := make(map[int]bool, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("harvest tool id %q: %w", k, err)
		}
		tools[id] = v
	}
	return tools, nil
}

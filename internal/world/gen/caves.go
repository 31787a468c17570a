package gen

import (
	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

const (
	// CaveMinY and CaveMaxY bound the band the carver works in.
	CaveMinY = BedrockTop + 1
	CaveMaxY = 60

	// DefaultCaveThreshold is the noise value above which blocks are carved.
	DefaultCaveThreshold = 0.45
)

// CaveCarver removes carvable blocks where 3D noise exceeds a threshold.
type CaveCarver struct {
	noise     *NoiseField
	threshold float64
	blocks    gamedata.BlockRegistry
}

// NewCaveCarver creates a CaveCarver from a world seed. A threshold <= 0
// selects DefaultCaveThreshold.
func NewCaveCarver(seed int64, threshold float64, blocks gamedata.BlockRegistry) *CaveCarver {
	if threshold <= 0 {
		threshold = DefaultCaveThreshold
	}
	return &CaveCarver{
		noise:     NewNoiseField(seed + caveSalt),
		threshold: threshold,
		blocks:    blocks,
	}
}

// Carve replaces carvable blocks with air inside the cave band. Bedrock and
// ores are never touched. It returns the number of blocks removed.
func (cc *CaveCarver) Carve(c *chunk.Chunk) int {
	lo, _ := c.Pos().Bounds()
	carved := 0
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			bx := float64(lo.X + x)
			bz := float64(lo.Z + z)
			for y := CaveMinY; y <= CaveMaxY; y++ {
				id, _ := c.Block(x, y, z)
				if !cc.carvable(id) {
					continue
				}
				if cc.noise.Noise3(bx/32.0, float64(y)/20.0, bz/32.0, 2) > cc.threshold {
					c.SetBlock(x, y, z, block.Air)
					carved++
				}
			}
		}
	}
	return carved
}

func (cc *CaveCarver) carvable(id block.ID) bool {
	if id == block.Air || id == block.Bedrock {
		return false
	}
	b := gamedata.Lookup(cc.blocks, id)
	return b.Carvable && !b.Ore
}

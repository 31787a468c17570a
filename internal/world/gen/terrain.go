package gen

import (
	"math"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

const (
	// BedrockTop is the highest y filled with bedrock.
	BedrockTop = -60
	// SeaLevel is the highest y filled with water above low terrain.
	SeaLevel = 0

	subsurfaceDepth = 4
)

// TerrainBuilder derives surface heights and fills block columns.
type TerrainBuilder struct {
	height    *NoiseField
	roughness *NoiseField
}

// NewTerrainBuilder creates a TerrainBuilder from a world seed.
func NewTerrainBuilder(seed int64) *TerrainBuilder {
	return &TerrainBuilder{
		height:    NewNoiseField(seed + heightSalt),
		roughness: NewNoiseField(seed + roughnessSalt),
	}
}

// SurfaceHeight returns the y of the surface block at world column (x, z)
// for biome b.
func (t *TerrainBuilder) SurfaceHeight(x, z int, b biome.Biome) int {
	base := t.height.Noise(float64(x)/256.0, float64(z)/256.0, 6)
	detail := t.roughness.Noise(float64(x)/32.0, float64(z)/32.0, 3)

	h := b.BaseHeight + float64(base*b.HeightVariation) + float64(detail*b.Roughness)
	h = math.Floor(h)
	if h < chunk.MinY {
		h = chunk.MinY
	}
	if h > chunk.MaxY-1 {
		h = chunk.MaxY - 1
	}
	return int(h)
}

// BuildColumn returns the blocks of world column (x, z) for biome b,
// index 0 being y = -64.
func (t *TerrainBuilder) BuildColumn(x, z int, b biome.Biome) [chunk.Height]block.ID {
	return FillColumn(t.SurfaceHeight(x, z, b), b)
}

// FillColumn lays out a column with its surface at y = surface. Rules are
// applied in order and the first match wins:
//
//	y <= -60                 bedrock
//	y <  surface-4           biome stone
//	y <  surface             biome subsurface
//	y == surface             biome surface
//	y <= 0                   water
//	otherwise                air
func FillColumn(surface int, b biome.Biome) [chunk.Height]block.ID {
	var col [chunk.Height]block.ID
	for i := range col {
		y := i + chunk.MinY
		switch {
		case y <= BedrockTop:
			col[i] = block.Bedrock
		case y < surface-subsurfaceDepth:
			col[i] = b.Stone
		case y < surface:
			col[i] = b.Subsurface
		case y == surface:
			col[i] = b.Surface
		case y <= SeaLevel:
			col[i] = block.Water
		default:
			col[i] = block.Air
		}
	}
	return col
}

package gen

import (
	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

// FlatHeight is the y of the grass layer produced by FlatGenerator.
const FlatHeight = 3

// FlatGenerator generates a superflat world:
// bedrock up to y=-60, stone to y=-1, dirt y=0..2, grass y=3.
type FlatGenerator struct {
	filter func(block.ID) uint8
}

// NewFlatGenerator creates a FlatGenerator. The registry is used for lighting.
func NewFlatGenerator(blocks gamedata.BlockRegistry) *FlatGenerator {
	return &FlatGenerator{filter: gamedata.LightFilter(blocks)}
}

func (g *FlatGenerator) Generate(pos chunk.Pos) (*chunk.Chunk, error) {
	if err := checkCoordinate(pos); err != nil {
		return nil, err
	}

	var col [chunk.Height]block.ID
	for i := range col {
		y := i + chunk.MinY
		switch {
		case y <= BedrockTop:
			col[i] = block.Bedrock
		case y < 0:
			col[i] = block.Stone
		case y < FlatHeight:
			col[i] = block.Dirt
		case y == FlatHeight:
			col[i] = block.Grass
		}
	}

	c := chunk.New(pos)
	for i := 0; i < chunk.BiomeCells; i++ {
		for j := 0; j < chunk.BiomeCells; j++ {
			c.SetBiomeCell(i, j, biome.PlainsID)
		}
	}
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			c.SetColumn(x, z, &col)
		}
	}
	c.RecomputeHeightMap()
	c.SetGenerated(true)
	c.Relight(g.filter)
	c.SetPopulated(true)
	return c, nil
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return FlatHeight
}

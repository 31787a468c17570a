// Package gen produces chunk terrain deterministically from a world seed.
//
// The default pipeline runs in a fixed order: biome grid, terrain columns,
// cave carving, ore veins, then decoration. Every stage depends only on the
// seed and the chunk coordinate, so chunks can be generated in parallel.
package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

// MaxChunkCoord is the largest absolute chunk coordinate that can be generated.
const MaxChunkCoord = 1_875_000

// Generator produces chunks deterministically from a seed.
type Generator interface {
	Generate(pos chunk.Pos) (*chunk.Chunk, error)
	HeightAt(blockX, blockZ int) int
}

// Options configures a DefaultGenerator.
type Options struct {
	Seed int64
	// CaveThreshold overrides DefaultCaveThreshold when positive.
	CaveThreshold float64
	// Ores overrides DefaultOres when non-nil.
	Ores []OreKind
	// Blocks supplies carve eligibility and light filtering.
	// Defaults to gamedata.Default().
	Blocks gamedata.BlockRegistry
	// Biomes overrides the noise-driven BiomeSource.
	Biomes BiomeProvider
}

// DefaultGenerator produces terrain with biomes, caves, ores and trees.
type DefaultGenerator struct {
	seed    int64
	biomes  BiomeProvider
	terrain *TerrainBuilder
	caves   *CaveCarver
	ores    *OreGenerator
	trees   *TreeGenerator
	filter  func(block.ID) uint8
}

// NewDefaultGenerator creates a DefaultGenerator.
func NewDefaultGenerator(opts Options) *DefaultGenerator {
	if opts.Blocks == nil {
		opts.Blocks = gamedata.Default()
	}
	if opts.Biomes == nil {
		opts.Biomes = NewBiomeSource(opts.Seed)
	}
	return &DefaultGenerator{
		seed:    opts.Seed,
		biomes:  opts.Biomes,
		terrain: NewTerrainBuilder(opts.Seed),
		caves:   NewCaveCarver(opts.Seed, opts.CaveThreshold, opts.Blocks),
		ores:    NewOreGenerator(opts.Seed, opts.Ores),
		trees:   NewTreeGenerator(opts.Seed),
		filter:  gamedata.LightFilter(opts.Blocks),
	}
}

// Generate runs the full pipeline for pos. On failure no chunk is returned
// and the error is a *GenerationError naming the failed stage.
func (g *DefaultGenerator) Generate(pos chunk.Pos) (*chunk.Chunk, error) {
	if err := checkCoordinate(pos); err != nil {
		return nil, err
	}

	c := chunk.New(pos)
	lo, _ := pos.Bounds()

	// Biome grid: one sample at the centre of each 4×4 cell.
	var cells [chunk.BiomeCells * chunk.BiomeCells]biome.Biome
	for j := 0; j < chunk.BiomeCells; j++ {
		for i := 0; i < chunk.BiomeCells; i++ {
			b := g.biomes.BiomeAt(cellCenter(lo.X+i*4, lo.Z+j*4))
			if _, err := biome.ByID(b.ID); err != nil {
				return nil, &GenerationError{Pos: pos, Stage: StageBiome, Err: err}
			}
			cells[j*chunk.BiomeCells+i] = b
			c.SetBiomeCell(i, j, b.ID)
		}
	}

	// Terrain columns.
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			b := cells[(z>>2)*chunk.BiomeCells+x>>2]
			col := g.terrain.BuildColumn(lo.X+x, lo.Z+z, b)
			c.SetColumn(x, z, &col)
			markLiquids(c, x, z, &col)
		}
	}
	c.RecomputeHeightMap()

	g.caves.Carve(c)
	c.RecomputeHeightMap()

	if _, err := g.ores.Place(c); err != nil {
		return nil, &GenerationError{Pos: pos, Stage: StageOres, Err: err}
	}
	c.RecomputeHeightMap()
	c.SetGenerated(true)

	if err := g.trees.Decorate(c); err != nil {
		return nil, &GenerationError{Pos: pos, Stage: StageDecorate, Err: err}
	}
	c.Relight(g.filter)
	c.RecomputeHeightMap()
	c.SetPopulated(true)
	return c, nil
}

// HeightAt returns the terrain surface height at a world column, before
// caves and decoration.
func (g *DefaultGenerator) HeightAt(blockX, blockZ int) int {
	b := g.biomes.BiomeAt(cellCenter(blockX, blockZ))
	return g.terrain.SurfaceHeight(blockX, blockZ, b)
}

// Seed returns the world seed.
func (g *DefaultGenerator) Seed() int64 { return g.seed }

// markLiquids gives every water block of a column a full source state.
func markLiquids(c *chunk.Chunk, x, z int, col *[chunk.Height]block.ID) {
	for i, id := range col {
		if id == block.Water {
			c.SetState(x, chunk.MinY+i, z, chunk.LiquidState(0))
		}
	}
}

func checkCoordinate(pos chunk.Pos) error {
	if pos.X < -MaxChunkCoord || pos.X > MaxChunkCoord || pos.Z < -MaxChunkCoord || pos.Z > MaxChunkCoord {
		return &GenerationError{
			Pos:   pos,
			Stage: StageCoordinate,
			Err:   fmt.Errorf("%w: %v exceeds ±%d", ErrInvalidCoordinate, pos, MaxChunkCoord),
		}
	}
	return nil
}

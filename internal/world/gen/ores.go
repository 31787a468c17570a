package gen

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

// OreKind configures one kind of ore vein.
type OreKind struct {
	Block    block.ID
	MinY     int
	MaxY     int
	Attempts int // veins per chunk before biome scaling
	VeinSize int // random walk steps per vein
}

// DefaultOres is the ore table used by the default generator.
var DefaultOres = []OreKind{
	{Block: block.CoalOre, MinY: 0, MaxY: 190, Attempts: 20, VeinSize: 14},
	{Block: block.IronOre, MinY: -40, MaxY: 72, Attempts: 18, VeinSize: 9},
	{Block: block.GoldOre, MinY: -59, MaxY: 32, Attempts: 4, VeinSize: 9},
	{Block: block.RedstoneOre, MinY: -59, MaxY: 16, Attempts: 8, VeinSize: 8},
	{Block: block.LapisOre, MinY: -59, MaxY: 32, Attempts: 2, VeinSize: 7},
	{Block: block.DiamondOre, MinY: -59, MaxY: 16, Attempts: 1, VeinSize: 8},
}

const (
	veinRadius = 3.0

	// A vein grows where ore noise exceeds oreThreshold minus a bias that
	// grows with depth inside the ore's band.
	oreThreshold = -0.2
	oreDepthBias = 0.3

	oreRNGSalt = 500
)

// OreGenerator places ore veins inside plain stone.
type OreGenerator struct {
	seed  int64
	noise *NoiseField
	ores  []OreKind
}

// NewOreGenerator creates an OreGenerator. A nil table selects DefaultOres.
func NewOreGenerator(seed int64, ores []OreKind) *OreGenerator {
	if ores == nil {
		ores = DefaultOres
	}
	return &OreGenerator{
		seed:  seed,
		noise: NewNoiseField(seed + oreSalt),
		ores:  ores,
	}
}

// Place grows ore veins in the chunk. Attempts per ore kind are scaled by
// the average ore multiplier of the chunk's biome grid. Only the plain stone
// block of the column's biome is replaced. It returns the number of ore
// blocks placed.
func (og *OreGenerator) Place(c *chunk.Chunk) (int, error) {
	mult, err := oreMultiplier(c)
	if err != nil {
		return 0, err
	}

	pos := c.Pos()
	r := rng.New(og.seed, int64(pos.X), int64(pos.Z), oreRNGSalt)
	lo, _ := pos.Bounds()

	placed := 0
	for _, ore := range og.ores {
		attempts := int(math.Round(float64(ore.Attempts) * mult))
		span := ore.MaxY - ore.MinY + 1
		for range attempts {
			x := r.Intn(chunk.Width)
			z := r.Intn(chunk.Width)
			y := ore.MinY + r.Intn(span)

			n := og.noise.Noise3(float64(lo.X+x)/16.0, float64(y)/16.0, float64(lo.Z+z)/16.0, 1)
			depth := float64(ore.MaxY-y) / float64(span)
			if n <= oreThreshold-oreDepthBias*depth {
				continue
			}
			placed += og.placeVein(c, chunk.BlockPos{X: x, Y: y, Z: z}, ore, r)
		}
	}
	return placed, nil
}

// placeVein runs a random walk from center. Steps that leave the vein
// radius restart from the center; positions outside the chunk are skipped.
func (og *OreGenerator) placeVein(c *chunk.Chunk, center chunk.BlockPos, ore OreKind, r *rng.Source) int {
	placed := 0
	p := center
	for range ore.VeinSize {
		if og.replaceStone(c, p, ore.Block) {
			placed++
		}
		next := p.Side(chunk.Faces[r.Intn(len(chunk.Faces))])
		if next.Vec3().Sub(center.Vec3()).Len() > veinRadius {
			next = center
		}
		p = next
	}
	return placed
}

func (og *OreGenerator) replaceStone(c *chunk.Chunk, p chunk.BlockPos, id block.ID) bool {
	if p.X < 0 || p.X >= chunk.Width || p.Z < 0 || p.Z >= chunk.Width {
		return false
	}
	cur, ok := c.Block(p.X, p.Y, p.Z)
	if !ok {
		return false
	}
	b, err := biome.ByID(c.Biome(p.X, p.Z))
	if err != nil || cur != b.Stone {
		return false
	}
	return c.SetBlock(p.X, p.Y, p.Z, id)
}

// oreMultiplier averages the ore multiplier over the chunk's biome grid.
func oreMultiplier(c *chunk.Chunk) (float64, error) {
	var sum float64
	cells := c.Biomes()
	for _, id := range cells {
		b, err := biome.ByID(id)
		if err != nil {
			return 0, fmt.Errorf("ore multiplier: %w", err)
		}
		sum += b.OreMultiplier
	}
	return sum / float64(len(cells)), nil
}

package gen

import (
	"errors"
	"testing"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

func newTestRNG() *rng.Source { return rng.New(1) }

func TestOreVeinsOnlyReplacePlainStone(t *testing.T) {
	for _, seed := range []int64{1, 42, 777} {
		for _, b := range []biome.Biome{biome.Plains, biome.Mountains, biome.Desert} {
			c := terrainChunk(t, seed, chunk.Pos{X: -2, Z: 3}, b)
			NewCaveCarver(seed, 0, gamedata.Default()).Carve(c)
			before := c.Clone()

			placed, err := NewOreGenerator(seed, nil).Place(c)
			if err != nil {
				t.Fatalf("Place: %v", err)
			}

			changed := 0
			for x := 0; x < chunk.Width; x++ {
				for z := 0; z < chunk.Width; z++ {
					for y := chunk.MinY; y < chunk.MaxY; y++ {
						old, _ := before.Block(x, y, z)
						now, _ := c.Block(x, y, z)
						if old == now {
							continue
						}
						changed++
						if old != b.Stone {
							t.Fatalf("seed %d %s: vein replaced %s at (%d,%d,%d)", seed, b.Name, old, x, y, z)
						}
						if !gamedata.Lookup(gamedata.Default(), now).Ore {
							t.Fatalf("seed %d %s: vein wrote non-ore %s", seed, b.Name, now)
						}
					}
				}
			}
			if changed != placed {
				t.Errorf("seed %d %s: Place reported %d blocks, %d changed", seed, b.Name, placed, changed)
			}
			if placed == 0 {
				t.Errorf("seed %d %s: no ore placed", seed, b.Name)
			}
		}
	}
}

func TestOreVeinStaysWithinRadius(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	for i := 0; i < chunk.BiomeCells; i++ {
		for j := 0; j < chunk.BiomeCells; j++ {
			c.SetBiomeCell(i, j, biome.PlainsID)
		}
	}
	var col [chunk.Height]block.ID
	for i := range col {
		col[i] = block.Stone
	}
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			c.SetColumn(x, z, &col)
		}
	}

	og := NewOreGenerator(1, nil)
	center := chunk.BlockPos{X: 8, Y: 10, Z: 8}
	kind := OreKind{Block: block.GoldOre, VeinSize: 200}
	og.placeVein(c, center, kind, newTestRNG())

	found := 0
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			for y := 0; y < 30; y++ {
				if id, _ := c.Block(x, y, z); id == block.GoldOre {
					found++
					p := chunk.BlockPos{X: x, Y: y, Z: z}
					if d := p.Vec3().Sub(center.Vec3()).Len(); d > veinRadius {
						t.Errorf("ore at %v is %.2f from center, want <= %v", p, d, veinRadius)
					}
				}
			}
		}
	}
	if found < 2 {
		t.Errorf("vein placed %d blocks, want a cluster", found)
	}
}

func TestOreScalingByBiome(t *testing.T) {
	ores := []OreKind{{Block: block.CoalOre, MinY: -50, MaxY: 20, Attempts: 40, VeinSize: 1}}
	count := func(b biome.Biome) int {
		c := terrainChunk(t, 11, chunk.Pos{}, b)
		n, err := NewOreGenerator(11, ores).Place(c)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	if m, p := count(biome.Mountains), count(biome.Plains); m <= p {
		t.Errorf("mountains placed %d ores, plains %d; want more in mountains", m, p)
	}
}

func TestOrePlaceUnknownBiome(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	c.SetBiomeCell(0, 0, 99)
	if _, err := NewOreGenerator(1, nil).Place(c); !errors.Is(err, ErrUnknownBiome) {
		t.Errorf("Place error = %v, want ErrUnknownBiome", err)
	}
}

package gen

import (
	"testing"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

// terrainChunk builds the terrain stage only, with a single biome.
func terrainChunk(t *testing.T, seed int64, pos chunk.Pos, b biome.Biome) *chunk.Chunk {
	t.Helper()
	c := chunk.New(pos)
	for i := 0; i < chunk.BiomeCells; i++ {
		for j := 0; j < chunk.BiomeCells; j++ {
			c.SetBiomeCell(i, j, b.ID)
		}
	}
	tb := NewTerrainBuilder(seed)
	lo, _ := pos.Bounds()
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			col := tb.BuildColumn(lo.X+x, lo.Z+z, b)
			c.SetColumn(x, z, &col)
		}
	}
	return c
}

func TestCaveCarverNeverRemovesBedrockOrOre(t *testing.T) {
	for _, seed := range []int64{1, 42, 9001} {
		c := terrainChunk(t, seed, chunk.Pos{X: 1, Z: 1}, biome.Plains)

		// Sprinkle ore through the band so the carver meets some.
		for y := CaveMinY; y <= CaveMaxY; y += 3 {
			for x := 0; x < chunk.Width; x += 2 {
				c.SetBlock(x, y, (x+y)&15, block.IronOre)
			}
		}
		before := c.Clone()

		carved := NewCaveCarver(seed, 0.2, gamedata.Default()).Carve(c)
		if carved == 0 {
			t.Errorf("seed %d: low threshold carved nothing", seed)
		}

		for x := 0; x < chunk.Width; x++ {
			for z := 0; z < chunk.Width; z++ {
				for y := chunk.MinY; y < chunk.MaxY; y++ {
					old, _ := before.Block(x, y, z)
					now, _ := c.Block(x, y, z)
					if old == now {
						continue
					}
					if old == block.Bedrock || old == block.IronOre {
						t.Fatalf("seed %d: carver removed %s at (%d,%d,%d)", seed, old, x, y, z)
					}
					if now != block.Air {
						t.Fatalf("seed %d: carver wrote %s at (%d,%d,%d)", seed, now, x, y, z)
					}
					if y < CaveMinY || y > CaveMaxY {
						t.Fatalf("seed %d: carved outside band at y=%d", seed, y)
					}
				}
			}
		}
	}
}

func TestCaveCarverDefaultThreshold(t *testing.T) {
	cc := NewCaveCarver(1, 0, gamedata.Default())
	if cc.threshold != DefaultCaveThreshold {
		t.Errorf("threshold = %v, want %v", cc.threshold, DefaultCaveThreshold)
	}
}

func TestCaveCarverSkipsWater(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	for y := CaveMinY; y <= CaveMaxY; y++ {
		c.SetBlock(0, y, 0, block.Water)
	}
	if n := NewCaveCarver(5, 0.01, gamedata.Default()).Carve(c); n != 0 {
		t.Errorf("carved %d water blocks", n)
	}
}

func TestCaveCarverKeepsSurfaceGrass(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	for y := CaveMinY; y <= CaveMaxY; y++ {
		c.SetBlock(0, y, 0, block.Grass)
	}
	NewCaveCarver(5, 0.01, gamedata.Default()).Carve(c)
	for y := CaveMinY; y <= CaveMaxY; y++ {
		if id, _ := c.Block(0, y, 0); id != block.Grass {
			t.Fatalf("carver removed grass at y=%d", y)
		}
	}
}

package gen

import (
	"testing"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

func TestTreeShape(t *testing.T) {
	for _, kind := range []TreeKind{TreeOak, TreeSpruce} {
		r := rng.New(int64(kind))
		for i := 0; i < 20; i++ {
			tree := RandomTree(kind, r)
			base := chunk.BlockPos{X: 100, Y: 70, Z: -40}
			logs, leaves, top := 0, 0, base.Y
			final := make(map[chunk.BlockPos]block.ID)
			for _, pb := range tree.Blocks(base) {
				final[pb.Pos] = pb.Block
				top = max(top, pb.Pos.Y)
			}
			for p, id := range final {
				switch id {
				case block.Log:
					logs++
					if p.X != base.X || p.Z != base.Z {
						t.Errorf("%s: log off the trunk at %v", kind, p)
					}
				case block.Leaves:
					leaves++
				}
			}
			if logs != tree.TrunkHeight {
				t.Errorf("%s: %d logs, want %d", kind, logs, tree.TrunkHeight)
			}
			if leaves == 0 {
				t.Errorf("%s: no leaves", kind)
			}
			if top-base.Y > tree.Height() {
				t.Errorf("%s: top offset %d exceeds Height() %d", kind, top-base.Y, tree.Height())
			}
		}
	}
}

func TestOakFitsSaplingClearance(t *testing.T) {
	r := rng.New(5)
	for i := 0; i < 50; i++ {
		tree := RandomTree(TreeOak, r)
		base := chunk.BlockPos{}
		for _, pb := range tree.Blocks(base) {
			if pb.Pos == base {
				continue
			}
			lo, hi := SaplingClearance.Lo, SaplingClearance.Hi
			p := pb.Pos
			if p.X < lo.X || p.X > hi.X || p.Y < lo.Y || p.Y > hi.Y || p.Z < lo.Z || p.Z > hi.Z {
				t.Fatalf("oak block %v outside sapling clearance", p)
			}
		}
	}
}

func TestTreeKindFor(t *testing.T) {
	if TreeKindFor(biome.Taiga) != TreeSpruce {
		t.Error("taiga should grow spruce")
	}
	if TreeKindFor(biome.Forest) != TreeOak {
		t.Error("forest should grow oak")
	}
}

func TestDecorateForest(t *testing.T) {
	found := false
	for seed := int64(1); seed <= 20 && !found; seed++ {
		c := terrainChunk(t, seed, chunk.Pos{X: 3, Z: 3}, biome.Forest)
		if err := NewTreeGenerator(seed).Decorate(c); err != nil {
			t.Fatalf("Decorate: %v", err)
		}
		lo, _ := c.Pos().Bounds()
		for _, s := range c.Structures() {
			if s.Kind != "tree" {
				t.Errorf("unexpected structure %q", s.Kind)
			}
			x, z := s.Origin.X-lo.X, s.Origin.Z-lo.Z
			if id, _ := c.Block(x, s.Origin.Y, z); id != block.Log {
				t.Errorf("tree origin %v holds %s, want log", s.Origin, id)
			}
			if id, _ := c.Block(x, s.Origin.Y-1, z); id != block.Dirt {
				t.Errorf("block under tree %v is %s, want dirt", s.Origin, id)
			}
			found = true
		}
	}
	if !found {
		t.Error("no tree placed in 20 forest chunks")
	}
}

func TestDecorateIsDeterministic(t *testing.T) {
	a := terrainChunk(t, 8, chunk.Pos{}, biome.Forest)
	b := terrainChunk(t, 8, chunk.Pos{}, biome.Forest)
	if err := NewTreeGenerator(8).Decorate(a); err != nil {
		t.Fatal(err)
	}
	if err := NewTreeGenerator(8).Decorate(b); err != nil {
		t.Fatal(err)
	}
	if a.Digest() != b.Digest() || len(a.Structures()) != len(b.Structures()) {
		t.Error("decoration differs for equal seeds")
	}
}

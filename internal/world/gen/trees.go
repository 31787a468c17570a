package gen

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

// TreeKind selects the shape of a tree.
type TreeKind uint8

const (
	TreeOak TreeKind = iota
	TreeSpruce
)

func (k TreeKind) String() string {
	if k == TreeSpruce {
		return "spruce"
	}
	return "oak"
}

// Tree is a trunk column with a leaf cluster around its top.
type Tree struct {
	Kind        TreeKind
	TrunkHeight int
}

// PlacedBlock is a block a feature wants to write.
type PlacedBlock struct {
	Pos   chunk.BlockPos
	Block block.ID
}

// Oak trees are at most 6 logs tall with leaves one block above the trunk.
const (
	maxOakTrunk = 6
	oakRadius   = 2.5
)

// SaplingClearance is the box above a sapling, relative to the sapling
// position, that must be free for it to grow into an oak.
var SaplingClearance = struct{ Lo, Hi chunk.BlockPos }{
	Lo: chunk.BlockPos{X: -2, Y: 1, Z: -2},
	Hi: chunk.BlockPos{X: 2, Y: maxOakTrunk + 1, Z: 2},
}

// RandomTree picks a tree of the given kind.
func RandomTree(kind TreeKind, r *rng.Source) Tree {
	if kind == TreeSpruce {
		return Tree{Kind: kind, TrunkHeight: 6 + r.Intn(4)}
	}
	return Tree{Kind: kind, TrunkHeight: 4 + r.Intn(maxOakTrunk-3)}
}

// TreeKindFor returns the tree kind that grows in b.
func TreeKindFor(b biome.Biome) TreeKind {
	switch b.ID {
	case biome.TaigaID, biome.SnowyTundraID, biome.MountainsID:
		return TreeSpruce
	default:
		return TreeOak
	}
}

// Blocks returns the blocks of the tree rooted at base, leaves first and
// trunk last so the trunk wins where they overlap.
func (t Tree) Blocks(base chunk.BlockPos) []PlacedBlock {
	var out []PlacedBlock
	if t.Kind == TreeSpruce {
		out = t.spruceLeaves(base)
	} else {
		out = t.oakLeaves(base)
	}
	for dy := 0; dy < t.TrunkHeight; dy++ {
		out = append(out, PlacedBlock{Pos: base.Add(chunk.BlockPos{Y: dy}), Block: block.Log})
	}
	return out
}

// Height returns the offset of the tree's highest block above its base.
func (t Tree) Height() int {
	return t.TrunkHeight + 1
}

// oakLeaves fills a sphere around the top of the trunk.
func (t Tree) oakLeaves(base chunk.BlockPos) []PlacedBlock {
	var out []PlacedBlock
	center := base.Add(chunk.BlockPos{Y: t.TrunkHeight - 1}).Vec3()
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			for dz := -2; dz <= 2; dz++ {
				p := base.Add(chunk.BlockPos{X: dx, Y: t.TrunkHeight - 1 + dy, Z: dz})
				if p.Y < base.Y+2 {
					continue
				}
				if p.Vec3().Sub(center).Len() > oakRadius {
					continue
				}
				out = append(out, PlacedBlock{Pos: p, Block: block.Leaves})
			}
		}
	}
	return out
}

// spruceLeaves builds a cone narrowing towards the top with a single leaf cap.
func (t Tree) spruceLeaves(base chunk.BlockPos) []PlacedBlock {
	var out []PlacedBlock
	for dy := 2; dy < t.TrunkHeight; dy++ {
		radius := float64(t.TrunkHeight-dy)/2.0 + 0.5
		if radius > 3 {
			radius = 3
		}
		for dx := -3; dx <= 3; dx++ {
			for dz := -3; dz <= 3; dz++ {
				if (mgl64.Vec2{float64(dx), float64(dz)}).Len() > radius {
					continue
				}
				out = append(out, PlacedBlock{Pos: base.Add(chunk.BlockPos{X: dx, Y: dy, Z: dz}), Block: block.Leaves})
			}
		}
	}
	out = append(out, PlacedBlock{Pos: base.Add(chunk.BlockPos{Y: t.TrunkHeight}), Block: block.Leaves})
	return out
}

// Replaceable reports whether a tree may overwrite id.
func Replaceable(id block.ID) bool {
	switch id {
	case block.Air, block.Leaves, block.TallGrass, block.Sapling, block.Snow:
		return true
	}
	return false
}

const treeRNGSalt = 600

// TreeGenerator decorates the surface with trees, tall grass and saplings
// according to each biome's vegetation chances.
type TreeGenerator struct {
	seed int64
}

// NewTreeGenerator creates a TreeGenerator from a world seed.
func NewTreeGenerator(seed int64) *TreeGenerator {
	return &TreeGenerator{seed: seed}
}

// Decorate places vegetation on grass columns above sea level. Trees are
// clipped to the chunk and recorded as structures.
func (tg *TreeGenerator) Decorate(c *chunk.Chunk) error {
	pos := c.Pos()
	r := rng.New(tg.seed, int64(pos.X), int64(pos.Z), treeRNGSalt)
	lo, _ := pos.Bounds()

	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			roll := r.Float64()

			y := c.Height(x, z)
			if y <= SeaLevel || y >= chunk.MaxY-1 {
				continue
			}
			if top, _ := c.Block(x, y, z); top != block.Grass {
				continue
			}
			b, err := biome.ByID(c.Biome(x, z))
			if err != nil {
				return err
			}

			switch {
			case roll < b.TreeChance:
				tree := RandomTree(TreeKindFor(b), r)
				if y+1+tree.Height() >= chunk.MaxY {
					continue
				}
				local := chunk.BlockPos{X: x, Y: y + 1, Z: z}
				placeTree(c, tree, local)
				c.AddStructure(chunk.Structure{
					Kind:   "tree",
					Origin: chunk.BlockPos{X: lo.X + x, Y: y + 1, Z: lo.Z + z},
				})
			case roll < b.TreeChance+b.GrassChance:
				c.SetBlock(x, y+1, z, block.TallGrass)
			case roll < b.TreeChance+b.GrassChance+b.SaplingChance:
				c.SetBlock(x, y+1, z, block.Sapling)
			}
		}
	}
	return nil
}

// placeTree writes the tree at a chunk-local base, skipping blocks that fall
// outside the chunk or would replace something solid.
func placeTree(c *chunk.Chunk, t Tree, base chunk.BlockPos) {
	for _, pb := range t.Blocks(base) {
		cur, ok := c.Block(pb.Pos.X, pb.Pos.Y, pb.Pos.Z)
		if !ok || !Replaceable(cur) {
			continue
		}
		c.SetBlock(pb.Pos.X, pb.Pos.Y, pb.Pos.Z, pb.Block)
	}
	c.SetBlock(base.X, base.Y-1, base.Z, block.Dirt)
}

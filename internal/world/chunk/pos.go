package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos identifies a chunk by its X and Z coordinates on the chunk grid.
type Pos struct{ X, Z int }

// PosFromBlock returns the chunk containing the world block column (x, z).
func PosFromBlock(x, z int) Pos {
	return Pos{X: x >> 4, Z: z >> 4}
}

// Bounds returns the lowest and highest block positions inside the chunk.
func (p Pos) Bounds() (lo, hi BlockPos) {
	lo = BlockPos{X: p.X * Width, Y: MinY, Z: p.Z * Width}
	hi = BlockPos{X: lo.X + Width - 1, Y: MaxY - 1, Z: lo.Z + Width - 1}
	return lo, hi
}

// Contains reports whether b lies inside the chunk.
func (p Pos) Contains(b BlockPos) bool {
	return b.Valid() && b.Chunk() == p
}

// Neighbours returns the 8 chunks surrounding p, row by row from -Z to +Z.
func (p Pos) Neighbours() [8]Pos {
	var n [8]Pos
	i := 0
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			n[i] = Pos{X: p.X + dx, Z: p.Z + dz}
			i++
		}
	}
	return n
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// BlockPos is a world block coordinate. Y is only meaningful in [MinY, MaxY).
type BlockPos struct {
	X, Y, Z int
}

// Valid reports whether the Y coordinate lies inside the world's vertical range.
func (b BlockPos) Valid() bool {
	return b.Y >= MinY && b.Y < MaxY
}

// Chunk returns the chunk the position belongs to.
func (b BlockPos) Chunk() Pos {
	return PosFromBlock(b.X, b.Z)
}

// Local splits the position into chunk-local x and z. Y is unchanged.
func (b BlockPos) Local() (x, y, z int) {
	return b.X & 0xF, b.Y, b.Z & 0xF
}

// Add returns the component-wise sum of b and o.
func (b BlockPos) Add(o BlockPos) BlockPos {
	return BlockPos{X: b.X + o.X, Y: b.Y + o.Y, Z: b.Z + o.Z}
}

// Side returns the position adjacent to b in direction f.
func (b BlockPos) Side(f Face) BlockPos {
	return b.Add(f.Offset())
}

// Manhattan returns the taxicab distance between b and o.
func (b BlockPos) Manhattan(o BlockPos) int {
	return abs(b.X-o.X) + abs(b.Y-o.Y) + abs(b.Z-o.Z)
}

// Adjacent reports whether b and o share a face.
func (b BlockPos) Adjacent(o BlockPos) bool {
	return b.Manhattan(o) == 1
}

// Vec3 returns the position as a float vector.
func (b BlockPos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(b.X), float64(b.Y), float64(b.Z)}
}

func (b BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z)
}

// Face is one of the six axis-aligned directions.
type Face uint8

const (
	FaceDown Face = iota
	FaceUp
	FaceNorth // -Z
	FaceSouth // +Z
	FaceWest  // -X
	FaceEast  // +X
)

// Faces lists all six faces.
var Faces = [...]Face{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}

// HorizontalFaces lists the four faces on the XZ plane.
var HorizontalFaces = [...]Face{FaceNorth, FaceSouth, FaceWest, FaceEast}

// Offset returns the unit vector of the face.
func (f Face) Offset() BlockPos {
	switch f {
	case FaceDown:
		return BlockPos{Y: -1}
	case FaceUp:
		return BlockPos{Y: 1}
	case FaceNorth:
		return BlockPos{Z: -1}
	case FaceSouth:
		return BlockPos{Z: 1}
	case FaceWest:
		return BlockPos{X: -1}
	case FaceEast:
		return BlockPos{X: 1}
	}
	return BlockPos{}
}

func (f Face) String() string {
	switch f {
	case FaceDown:
		return "down"
	case FaceUp:
		return "up"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
)

const (
	Width  = 16
	MinY   = -64
	MaxY   = 320
	Height = MaxY - MinY

	// Volume is the number of blocks in a chunk.
	Volume = Width * Width * Height

	SectionHeight = 16
	Sections      = Height / SectionHeight

	// BiomeCells is the side length of the biome grid. Each cell covers 4×4 columns.
	BiomeCells = 4
	biomeShift = 2

	// NoHeight marks a height map entry of a column without any block.
	NoHeight = -1
)

// ErrOutOfRange is returned for coordinates outside the chunk.
var ErrOutOfRange = errors.New("position out of range")

// Structure records a feature placed during population.
type Structure struct {
	Kind   string
	Origin BlockPos
}

// Chunk holds the blocks of one 16×384×16 column in flat arrays.
// Index = (y+64)*256 + z*16 + x.
//
// A Chunk is not safe for concurrent use; the world serialises access.
type Chunk struct {
	pos Pos

	blocks []block.ID
	state  []State

	biomes    [BiomeCells * BiomeCells]biome.ID
	heightMap [Width * Width]int16

	structures []Structure
	generated  bool
	populated  bool
}

// New returns an empty chunk filled with air.
func New(pos Pos) *Chunk {
	c := &Chunk{
		pos:    pos,
		blocks: make([]block.ID, Volume),
		state:  make([]State, Volume),
	}
	for i := range c.heightMap {
		c.heightMap[i] = NoHeight
	}
	return c
}

// Pos returns the chunk coordinate.
func (c *Chunk) Pos() Pos { return c.pos }

// CheckLocal returns ErrOutOfRange when (x, y, z) is not inside the chunk.
// x and z are chunk-local, y is a world height.
func CheckLocal(x, y, z int) error {
	if _, ok := index(x, y, z); !ok {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfRange, x, y, z)
	}
	return nil
}

func index(x, y, z int) (int, bool) {
	if x < 0 || x >= Width || z < 0 || z >= Width || y < MinY || y >= MaxY {
		return 0, false
	}
	return (y-MinY)*Width*Width + z*Width + x, true
}

// Block returns the block at the local position. The second value is false,
// and the block is air, when the position is out of range.
func (c *Chunk) Block(x, y, z int) (block.ID, bool) {
	i, ok := index(x, y, z)
	if !ok {
		return block.Air, false
	}
	return c.blocks[i], true
}

// SetBlock writes a block at the local position and keeps the column's
// height map entry current. Out-of-range writes are ignored and return false.
func (c *Chunk) SetBlock(x, y, z int, id block.ID) bool {
	i, ok := index(x, y, z)
	if !ok {
		return false
	}
	c.blocks[i] = id

	col := z*Width + x
	top := int16(y - MinY)
	switch {
	case id != block.Air && top > c.heightMap[col]:
		c.heightMap[col] = top
	case id == block.Air && top == c.heightMap[col]:
		c.heightMap[col] = c.scanColumn(x, z, y-1)
	}
	return true
}

// State returns the state byte at the local position.
func (c *Chunk) State(x, y, z int) (State, bool) {
	i, ok := index(x, y, z)
	if !ok {
		return 0, false
	}
	return c.state[i], true
}

// SetState writes the state byte at the local position.
func (c *Chunk) SetState(x, y, z int, s State) bool {
	i, ok := index(x, y, z)
	if !ok {
		return false
	}
	c.state[i] = s
	return true
}

// SetColumn overwrites every block of column (x, z) and recomputes its height.
func (c *Chunk) SetColumn(x, z int, col *[Height]block.ID) bool {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return false
	}
	for i, id := range col {
		c.blocks[i*Width*Width+z*Width+x] = id
	}
	c.heightMap[z*Width+x] = c.scanColumn(x, z, MaxY-1)
	return true
}

// Biome returns the biome of the cell containing local column (x, z).
func (c *Chunk) Biome(x, z int) biome.ID {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return 0
	}
	return c.biomes[(z>>biomeShift)*BiomeCells+x>>biomeShift]
}

// SetBiomeCell sets the biome of grid cell (i, j), each in [0, 4).
func (c *Chunk) SetBiomeCell(i, j int, id biome.ID) bool {
	if i < 0 || i >= BiomeCells || j < 0 || j >= BiomeCells {
		return false
	}
	c.biomes[j*BiomeCells+i] = id
	return true
}

// Biomes returns a copy of the 4×4 biome grid, index = j*4 + i.
func (c *Chunk) Biomes() [BiomeCells * BiomeCells]biome.ID {
	return c.biomes
}

// HeightMap returns a copy of the height map. Entries hold y+64 of the
// topmost non-air block, or NoHeight for an empty column. Index = z*16 + x.
func (c *Chunk) HeightMap() [Width * Width]int16 {
	return c.heightMap
}

// Height returns the world y of the topmost non-air block in column (x, z),
// or MinY-1 if the column is empty.
func (c *Chunk) Height(x, z int) int {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return MinY - 1
	}
	return int(c.heightMap[z*Width+x]) + MinY
}

// HighestBlock returns the world y of the highest non-air block in the chunk,
// or MinY-1 if the chunk is empty.
func (c *Chunk) HighestBlock() int {
	top := int16(NoHeight)
	for _, h := range c.heightMap {
		if h > top {
			top = h
		}
	}
	return int(top) + MinY
}

// RecomputeHeightMap rescans every column from the top.
func (c *Chunk) RecomputeHeightMap() {
	for z := 0; z < Width; z++ {
		for x := 0; x < Width; x++ {
			c.heightMap[z*Width+x] = c.scanColumn(x, z, MaxY-1)
		}
	}
}

// scanColumn returns the offset height of the first non-air block at or below from.
func (c *Chunk) scanColumn(x, z, from int) int16 {
	for y := from; y >= MinY; y-- {
		if c.blocks[(y-MinY)*Width*Width+z*Width+x] != block.Air {
			return int16(y - MinY)
		}
	}
	return NoHeight
}

// RelightColumn recomputes the light level of column (x, z) top-down. Sky
// light starts at 15 and each block lowers it for the blocks beneath by the
// amount returned from filter.
func (c *Chunk) RelightColumn(x, z int, filter func(block.ID) uint8) {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return
	}
	light := uint8(MaxLight)
	for y := MaxY - 1; y >= MinY; y-- {
		i := (y-MinY)*Width*Width + z*Width + x
		c.state[i] = c.state[i].WithLight(light)
		if f := filter(c.blocks[i]); f >= light {
			light = 0
		} else {
			light -= f
		}
	}
}

// Relight recomputes the light level of every column.
func (c *Chunk) Relight(filter func(block.ID) uint8) {
	for z := 0; z < Width; z++ {
		for x := 0; x < Width; x++ {
			c.RelightColumn(x, z, filter)
		}
	}
}

// AddStructure records a placed structure.
func (c *Chunk) AddStructure(s Structure) {
	c.structures = append(c.structures, s)
}

// Structures returns the structures placed in the chunk.
func (c *Chunk) Structures() []Structure {
	out := make([]Structure, len(c.structures))
	copy(out, c.structures)
	return out
}

// Generated reports whether terrain, caves and ores have been placed.
func (c *Chunk) Generated() bool { return c.generated }

// SetGenerated marks the chunk as generated.
func (c *Chunk) SetGenerated(v bool) { c.generated = v }

// Populated reports whether decoration has run.
func (c *Chunk) Populated() bool { return c.populated }

// SetPopulated marks the chunk as decorated.
func (c *Chunk) SetPopulated(v bool) { c.populated = v }

// Clone returns a deep copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	cp := *c
	cp.blocks = make([]block.ID, Volume)
	copy(cp.blocks, c.blocks)
	cp.state = make([]State, Volume)
	copy(cp.state, c.state)
	cp.structures = c.Structures()
	return &cp
}

// Digest returns an xxhash of the blocks, states, biome grid and height map.
// Two chunks with equal digests hold the same data with overwhelming probability.
func (c *Chunk) Digest() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, Width*Width*SectionHeight*3)
	for i := 0; i < Volume; i++ {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(c.blocks[i]))
		buf = append(buf, byte(c.state[i]))
		if len(buf) == cap(buf) {
			_, _ = d.Write(buf)
			buf = buf[:0]
		}
	}
	for _, b := range c.biomes {
		buf = append(buf, byte(b))
	}
	for _, h := range c.heightMap {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(h))
	}
	_, _ = d.Write(buf)
	return d.Sum64()
}

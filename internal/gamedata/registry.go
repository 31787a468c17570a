package gamedata

import (
	"sort"

	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
)

// BlockRegistry is a read-only lookup of block metadata.
type BlockRegistry interface {
	ByID(id int) (Block, bool)
	ByName(name string) (Block, bool)
	All() []Block
}

// Registry is an immutable BlockRegistry backed by maps.
type Registry struct {
	byID   map[int]Block
	byName map[string]int
}

var _ BlockRegistry = (*Registry)(nil)

// NewRegistry builds a registry from blocks. Later entries with the same id
// replace earlier ones.
func NewRegistry(blocks []Block) *Registry {
	r := &Registry{
		byID:   make(map[int]Block, len(blocks)),
		byName: make(map[string]int, len(blocks)),
	}
	for _, b := range blocks {
		if old, ok := r.byID[b.ID]; ok {
			delete(r.byName, old.Name)
		}
		r.byID[b.ID] = b
		r.byName[b.Name] = b.ID
	}
	return r
}

// Default returns the built-in block table.
func Default() *Registry {
	return NewRegistry(builtin)
}

func (r *Registry) ByID(id int) (Block, bool) {
	b, ok := r.byID[id]
	return b, ok
}

func (r *Registry) ByName(name string) (Block, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Block{}, false
	}
	return r.byID[id], true
}

// All returns every block ordered by id.
func (r *Registry) All() []Block {
	out := make([]Block, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the metadata of id, or a zero Block with the id set when the
// registry does not know it. Unknown kinds behave as opaque inert blocks.
func Lookup(r BlockRegistry, id block.ID) Block {
	if b, ok := r.ByID(int(id)); ok {
		return b
	}
	return Block{ID: int(id), FilterLight: 15, Solid: true}
}

// LightFilter returns a function reporting how much sky light each block absorbs.
func LightFilter(r BlockRegistry) func(block.ID) uint8 {
	return func(id block.ID) uint8 {
		f := Lookup(r, id).FilterLight
		switch {
		case f < 0:
			return 0
		case f > 15:
			return 15
		}
		return uint8(f)
	}
}

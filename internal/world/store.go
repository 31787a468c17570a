package world

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/update"
)

// tickStore is the update.Store view of a World. It never takes the tick
// lock, so the scheduler can use it while a tick runs.
type tickStore struct {
	w *World
}

func (s tickStore) lookup(pos chunk.BlockPos) (*entry, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %v", update.ErrInvalidPosition, pos)
	}
	e, ok := s.w.entry(pos.Chunk())
	if !ok {
		return nil, fmt.Errorf("%w: %v", update.ErrChunkNotLoaded, pos.Chunk())
	}
	return e, nil
}

func (s tickStore) Block(pos chunk.BlockPos) (block.ID, chunk.State, error) {
	e, err := s.lookup(pos)
	if err != nil {
		return 0, 0, err
	}
	x, y, z := pos.Local()
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, _ := e.c.Block(x, y, z)
	st, _ := e.c.State(x, y, z)
	return id, st, nil
}

// SetBlock writes the block and state, then recomputes the column's light.
func (s tickStore) SetBlock(pos chunk.BlockPos, id block.ID, st chunk.State) error {
	e, err := s.lookup(pos)
	if err != nil {
		return err
	}
	x, y, z := pos.Local()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.c.SetBlock(x, y, z, id)
	e.c.SetState(x, y, z, st)
	e.c.RelightColumn(x, z, s.w.filter)
	return nil
}

func (s tickStore) Generation(pos chunk.Pos) (uint64, bool) {
	return s.w.Generation(pos)
}

func (s tickStore) Loaded() []chunk.Pos {
	return s.w.Loaded()
}

func (s tickStore) HighestBlock(pos chunk.Pos) int {
	e, ok := s.w.entry(pos)
	if !ok {
		return chunk.MinY - 1
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.c.HighestBlock()
}

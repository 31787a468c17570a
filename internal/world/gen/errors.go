package gen

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/world/biome"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

var (
	// ErrInvalidCoordinate is returned for chunks outside the world border.
	ErrInvalidCoordinate = errors.New("invalid chunk coordinate")
	// ErrUnknownBiome is returned when a biome id cannot be resolved.
	ErrUnknownBiome = biome.ErrUnknown
)

// Pipeline stage names reported in GenerationError.
const (
	StageCoordinate = "coordinate"
	StageBiome      = "biome"
	StageTerrain    = "terrain"
	StageCarve      = "carve"
	StageOres       = "ores"
	StageDecorate   = "decorate"
)

// GenerationError reports a chunk that could not be generated.
type GenerationError struct {
	Pos   chunk.Pos
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chunk %v: %s: %v", e.Pos, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

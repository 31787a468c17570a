package storage

import (
	"github.com/OCharnyshevich/voxel-engine/internal/world"
)

// Level is the serializable world metadata kept in level.json.
type Level struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	Generator string `json:"generator"`
	Age       int64  `json:"age"`
	TimeOfDay int64  `json:"time_of_day"`
}

// WorldData holds block edits for persistence.
type WorldData struct {
	Overrides []BlockOverride `json:"overrides"`
}

// BlockOverride is a single edited block.
type BlockOverride struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	Block uint16 `json:"block"`
}

// LevelFromWorld extracts the metadata of a running world.
func LevelFromWorld(w *world.World, generator string) *Level {
	age, tod := w.Time()
	return &Level{
		ID:        w.ID().String(),
		Seed:      w.Seed(),
		Generator: generator,
		Age:       age,
		TimeOfDay: tod,
	}
}

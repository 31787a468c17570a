package block

import (
	"errors"
	"fmt"
)

// ID is a handle to a registered block kind. The numeric values of the
// built-in kinds follow the legacy 1.8 block ids so that they line up with
// the minecraft-data block tables loaded by the gamedata package.
type ID uint16

// MaxID is the largest value an ID can hold.
const MaxID = 65535

// ErrInvalidID is returned by New for values outside [0, MaxID].
var ErrInvalidID = errors.New("block id out of range")

const (
	Air         ID = 0
	Stone       ID = 1
	Grass       ID = 2
	Dirt        ID = 3
	Cobblestone ID = 4
	Sapling     ID = 6
	Bedrock     ID = 7
	Water       ID = 9 // stationary water
	Lava        ID = 11
	Sand        ID = 12
	Gravel      ID = 13
	GoldOre     ID = 14
	IronOre     ID = 15
	CoalOre     ID = 16
	Log         ID = 17
	Leaves      ID = 18
	LapisOre    ID = 21
	Sandstone   ID = 24
	TallGrass   ID = 31
	DiamondOre  ID = 56
	RedstoneOre ID = 73
	Snow        ID = 78
	Ice         ID = 79
	Clay        ID = 82
)

// New validates v and returns it as an ID.
func New(v int) (ID, error) {
	if v < 0 || v > MaxID {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, v)
	}
	return ID(v), nil
}

// String returns the registry name of built-in kinds and the numeric
// value for anything else.
func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("block(%d)", uint16(id))
}

var names = map[ID]string{
	Air:         "air",
	Stone:       "stone",
	Grass:       "grass",
	Dirt:        "dirt",
	Cobblestone: "cobblestone",
	Sapling:     "sapling",
	Bedrock:     "bedrock",
	Water:       "water",
	Lava:        "lava",
	Sand:        "sand",
	Gravel:      "gravel",
	GoldOre:     "gold_ore",
	IronOre:     "iron_ore",
	CoalOre:     "coal_ore",
	Log:         "log",
	Leaves:      "leaves",
	LapisOre:    "lapis_ore",
	Sandstone:   "sandstone",
	TallGrass:   "tallgrass",
	DiamondOre:  "diamond_ore",
	RedstoneOre: "redstone_ore",
	Snow:        "snow_layer",
	Ice:         "ice",
	Clay:        "clay",
}

// Builtin returns the ids of all built-in kinds in ascending order.
func Builtin() []ID {
	ids := make([]ID, 0, len(names))
	for id := ID(0); ; id++ {
		if _, ok := names[id]; ok {
			ids = append(ids, id)
		}
		if len(ids) == len(names) || id == MaxID {
			return ids
		}
	}
}

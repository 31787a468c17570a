package biome

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
)

// ID identifies a biome. Values match the Minecraft 1.8 biome ids.
type ID byte

const (
	OceanID       ID = 0
	PlainsID      ID = 1
	DesertID      ID = 2
	MountainsID   ID = 3 // extreme hills
	ForestID      ID = 4
	TaigaID       ID = 5
	SwampID       ID = 6
	SnowyTundraID ID = 12 // ice plains
)

// ErrUnknown is returned by ByID for ids without a biome.
var ErrUnknown = errors.New("unknown biome")

// Precipitation is the kind of weather falling in a biome.
type Precipitation uint8

const (
	PrecipitationNone Precipitation = iota
	PrecipitationRain
	PrecipitationSnow
)

func (p Precipitation) String() string {
	switch p {
	case PrecipitationRain:
		return "rain"
	case PrecipitationSnow:
		return "snow"
	}
	return "none"
}

// StructureTag is a bit set of structure kinds a biome may host.
type StructureTag uint8

const (
	TagVillage StructureTag = 1 << iota
	TagTemple
	TagIgloo
	TagWitchHut
	TagMineshaft
)

// Has reports whether all bits of o are set in t.
func (t StructureTag) Has(o StructureTag) bool {
	return t&o == o
}

// Biome describes the climate and terrain profile of a region. Values are
// shared and must be treated as read-only.
type Biome struct {
	ID            ID
	Name          string
	Temperature   float64
	Humidity      float64
	Precipitation Precipitation

	Surface    block.ID
	Subsurface block.ID
	Stone      block.ID

	// Surface height is BaseHeight + heightNoise*HeightVariation + detailNoise*Roughness.
	BaseHeight      float64
	HeightVariation float64
	Roughness       float64

	// Per-column decoration probabilities.
	TreeChance    float64
	GrassChance   float64
	SaplingChance float64

	OreMultiplier float64
	Structures    StructureTag
}

var (
	Ocean = Biome{
		ID: OceanID, Name: "ocean",
		Temperature: 0.5, Humidity: 0.5, Precipitation: PrecipitationRain,
		Surface: block.Gravel, Subsurface: block.Gravel, Stone: block.Stone,
		BaseHeight: -24, HeightVariation: 12, Roughness: 2,
		OreMultiplier: 1.0,
		Structures:    TagMineshaft,
	}
	Plains = Biome{
		ID: PlainsID, Name: "plains",
		Temperature: 0.8, Humidity: 0.4, Precipitation: PrecipitationRain,
		Surface: block.Grass, Subsurface: block.Dirt, Stone: block.Stone,
		BaseHeight: 68, HeightVariation: 6, Roughness: 2,
		TreeChance: 0.002, GrassChance: 0.12, SaplingChance: 0.004,
		OreMultiplier: 1.0,
		Structures:    TagVillage | TagMineshaft,
	}
	Desert = Biome{
		ID: DesertID, Name: "desert",
		Temperature: 2.0, Humidity: 0.0, Precipitation: PrecipitationNone,
		Surface: block.Sand, Subsurface: block.Sandstone, Stone: block.Stone,
		BaseHeight: 66, HeightVariation: 5, Roughness: 3,
		OreMultiplier: 0.8,
		Structures:    TagVillage | TagTemple | TagMineshaft,
	}
	Mountains = Biome{
		ID: MountainsID, Name: "mountains",
		Temperature: 0.2, Humidity: 0.3, Precipitation: PrecipitationRain,
		Surface: block.Grass, Subsurface: block.Dirt, Stone: block.Stone,
		BaseHeight: 90, HeightVariation: 50, Roughness: 8,
		TreeChance: 0.004, GrassChance: 0.04,
		OreMultiplier: 1.5,
		Structures:    TagMineshaft,
	}
	Forest = Biome{
		ID: ForestID, Name: "forest",
		Temperature: 0.7, Humidity: 0.8, Precipitation: PrecipitationRain,
		Surface: block.Grass, Subsurface: block.Dirt, Stone: block.Stone,
		BaseHeight: 70, HeightVariation: 10, Roughness: 3,
		TreeChance: 0.05, GrassChance: 0.08, SaplingChance: 0.01,
		OreMultiplier: 1.0,
		Structures:    TagMineshaft,
	}
	Taiga = Biome{
		ID: TaigaID, Name: "taiga",
		Temperature: 0.25, Humidity: 0.8, Precipitation: PrecipitationRain,
		Surface: block.Grass, Subsurface: block.Dirt, Stone: block.Stone,
		BaseHeight: 72, HeightVariation: 14, Roughness: 4,
		TreeChance: 0.04, GrassChance: 0.06, SaplingChance: 0.006,
		OreMultiplier: 1.1,
		Structures:    TagVillage | TagMineshaft,
	}
	Swamp = Biome{
		ID: SwampID, Name: "swamp",
		Temperature: 0.8, Humidity: 0.9, Precipitation: PrecipitationRain,
		Surface: block.Grass, Subsurface: block.Clay, Stone: block.Stone,
		BaseHeight: 62, HeightVariation: 3, Roughness: 1,
		TreeChance: 0.015, GrassChance: 0.1,
		OreMultiplier: 0.9,
		Structures:    TagWitchHut | TagMineshaft,
	}
	SnowyTundra = Biome{
		ID: SnowyTundraID, Name: "snowy_tundra",
		Temperature: 0.0, Humidity: 0.5, Precipitation: PrecipitationSnow,
		Surface: block.Grass, Subsurface: block.Dirt, Stone: block.Stone,
		BaseHeight: 68, HeightVariation: 5, Roughness: 2,
		TreeChance: 0.001, GrassChance: 0.01,
		OreMultiplier: 1.0,
		Structures:    TagVillage | TagIgloo | TagMineshaft,
	}
)

var byID = map[ID]*Biome{
	OceanID:       &Ocean,
	PlainsID:      &Plains,
	DesertID:      &Desert,
	MountainsID:   &Mountains,
	ForestID:      &Forest,
	TaigaID:       &Taiga,
	SwampID:       &Swamp,
	SnowyTundraID: &SnowyTundra,
}

// ByID returns the biome registered under id.
func ByID(id ID) (Biome, error) {
	b, ok := byID[id]
	if !ok {
		return Biome{}, fmt.Errorf("%w: %d", ErrUnknown, id)
	}
	return *b, nil
}

// All returns every registered biome ordered by id.
func All() []Biome {
	return []Biome{Ocean, Plains, Desert, Mountains, Forest, Taiga, Swamp, SnowyTundra}
}

// Classify maps temperature and humidity samples in [-1, 1] to a land biome.
// Rules are checked top to bottom and the first match wins.
//
//	temperature < -0.2                    cold: snowy tundra (dry) or taiga
//	humidity > 0.7                        swamp
//	temperature > 0.5, humidity < -0.2    desert
//	humidity > 0.25                       forest
//	temperature < 0.1, humidity < -0.45   mountains
//	otherwise                             plains
func Classify(temperature, humidity float64) Biome {
	switch {
	case temperature < -0.2:
		if humidity < 0 {
			return SnowyTundra
		}
		return Taiga
	case humidity > 0.7:
		return Swamp
	case temperature > 0.5 && humidity < -0.2:
		return Desert
	case humidity > 0.25:
		return Forest
	case temperature < 0.1 && humidity < -0.45:
		return Mountains
	default:
		return Plains
	}
}

package gen

import "github.com/OCharnyshevich/voxel-engine/internal/world/biome"

// BiomeProvider returns the biome at a world column.
type BiomeProvider interface {
	BiomeAt(x, z int) biome.Biome
}

// BiomeSource selects biomes from temperature and humidity noise, with
// oceans where the large-scale continent field is low.
type BiomeSource struct {
	temperature *NoiseField
	humidity    *NoiseField
	continent   *NoiseField
}

// NewBiomeSource creates a BiomeSource from a world seed.
func NewBiomeSource(seed int64) *BiomeSource {
	return &BiomeSource{
		temperature: NewNoiseField(seed + temperatureSalt),
		humidity:    NewNoiseField(seed + humiditySalt),
		continent:   NewNoiseField(seed + continentSalt),
	}
}

const oceanThreshold = -0.45

// Climate returns the temperature and humidity samples at a world column.
func (s *BiomeSource) Climate(x, z int) (temperature, humidity float64) {
	tx, tz := float64(x)/512.0, float64(z)/512.0
	temperature = s.temperature.Noise(tx, tz, 4)
	humidity = s.humidity.Noise(tx+100, tz+100, 4)
	return temperature, humidity
}

// BiomeAt returns the biome at the given world block column.
func (s *BiomeSource) BiomeAt(x, z int) biome.Biome {
	if s.continent.Noise(float64(x)/1024.0, float64(z)/1024.0, 3) < oceanThreshold {
		return biome.Ocean
	}
	return biome.Classify(s.Climate(x, z))
}

// cellCenter returns the column whose biome represents the 4×4 biome cell
// containing (x, z).
func cellCenter(x, z int) (int, int) {
	return x&^3 + 2, z&^3 + 2
}

package gen

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Sub-seed offsets added to the world seed for each noise field.
const (
	heightSalt int64 = iota
	roughnessSalt
	temperatureSalt
	humiditySalt
	caveSalt
	oreSalt
	continentSalt
)

// noiseQuantum is the grid noise output is snapped to. Snapping hides
// last-bit differences in the underlying simplex evaluation.
const noiseQuantum = 1 << 24

// NoiseField is a seeded fractal noise source. Each octave doubles the
// frequency and halves the amplitude of the previous one; the sum is
// normalised back into [-1, 1].
//
// Outputs are snapped to a 2^-24 grid. The simplex evaluation itself lives
// in opensimplex-go, and on architectures where the compiler fuses its
// multiply-adds (arm64) a value lying exactly on a rounding boundary could
// still snap differently than on amd64, so bit-exact worlds across
// architectures are likely but not guaranteed.
type NoiseField struct {
	seed  int64
	noise opensimplex.Noise
}

// NewNoiseField returns a field for the given seed.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{seed: seed, noise: opensimplex.New(seed)}
}

// Seed returns the seed the field was built from.
func (f *NoiseField) Seed() int64 { return f.seed }

// Noise samples 2D noise at (x, z) using the given number of octaves.
func (f *NoiseField) Noise(x, z float64, octaves int) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < max(octaves, 1); i++ {
		// Explicit conversion keeps the compiler from fusing the multiply-add.
		sum += float64(amp * f.noise.Eval2(x*freq, z*freq))
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return quantize(sum / norm)
}

// Noise3 samples 3D noise at (x, y, z) using the given number of octaves.
func (f *NoiseField) Noise3(x, y, z float64, octaves int) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < max(octaves, 1); i++ {
		sum += float64(amp * f.noise.Eval3(x*freq, y*freq, z*freq))
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return quantize(sum / norm)
}

func quantize(v float64) float64 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return math.Round(v*noiseQuantum) / noiseQuantum
}

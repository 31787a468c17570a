package chunk

// State is the per-block state byte stored next to each block id.
//
//	bits 0-3  light level (0-15)
//	bits 4-6  liquid level (0 = full source, 7 = weakest)
//	bit  7    liquid flag
type State uint8

const (
	MaxLight       = 15
	MaxLiquidLevel = 7

	lightMask  State = 0x0F
	levelMask  State = 0x70
	liquidFlag State = 0x80
)

// LiquidState returns a state with the liquid flag set at the given level.
func LiquidState(level uint8) State {
	return State(0).WithLiquid(level)
}

// Light returns the light level.
func (s State) Light() uint8 {
	return uint8(s & lightMask)
}

// WithLight returns s with the light level replaced. Values above 15 are clamped.
func (s State) WithLight(l uint8) State {
	if l > MaxLight {
		l = MaxLight
	}
	return s&^lightMask | State(l)
}

// Liquid reports whether the liquid flag is set.
func (s State) Liquid() bool {
	return s&liquidFlag != 0
}

// LiquidLevel returns the liquid level. It is only meaningful when Liquid is true.
func (s State) LiquidLevel() uint8 {
	return uint8(s&levelMask) >> 4
}

// WithLiquid sets the liquid flag and level, keeping the light bits.
func (s State) WithLiquid(level uint8) State {
	if level > MaxLiquidLevel {
		level = MaxLiquidLevel
	}
	return s&lightMask | liquidFlag | State(level)<<4
}

// WithoutLiquid clears the liquid flag and level, keeping the light bits.
func (s State) WithoutLiquid() State {
	return s & lightMask
}

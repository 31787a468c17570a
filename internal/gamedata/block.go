package gamedata

// Block is the static metadata of a block kind. The first group of fields
// mirrors the minecraft-data blocks.json schema; the second group holds the
// flags the world engine needs and that the upstream data does not carry.
type Block struct {
	ID           int
	Name         string
	DisplayName  string
	Hardness     *float64
	StackSize    int
	Diggable     bool
	BoundingBox  string
	Material     string
	Transparent  bool
	EmitLight    int
	FilterLight  int
	Resistance   float64
	HarvestTools map[int]bool

	Solid      bool
	Liquid     bool
	Gravity    bool // falls when unsupported
	Carvable   bool // may be removed by cave carving
	Ore        bool
	RandomTick bool
}

func hardness(v float64) *float64 { return &v }

// builtin is the engine's block table using 1.8 numeric ids.
var builtin = []Block{
	{ID: 0, Name: "air", DisplayName: "Air", Hardness: hardness(0), BoundingBox: "empty", Transparent: true},
	{ID: 1, Name: "stone", DisplayName: "Stone", Hardness: hardness(1.5), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 30, Solid: true, Carvable: true},
	{ID: 2, Name: "grass", DisplayName: "Grass Block", Hardness: hardness(0.6), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", FilterLight: 15, Resistance: 3, Solid: true, RandomTick: true},
	{ID: 3, Name: "dirt", DisplayName: "Dirt", Hardness: hardness(0.5), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", FilterLight: 15, Resistance: 2.5, Solid: true, Carvable: true},
	{ID: 4, Name: "cobblestone", DisplayName: "Cobblestone", Hardness: hardness(2), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 30, Solid: true},
	{ID: 6, Name: "sapling", DisplayName: "Sapling", Hardness: hardness(0), StackSize: 64, Diggable: true, BoundingBox: "empty", Material: "plant", Transparent: true, RandomTick: true},
	{ID: 7, Name: "bedrock", DisplayName: "Bedrock", StackSize: 64, BoundingBox: "block", FilterLight: 15, Resistance: 18000000, Solid: true},
	{ID: 9, Name: "water", DisplayName: "Water", Hardness: hardness(100), BoundingBox: "empty", Material: "water", Transparent: true, FilterLight: 2, Resistance: 500, Liquid: true},
	{ID: 11, Name: "lava", DisplayName: "Lava", Hardness: hardness(100), BoundingBox: "empty", Material: "lava", Transparent: true, EmitLight: 15, Resistance: 500, Liquid: true},
	{ID: 12, Name: "sand", DisplayName: "Sand", Hardness: hardness(0.5), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", FilterLight: 15, Resistance: 2.5, Solid: true, Gravity: true},
	{ID: 13, Name: "gravel", DisplayName: "Gravel", Hardness: hardness(0.6), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", FilterLight: 15, Resistance: 3, Solid: true, Gravity: true, Carvable: true},
	{ID: 14, Name: "gold_ore", DisplayName: "Gold Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 15, Name: "iron_ore", DisplayName: "Iron Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 16, Name: "coal_ore", DisplayName: "Coal Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 17, Name: "log", DisplayName: "Wood", Hardness: hardness(2), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "wood", FilterLight: 15, Resistance: 10, Solid: true},
	{ID: 18, Name: "leaves", DisplayName: "Leaves", Hardness: hardness(0.2), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "leaves", Transparent: true, FilterLight: 1, Resistance: 1, Solid: true},
	{ID: 21, Name: "lapis_ore", DisplayName: "Lapis Lazuli Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 24, Name: "sandstone", DisplayName: "Sandstone", Hardness: hardness(0.8), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 4, Solid: true, Carvable: true},
	{ID: 31, Name: "tallgrass", DisplayName: "Grass", Hardness: hardness(0), StackSize: 64, Diggable: true, BoundingBox: "empty", Material: "plant", Transparent: true},
	{ID: 56, Name: "diamond_ore", DisplayName: "Diamond Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 73, Name: "redstone_ore", DisplayName: "Redstone Ore", Hardness: hardness(3), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", FilterLight: 15, Resistance: 15, Solid: true, Ore: true},
	{ID: 78, Name: "snow_layer", DisplayName: "Snow", Hardness: hardness(0.1), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", Transparent: true, Resistance: 0.5},
	{ID: 79, Name: "ice", DisplayName: "Ice", Hardness: hardness(0.5), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "rock", Transparent: true, FilterLight: 2, Resistance: 2.5, Solid: true},
	{ID: 82, Name: "clay", DisplayName: "Clay", Hardness: hardness(0.6), StackSize: 64, Diggable: true, BoundingBox: "block", Material: "dirt", FilterLight: 15, Resistance: 3, Solid: true, Carvable: true},
}

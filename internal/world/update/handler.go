package update

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

const (
	WaterSpreadDelay  = 5
	WaterFallDelay    = 2
	FallingDelay      = 2
	SaplingRetryDelay = 400

	LightThreshold      = 9
	SaplingGrowthChance = 0.15
	GrassSpreadChance   = 0.25
)

// View is read access to world blocks. Block returns ErrChunkNotLoaded or
// ErrInvalidPosition (possibly wrapped) for positions it cannot serve.
type View interface {
	Block(pos chunk.BlockPos) (block.ID, chunk.State, error)
}

// Change is a block write produced by a handler.
type Change struct {
	Pos   chunk.BlockPos
	Block block.ID
	State chunk.State
}

// FallingBlock is handed to the entity spawner when an unsupported block falls.
type FallingBlock struct {
	Pos   chunk.BlockPos
	Block block.ID
}

// Result is everything a handler wants done. Handlers never write directly.
type Result struct {
	Changes  []Change
	Requests []Request
	Falling  []FallingBlock
}

// Context is the input of a handler.
type Context struct {
	Pos    chunk.BlockPos
	Block  block.ID
	State  chunk.State
	Ticket Ticket
	// Random is set when the handler runs from a random tick rather than a ticket.
	Random bool
	View   View
	Blocks gamedata.BlockRegistry
	Rand   *rng.Source
}

// Handler computes the effect of an update. It must only read through the
// context's View and must stay inside its kind's footprint.
type Handler func(ctx *Context) (Result, error)

// handlerFor returns the handler of k.
func handlerFor(k Kind) (Handler, error) {
	switch k {
	case KindWater:
		return waterHandler, nil
	case KindFalling:
		return fallingHandler, nil
	case KindSapling:
		return saplingHandler, nil
	case KindGrass:
		return grassHandler, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
}

// footprint returns how far, horizontally, a kind's handler reads or writes
// around its position.
func footprint(k Kind) int {
	switch k {
	case KindFalling:
		return 0
	case KindSapling:
		return 2
	default:
		return 1
	}
}

// KindFor returns the update kind a block reacts to.
func KindFor(b gamedata.Block) (Kind, bool) {
	switch {
	case b.ID == int(block.Water):
		return KindWater, true
	case b.Gravity:
		return KindFalling, true
	case b.ID == int(block.Sapling):
		return KindSapling, true
	case b.ID == int(block.Grass):
		return KindGrass, true
	}
	return 0, false
}

// scheduledOnNotify reports whether a change next to a block of kind k
// schedules an update for it, and with which delay.
func scheduledOnNotify(k Kind) (int64, bool) {
	switch k {
	case KindWater:
		return WaterSpreadDelay, true
	case KindFalling:
		return FallingDelay, true
	}
	return 0, false
}

// read returns the block at pos. ok is false, with a nil error, when the
// position is outside the world or in an unloaded chunk; handlers treat
// such neighbours as solid.
func read(v View, pos chunk.BlockPos) (id block.ID, s chunk.State, ok bool, err error) {
	id, s, err = v.Block(pos)
	if err != nil {
		if errors.Is(err, ErrChunkNotLoaded) || errors.Is(err, ErrInvalidPosition) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	return id, s, true, nil
}

func waterLevel(s chunk.State) uint8 {
	if !s.Liquid() {
		return 0
	}
	return s.LiquidLevel()
}

// waterHandler flows water down at full strength and sideways one level weaker.
func waterHandler(ctx *Context) (Result, error) {
	var res Result
	if ctx.Block != block.Water {
		return res, nil
	}
	level := waterLevel(ctx.State)

	below := ctx.Pos.Side(chunk.FaceDown)
	id, _, ok, err := read(ctx.View, below)
	if err != nil {
		return Result{}, err
	}
	if ok && id == block.Air {
		res.Changes = append(res.Changes, Change{Pos: below, Block: block.Water, State: chunk.LiquidState(0)})
		res.Requests = append(res.Requests, Request{Pos: below, Kind: KindWater, Delay: WaterFallDelay, Priority: PriorityHigh})
	}

	if level >= chunk.MaxLiquidLevel {
		return res, nil
	}
	for _, f := range chunk.HorizontalFaces {
		side := ctx.Pos.Side(f)
		id, _, ok, err := read(ctx.View, side)
		if err != nil {
			return Result{}, err
		}
		if !ok || id != block.Air {
			continue
		}
		res.Changes = append(res.Changes, Change{Pos: side, Block: block.Water, State: chunk.LiquidState(level + 1)})
		res.Requests = append(res.Requests, Request{Pos: side, Kind: KindWater, Delay: WaterSpreadDelay, Priority: PriorityNormal})
	}
	return res, nil
}

// fallingHandler drops a gravity block whose support is air or liquid.
func fallingHandler(ctx *Context) (Result, error) {
	if !gamedata.Lookup(ctx.Blocks, ctx.Block).Gravity {
		return Result{}, nil
	}
	id, _, ok, err := read(ctx.View, ctx.Pos.Side(chunk.FaceDown))
	if err != nil || !ok {
		return Result{}, err
	}
	if id != block.Air && !gamedata.Lookup(ctx.Blocks, id).Liquid {
		return Result{}, nil
	}
	return Result{
		Changes: []Change{{Pos: ctx.Pos, Block: block.Air}},
		Falling: []FallingBlock{{Pos: ctx.Pos, Block: ctx.Block}},
	}, nil
}

// saplingHandler grows a sapling into an oak when it is lit, has room and
// wins the growth roll. A failed scheduled check is retried later.
func saplingHandler(ctx *Context) (Result, error) {
	if ctx.Block != block.Sapling {
		return Result{}, nil
	}
	retry := func() (Result, error) {
		if ctx.Random {
			return Result{}, nil
		}
		return Result{Requests: []Request{{
			Pos: ctx.Pos, Kind: KindSapling, Delay: SaplingRetryDelay, Priority: PriorityLow, Meta: ctx.Ticket.Meta + 1,
		}}}, nil
	}

	if ctx.State.Light() < LightThreshold {
		return retry()
	}
	lo, hi := gen.SaplingClearance.Lo, gen.SaplingClearance.Hi
	for dy := lo.Y; dy <= hi.Y; dy++ {
		for dx := lo.X; dx <= hi.X; dx++ {
			for dz := lo.Z; dz <= hi.Z; dz++ {
				id, _, ok, err := read(ctx.View, ctx.Pos.Add(chunk.BlockPos{X: dx, Y: dy, Z: dz}))
				if err != nil {
					return Result{}, err
				}
				if !ok || !gen.Replaceable(id) {
					return retry()
				}
			}
		}
	}
	if !ctx.Rand.Chance(SaplingGrowthChance) {
		return retry()
	}

	tree := gen.RandomTree(gen.TreeOak, ctx.Rand)
	var res Result
	for _, pb := range tree.Blocks(ctx.Pos) {
		res.Changes = append(res.Changes, Change{Pos: pb.Pos, Block: pb.Block})
	}
	return res, nil
}

// grassHandler spreads lit grass onto lit horizontal dirt neighbours.
func grassHandler(ctx *Context) (Result, error) {
	if ctx.Block != block.Grass || ctx.State.Light() < LightThreshold {
		return Result{}, nil
	}
	var res Result
	for _, f := range chunk.HorizontalFaces {
		side := ctx.Pos.Side(f)
		id, s, ok, err := read(ctx.View, side)
		if err != nil {
			return Result{}, err
		}
		if !ok || id != block.Dirt || s.Light() < LightThreshold {
			continue
		}
		if ctx.Rand.Chance(GrassSpreadChance) {
			res.Changes = append(res.Changes, Change{Pos: side, Block: block.Grass, State: s})
		}
	}
	return res, nil
}

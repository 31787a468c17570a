// Package world owns the loaded chunks of one world: it publishes generated
// chunks, serves block reads and writes, and drives block updates at a
// fixed tick rate.
package world

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/world/update"
)

// DayLength is the number of ticks in a full day cycle.
const DayLength = 24000

const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 19.0
)

// Config configures a World. Zero fields are filled with defaults.
type Config struct {
	// ID identifies the world instance. A random ID is used when zero.
	ID  uuid.UUID
	Log *slog.Logger
	// Generator produces chunks. Required.
	Generator gen.Generator
	Blocks    gamedata.BlockRegistry
	// Seed feeds random ticks and handler rolls.
	Seed int64
	// Spawner receives falling blocks. Defaults to logging them.
	Spawner update.EntitySpawner
	// TickRate is the number of ticks per second. Defaults to 20.
	TickRate          int
	RandomTickSpeed   int
	MaxTicketsPerTick int
	// Workers caps parallel chunk generation and tick workers.
	Workers int
	// Age and TimeOfDay restore the world clock.
	Age       int64
	TimeOfDay int64
}

func (c Config) withDefaults() Config {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Blocks == nil {
		c.Blocks = gamedata.Default()
	}
	if c.Spawner == nil {
		c.Spawner = logSpawner{log: c.Log}
	}
	if c.TickRate <= 0 {
		c.TickRate = 20
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// entry is a published chunk. Its lock guards the chunk's arrays.
type entry struct {
	mu         sync.RWMutex
	c          *chunk.Chunk
	generation uint64
}

// World is the chunk table and tick driver of one world.
type World struct {
	conf   Config
	log    *slog.Logger
	filter func(block.ID) uint8
	sched  *update.Scheduler
	store  tickStore

	mu     sync.RWMutex
	chunks map[chunk.Pos]*entry
	// generations outlive unloads so a reloaded chunk never reuses a counter.
	generations map[chunk.Pos]uint64
	overrides   map[chunk.BlockPos]block.ID

	// tickMu makes the tick driver the only writer while a tick runs.
	tickMu sync.Mutex

	timeMu    sync.Mutex
	age       int64
	timeOfDay int64

	tps atomic.Uint64
}

// New creates a World.
func New(conf Config) (*World, error) {
	if conf.Generator == nil {
		return nil, errors.New("world: generator is required")
	}
	conf = conf.withDefaults()
	w := &World{
		conf:        conf,
		log:         conf.Log.With("world", conf.ID.String()),
		filter:      gamedata.LightFilter(conf.Blocks),
		chunks:      make(map[chunk.Pos]*entry),
		generations: make(map[chunk.Pos]uint64),
		overrides:   make(map[chunk.BlockPos]block.ID),
		age:         conf.Age,
		timeOfDay:   conf.TimeOfDay,
	}
	w.store = tickStore{w: w}
	w.sched = update.New(update.Config{
		Seed:              conf.Seed,
		Log:               w.log,
		Blocks:            conf.Blocks,
		Spawner:           conf.Spawner,
		RandomTickSpeed:   conf.RandomTickSpeed,
		MaxTicketsPerTick: conf.MaxTicketsPerTick,
		Workers:           conf.Workers,
		StartTick:         conf.Age,
	})
	return w, nil
}

// ID returns the world instance id.
func (w *World) ID() uuid.UUID { return w.conf.ID }

// PublishChunk swaps c into the chunk table and returns its new generation.
// Replacing a loaded chunk invalidates every ticket scheduled against it.
func (w *World) PublishChunk(c *chunk.Chunk) uint64 {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	return w.publish(c)
}

func (w *World) publish(c *chunk.Chunk) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	pos := c.Pos()
	w.generations[pos]++
	g := w.generations[pos]
	w.chunks[pos] = &entry{c: c, generation: g}
	return g
}

// Chunk returns a copy of the loaded chunk at pos.
func (w *World) Chunk(pos chunk.Pos) (*chunk.Chunk, bool) {
	e, ok := w.entry(pos)
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.c.Clone(), true
}

func (w *World) entry(pos chunk.Pos) (*entry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.chunks[pos]
	return e, ok
}

// Loaded returns the positions of all loaded chunks, ordered by x then z.
func (w *World) Loaded() []chunk.Pos {
	w.mu.RLock()
	out := make([]chunk.Pos, 0, len(w.chunks))
	for p := range w.chunks {
		out = append(out, p)
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b chunk.Pos) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return out
}

// Generation returns the generation counter of a loaded chunk.
func (w *World) Generation(pos chunk.Pos) (uint64, bool) {
	e, ok := w.entry(pos)
	if !ok {
		return 0, false
	}
	return e.generation, true
}

// LoadChunk returns the chunk at pos, generating and publishing it first if
// it is not loaded. A chunk that fails to generate is not published and may
// be requested again.
func (w *World) LoadChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c, ok := w.Chunk(pos); ok {
		return c, nil
	}

	c, err := w.conf.Generator.Generate(pos)
	if err != nil {
		w.log.Error("generate chunk", "chunkX", pos.X, "chunkZ", pos.Z, "error", err)
		return nil, fmt.Errorf("load chunk %v: %w", pos, err)
	}
	w.applyOverrides(c)

	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	// Another caller may have published the chunk while we generated it.
	if e, ok := w.entry(pos); ok {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.c.Clone(), nil
	}
	w.publish(c)
	return c.Clone(), nil
}

// GenerateRadius loads every chunk within radius of center using a bounded
// worker pool. It returns the number of chunks loaded and the joined
// generation failures.
func (w *World) GenerateRadius(ctx context.Context, center chunk.Pos, radius int) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.conf.Workers)

	var (
		loaded atomic.Int64
		mu     sync.Mutex
		errs   []error
	)
	for cx := center.X - radius; cx <= center.X+radius; cx++ {
		for cz := center.Z - radius; cz <= center.Z+radius; cz++ {
			pos := chunk.Pos{X: cx, Z: cz}
			g.Go(func() error {
				if _, err := w.LoadChunk(ctx, pos); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return nil
				}
				loaded.Add(1)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	n := int(loaded.Load())
	w.log.Info("generated chunks", "center", center.String(), "radius", radius, "count", n)
	return n, errors.Join(errs...)
}

// Unload removes a chunk. Its generation counter is bumped so pending
// tickets for it are discarded.
func (w *World) Unload(pos chunk.Pos) bool {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chunks[pos]; !ok {
		return false
	}
	delete(w.chunks, pos)
	w.generations[pos]++
	return true
}

// Block returns the block and state at pos.
func (w *World) Block(pos chunk.BlockPos) (block.ID, chunk.State, error) {
	return w.store.Block(pos)
}

// HighestBlock returns the world y of the highest non-air block of a loaded
// chunk, or chunk.MinY-1.
func (w *World) HighestBlock(pos chunk.Pos) int {
	return w.store.HighestBlock(pos)
}

// SetBlock writes a block, relights its column, records it as a persistent
// edit and schedules the updates it causes. It waits for a running tick.
func (w *World) SetBlock(pos chunk.BlockPos, id block.ID) error {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	var s chunk.State
	if gamedata.Lookup(w.conf.Blocks, id).Liquid {
		s = chunk.LiquidState(0)
	}
	if err := w.store.SetBlock(pos, id, s); err != nil {
		return err
	}
	w.mu.Lock()
	w.overrides[pos] = id
	w.mu.Unlock()

	w.sched.Notify(w.store, pos)
	return nil
}

// ScheduleUpdate schedules a block update against the chunk holding req.Pos.
func (w *World) ScheduleUpdate(req update.Request) (update.Ticket, bool, error) {
	return w.sched.Schedule(w.store, req)
}

// PendingUpdates returns the pending tickets in dispatch order.
func (w *World) PendingUpdates() []update.Ticket {
	return w.sched.Pending()
}

// Tick advances the world clock and runs one tick of block updates.
func (w *World) Tick(ctx context.Context) (update.Report, error) {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	if err := ctx.Err(); err != nil {
		return update.Report{}, err
	}
	w.advanceClock()
	return w.sched.Tick(ctx, w.store)
}

// advanceClock increments age and, unless frozen (negative), the time of
// day, wrapping at DayLength.
func (w *World) advanceClock() (age, timeOfDay int64) {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	w.age++
	if w.timeOfDay >= 0 {
		w.timeOfDay = (w.timeOfDay + 1) % DayLength
	}
	return w.age, w.timeOfDay
}

// Time returns the world age and time of day.
func (w *World) Time() (age, timeOfDay int64) {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	return w.age, w.timeOfDay
}

// SetTime sets both the world age and time of day.
func (w *World) SetTime(age, timeOfDay int64) {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	w.age = age
	w.timeOfDay = timeOfDay
}

// SetTimeOfDay sets the time of day. A negative value freezes the clock.
func (w *World) SetTimeOfDay(timeOfDay int64) {
	w.timeMu.Lock()
	defer w.timeMu.Unlock()
	w.timeOfDay = timeOfDay
}

// TPS returns the ticks per second measured over the last sample window.
func (w *World) TPS() float64 {
	return math.Float64frombits(w.tps.Load())
}

// Run ticks the world at the configured rate until ctx is cancelled.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.conf.TickRate)
	tc := time.NewTicker(interval)
	defer tc.Stop()

	w.log.Info("world running", "tickRate", w.conf.TickRate, "chunks", len(w.Loaded()))

	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("world stopped", "tick", w.sched.CurrentTick())
			return nil
		case <-tc.C:
		}

		tickStart := time.Now()
		if d := tickStart.Sub(lastTick); d > 0 {
			durationSum += d
			ticksCount++
		}
		lastTick = tickStart
		if ticksCount >= tpsSampleSize {
			tps := 1.0 / (durationSum / time.Duration(ticksCount)).Seconds()
			w.tps.Store(math.Float64bits(tps))
			if tps < tpsWarningThreshold && !warned {
				w.log.Warn("tps dropped below threshold", "tps", tps)
				warned = true
			} else if tps >= tpsWarningThreshold {
				warned = false
			}
			durationSum, ticksCount = 0, 0
		}

		rep, err := w.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return fmt.Errorf("tick: %w", err)
		}
		if rep.Deferred > 0 {
			w.log.Warn("tick budget exceeded", "tick", rep.Tick, "deferred", rep.Deferred)
		}
		if took := time.Since(tickStart); took > interval {
			w.log.Warn("tick overran", "tick", rep.Tick, "took", took)
		}
	}
}

// SpawnHeight returns the y a player at (0, 0) stands on.
func (w *World) SpawnHeight() int {
	return w.conf.Generator.HeightAt(0, 0) + 1
}

// ForEachOverride calls fn for every block written through SetBlock.
func (w *World) ForEachOverride(fn func(pos chunk.BlockPos, id block.ID)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for pos, id := range w.overrides {
		fn(pos, id)
	}
}

// LoadOverrides replaces the recorded edits. They are applied to chunks as
// they are generated.
func (w *World) LoadOverrides(overrides map[chunk.BlockPos]block.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overrides = make(map[chunk.BlockPos]block.ID, len(overrides))
	for pos, id := range overrides {
		w.overrides[pos] = id
	}
}

// applyOverrides writes recorded edits that fall inside c.
func (w *World) applyOverrides(c *chunk.Chunk) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pos := c.Pos()
	for bp, id := range w.overrides {
		if !pos.Contains(bp) {
			continue
		}
		x, y, z := bp.Local()
		c.SetBlock(x, y, z, id)
		if gamedata.Lookup(w.conf.Blocks, id).Liquid {
			c.SetState(x, y, z, chunk.LiquidState(0))
		} else {
			c.SetState(x, y, z, 0)
		}
		c.RelightColumn(x, z, w.filter)
	}
}

// logSpawner is the default EntitySpawner.
type logSpawner struct {
	log *slog.Logger
}

func (s logSpawner) SpawnFallingBlock(pos chunk.BlockPos, id block.ID) {
	s.log.Debug("falling block", "pos", pos.String(), "block", id.String())
}

// Seed returns the seed that drives random ticks.
func (w *World) Seed() int64 { return w.conf.Seed }

// Package update runs block updates: scheduled tickets ordered by due tick,
// priority and insertion order, and random ticks sampled per chunk section.
//
// Handlers are pure. They read through a View and return the changes they
// want; the scheduler applies them. Tickets whose handler footprint stays
// inside one chunk are dispatched in parallel, one worker per chunk, as long
// as no edge ticket of the same tick reaches that chunk. All other tickets
// are dispatched serially in queue order.
package update

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/rng"
)

// Store is the world the scheduler reads and writes.
type Store interface {
	View
	// SetBlock writes a block. Implementations keep the height map and
	// column light current.
	SetBlock(pos chunk.BlockPos, id block.ID, s chunk.State) error
	// Generation returns the generation counter of a loaded chunk.
	Generation(pos chunk.Pos) (uint64, bool)
	// Loaded returns the coordinates of all loaded chunks.
	Loaded() []chunk.Pos
	// HighestBlock returns the world y of the highest non-air block in a chunk.
	HighestBlock(pos chunk.Pos) int
}

// EntitySpawner creates falling block entities.
type EntitySpawner interface {
	SpawnFallingBlock(pos chunk.BlockPos, id block.ID)
}

// Config holds the scheduler's tunables. The zero value is usable; defaults
// are applied by withDefaults.
type Config struct {
	// Seed feeds the per-tick random sources.
	Seed int64
	Log  *slog.Logger
	// Blocks supplies block flags. Defaults to gamedata.Default().
	Blocks gamedata.BlockRegistry
	// Spawner receives falling blocks. If nil, falling blocks are only logged.
	Spawner EntitySpawner
	// RandomTickSpeed is the number of random positions sampled per 16-block
	// section per chunk per tick. 0 selects 3; negative disables random ticks.
	RandomTickSpeed int
	// MaxTicketsPerTick caps dispatched tickets per tick. Extra due tickets
	// are deferred to the next tick.
	MaxTicketsPerTick int
	// Workers caps parallel chunk workers. Defaults to GOMAXPROCS.
	Workers int
	// StartTick is the tick the scheduler resumes from.
	StartTick int64
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Blocks == nil {
		c.Blocks = gamedata.Default()
	}
	if c.RandomTickSpeed == 0 {
		c.RandomTickSpeed = 3
	}
	if c.MaxTicketsPerTick <= 0 {
		c.MaxTicketsPerTick = 65536
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Report summarises one tick.
type Report struct {
	Tick        int64
	Dispatched  int
	Completed   int
	Discarded   int
	Deferred    int
	RandomTicks int
	Changes     int
	// Tickets holds the dispatched scheduled tickets with their final
	// status, in the order they were merged.
	Tickets []Ticket
}

// Scheduler owns the pending tickets of one world.
type Scheduler struct {
	conf Config

	mu   sync.Mutex
	q    *queue
	tick int64
}

// New creates a Scheduler.
func New(conf Config) *Scheduler {
	conf = conf.withDefaults()
	return &Scheduler{conf: conf, q: newQueue(), tick: conf.StartTick}
}

// CurrentTick returns the last tick processed.
func (s *Scheduler) CurrentTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Len returns the number of pending tickets.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.len()
}

// Pending returns the pending tickets in dispatch order. Tickets the next
// tick may dispatch report StatusDue.
func (s *Scheduler) Pending() []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.q.pending()
	for i := range out {
		if out[i].Due <= s.tick+1 {
			out[i].Status = StatusDue
		}
	}
	return out
}

// Schedule adds a ticket for req, capturing the generation of its chunk.
// The boolean is false when an equal or later ticket for the same position
// and kind is already pending.
func (s *Scheduler) Schedule(store Store, req Request) (Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule(store, req)
}

func (s *Scheduler) schedule(store Store, req Request) (Ticket, bool, error) {
	if _, err := handlerFor(req.Kind); err != nil {
		return Ticket{}, false, err
	}
	if !req.Pos.Valid() {
		return Ticket{}, false, fmt.Errorf("%w: %v", ErrInvalidPosition, req.Pos)
	}
	gen, ok := store.Generation(req.Pos.Chunk())
	if !ok {
		return Ticket{}, false, fmt.Errorf("%w: %v", ErrChunkNotLoaded, req.Pos.Chunk())
	}
	t, added := s.q.push(Ticket{
		Pos:        req.Pos,
		Kind:       req.Kind,
		Delay:      req.Delay,
		Priority:   req.Priority,
		Meta:       req.Meta,
		Generation: gen,
		Due:        s.tick + max(req.Delay, 0),
	})
	return t, added, nil
}

// Notify schedules updates caused by external writes at the given positions:
// the written block itself and every neighbour that reacts to changes.
func (s *Scheduler) Notify(store Store, changed ...chunk.BlockPos) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range changed {
		s.notify(store, p, true)
	}
}

// notify schedules neighbour updates around a changed position. self also
// schedules the block at pos.
func (s *Scheduler) notify(store Store, pos chunk.BlockPos, self bool) {
	if self {
		if id, _, err := store.Block(pos); err == nil {
			if k, ok := KindFor(gamedata.Lookup(s.conf.Blocks, id)); ok {
				delay, ok := scheduledOnNotify(k)
				if k == KindSapling {
					delay, ok = SaplingRetryDelay, true
				}
				if ok {
					s.scheduleQuiet(store, Request{Pos: pos, Kind: k, Delay: delay})
				}
			}
		}
	}
	for _, f := range chunk.Faces {
		n := pos.Side(f)
		id, _, err := store.Block(n)
		if err != nil {
			continue
		}
		k, ok := KindFor(gamedata.Lookup(s.conf.Blocks, id))
		if !ok {
			continue
		}
		if delay, ok := scheduledOnNotify(k); ok {
			s.scheduleQuiet(store, Request{Pos: n, Kind: k, Delay: delay})
		}
	}
}

func (s *Scheduler) scheduleQuiet(store Store, req Request) {
	if _, _, err := s.schedule(store, req); err != nil {
		s.conf.Log.Debug("dropped block update request", "kind", req.Kind, "pos", req.Pos, "error", err)
	}
}

// outcome is the result of one dispatch, kept until the merge phase.
type outcome struct {
	ticket Ticket
	random bool
	err    error
	result Result
}

// unit is the work of one chunk in a parallel phase.
type unit struct {
	pos      chunk.Pos
	tickets  []Ticket
	outcomes []outcome
	// edge holds random tick samples whose footprint leaves the chunk.
	edge []randomSample
}

type randomSample struct {
	pos  chunk.BlockPos
	kind Kind
}

const randomTickSalt = 700

// Tick advances the scheduler by one tick: due tickets are dispatched in
// (due, priority, insertion) order up to the tick budget, then every loaded
// chunk is random ticked. A handler failure discards only its own ticket.
//
// Tickets of chunks no edge ticket can reach run in parallel, one worker per
// chunk. Their handlers never touch blocks outside the chunk, so only the
// relative order of different chunks changes. Every other ticket runs
// serially in pop order.
func (s *Scheduler) Tick(ctx context.Context, store Store) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	now := s.tick
	rep := Report{Tick: now}

	due, deferred := s.q.popDue(now, s.conf.MaxTicketsPerTick)
	rep.Deferred = deferred
	rep.Dispatched = len(due)

	units, serial := partition(due)
	s.parallel(units, func(u *unit) {
		for _, t := range u.tickets {
			u.outcomes = append(u.outcomes, s.dispatch(store, t, now))
		}
	})
	for _, u := range units {
		for _, o := range u.outcomes {
			s.merge(store, &rep, o)
		}
	}
	for _, t := range serial {
		s.merge(store, &rep, s.dispatch(store, t, now))
	}

	if s.conf.RandomTickSpeed <= 0 {
		return rep, nil
	}
	loaded := make(map[chunk.Pos]*unit)
	for _, p := range store.Loaded() {
		loaded[p] = &unit{pos: p}
	}
	units = sortUnits(loaded)
	s.parallel(units, func(u *unit) {
		for _, smp := range s.sampleRandom(store, u.pos, now) {
			if interior(smp.pos, smp.kind) {
				u.outcomes = append(u.outcomes, s.dispatchRandom(store, smp, now))
			} else {
				u.edge = append(u.edge, smp)
			}
		}
	})
	for _, u := range units {
		for _, o := range u.outcomes {
			s.merge(store, &rep, o)
		}
	}
	for _, u := range units {
		for _, smp := range u.edge {
			s.merge(store, &rep, s.dispatchRandom(store, smp, now))
		}
	}
	return rep, nil
}

// parallel runs fn for every unit on at most Workers goroutines.
func (s *Scheduler) parallel(units []*unit, fn func(u *unit)) {
	var g errgroup.Group
	g.SetLimit(s.conf.Workers)
	for _, u := range units {
		g.Go(func() error {
			fn(u)
			return nil
		})
	}
	_ = g.Wait()
}

// partition splits due tickets into per-chunk units that may run in
// parallel and a serial list in pop order. A chunk's tickets are serial when
// any edge ticket of this tick can reach the chunk.
func partition(due []Ticket) ([]*unit, []Ticket) {
	reached := make(map[chunk.Pos]bool)
	for _, t := range due {
		if !interior(t.Pos, t.Kind) {
			for _, p := range reach(t.Pos, t.Kind) {
				reached[p] = true
			}
		}
	}

	byPos := make(map[chunk.Pos]*unit)
	var serial []Ticket
	for _, t := range due {
		p := t.Pos.Chunk()
		if reached[p] {
			serial = append(serial, t)
			continue
		}
		u, ok := byPos[p]
		if !ok {
			u = &unit{pos: p}
			byPos[p] = u
		}
		u.tickets = append(u.tickets, t)
	}
	return sortUnits(byPos), serial
}

// sortUnits returns the units in chunk order so merging is deterministic.
func sortUnits(byPos map[chunk.Pos]*unit) []*unit {
	units := make([]*unit, 0, len(byPos))
	for _, u := range byPos {
		units = append(units, u)
	}
	slices.SortFunc(units, func(a, b *unit) int {
		if c := cmp.Compare(a.pos.X, b.pos.X); c != 0 {
			return c
		}
		return cmp.Compare(a.pos.Z, b.pos.Z)
	})
	return units
}

// interior reports whether a kind's footprint around pos stays in pos's chunk.
func interior(pos chunk.BlockPos, k Kind) bool {
	x, _, z := pos.Local()
	r := footprint(k)
	return x >= r && x < chunk.Width-r && z >= r && z < chunk.Width-r
}

// reach returns the chunks a kind's footprint around pos touches. Footprints
// are narrower than a chunk, so the corners cover every such chunk.
func reach(pos chunk.BlockPos, k Kind) []chunk.Pos {
	r := footprint(k)
	out := make([]chunk.Pos, 0, 4)
	for _, dx := range [2]int{-r, r} {
		for _, dz := range [2]int{-r, r} {
			p := chunk.BlockPos{X: pos.X + dx, Y: pos.Y, Z: pos.Z + dz}.Chunk()
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// sampleRandom picks RandomTickSpeed positions per section up to the
// chunk's highest block and keeps those holding a random-tick block.
func (s *Scheduler) sampleRandom(store Store, pos chunk.Pos, now int64) []randomSample {
	if s.conf.RandomTickSpeed <= 0 {
		return nil
	}
	top := store.HighestBlock(pos)
	r := rng.New(s.conf.Seed, int64(pos.X), int64(pos.Z), now, randomTickSalt)
	lo, _ := pos.Bounds()

	var out []randomSample
	for base := chunk.MinY; base <= top && base < chunk.MaxY; base += chunk.SectionHeight {
		for range s.conf.RandomTickSpeed {
			p := chunk.BlockPos{X: lo.X + r.Intn(16), Y: base + r.Intn(16), Z: lo.Z + r.Intn(16)}
			id, _, err := store.Block(p)
			if err != nil {
				continue
			}
			b := gamedata.Lookup(s.conf.Blocks, id)
			if !b.RandomTick {
				continue
			}
			if k, ok := KindFor(b); ok {
				out = append(out, randomSample{pos: p, kind: k})
			}
		}
	}
	return out
}

// dispatch runs the handler of a scheduled ticket and applies its changes.
// The returned ticket carries its final status.
func (s *Scheduler) dispatch(store Store, t Ticket, now int64) outcome {
	t.Status = StatusDispatched
	discard := func(err error) outcome {
		t.Status = StatusDiscarded
		return outcome{ticket: t, err: &UpdateError{Ticket: t, Err: err}}
	}

	gen, ok := store.Generation(t.Pos.Chunk())
	if !ok {
		return discard(ErrChunkNotLoaded)
	}
	if gen != t.Generation {
		return discard(fmt.Errorf("%w: ticket %d, chunk %d", ErrStaleGeneration, t.Generation, gen))
	}

	r := rng.New(s.conf.Seed, int64(t.Pos.X), int64(t.Pos.Y), int64(t.Pos.Z), now, int64(t.Seq))
	res, err := s.run(store, t.Pos, t.Kind, t, false, r)
	if err != nil {
		return discard(err)
	}
	t.Status = StatusCompleted
	return outcome{ticket: t, result: res}
}

// dispatchRandom runs the handler for a random tick sample.
func (s *Scheduler) dispatchRandom(store Store, smp randomSample, now int64) outcome {
	t := Ticket{Pos: smp.pos, Kind: smp.kind, Status: StatusDispatched}
	r := rng.New(s.conf.Seed, int64(smp.pos.X), int64(smp.pos.Y), int64(smp.pos.Z), now, -1)
	res, err := s.run(store, smp.pos, smp.kind, t, true, r)
	if err != nil {
		t.Status = StatusDiscarded
		return outcome{ticket: t, random: true, err: &UpdateError{Ticket: t, Err: err}}
	}
	t.Status = StatusCompleted
	return outcome{ticket: t, random: true, result: res}
}

func (s *Scheduler) run(store Store, pos chunk.BlockPos, k Kind, t Ticket, random bool, r *rng.Source) (Result, error) {
	h, err := handlerFor(k)
	if err != nil {
		return Result{}, err
	}
	id, st, err := store.Block(pos)
	if err != nil {
		return Result{}, err
	}
	res, err := h(&Context{
		Pos:    pos,
		Block:  id,
		State:  st,
		Ticket: t,
		Random: random,
		View:   store,
		Blocks: s.conf.Blocks,
		Rand:   r,
	})
	if err != nil {
		return Result{}, err
	}
	if err := apply(store, res.Changes); err != nil {
		return Result{}, err
	}
	return res, nil
}

// apply writes all changes, or none when any target cannot be written.
func apply(store Store, changes []Change) error {
	for _, c := range changes {
		if _, _, err := store.Block(c.Pos); err != nil {
			return err
		}
	}
	for _, c := range changes {
		if err := store.SetBlock(c.Pos, c.Block, c.State); err != nil {
			return err
		}
	}
	return nil
}

// merge records an outcome and performs its side effects outside the chunk:
// falling block spawns, follow-up tickets and neighbour notifications.
func (s *Scheduler) merge(store Store, rep *Report, o outcome) {
	if o.random {
		rep.RandomTicks++
	} else {
		rep.Tickets = append(rep.Tickets, o.ticket)
	}
	if o.ticket.Status == StatusDiscarded {
		if !o.random {
			rep.Discarded++
		}
		s.conf.Log.Debug("discarded block update", "kind", o.ticket.Kind, "pos", o.ticket.Pos, "delay", o.ticket.Delay, "tick", s.tick, "error", o.err)
		return
	}
	if !o.random {
		rep.Completed++
	}
	rep.Changes += len(o.result.Changes)

	for _, fb := range o.result.Falling {
		if s.conf.Spawner != nil {
			s.conf.Spawner.SpawnFallingBlock(fb.Pos, fb.Block)
		} else {
			s.conf.Log.Debug("falling block without spawner", "pos", fb.Pos, "block", fb.Block)
		}
	}
	for _, req := range o.result.Requests {
		s.scheduleQuiet(store, req)
	}
	for _, c := range o.result.Changes {
		s.notify(store, c.Pos, false)
	}
}

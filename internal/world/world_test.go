package world

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/world/update"
)

type recordingSpawner struct {
	mu  sync.Mutex
	got []chunk.BlockPos
}

func (r *recordingSpawner) SpawnFallingBlock(pos chunk.BlockPos, _ block.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, pos)
}

func newFlatWorld(t *testing.T, conf Config) *World {
	t.Helper()
	conf.Generator = gen.NewFlatGenerator(gamedata.Default())
	conf.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	if conf.RandomTickSpeed == 0 {
		conf.RandomTickSpeed = -1
	}
	w, err := New(conf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func tickN(t *testing.T, w *World, n int) update.Report {
	t.Helper()
	var rep update.Report
	for range n {
		r, err := w.Tick(context.Background())
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		rep.Completed += r.Completed
		rep.Discarded += r.Discarded
		rep.Tick = r.Tick
	}
	return rep
}

func TestNewRequiresGenerator(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New without generator succeeded")
	}
}

func TestGenerateRadius(t *testing.T) {
	w := newFlatWorld(t, Config{Workers: 4})
	n, err := w.GenerateRadius(context.Background(), chunk.Pos{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Errorf("GenerateRadius(2) = %d, want 25", n)
	}
	loaded := w.Loaded()
	if len(loaded) != 25 {
		t.Fatalf("Loaded() has %d chunks, want 25", len(loaded))
	}
	if loaded[0] != (chunk.Pos{X: -2, Z: -2}) || loaded[24] != (chunk.Pos{X: 2, Z: 2}) {
		t.Errorf("Loaded() not ordered: first %v, last %v", loaded[0], loaded[24])
	}
	for _, p := range loaded {
		if g, _ := w.Generation(p); g != 1 {
			t.Errorf("generation of %v = %d, want 1", p, g)
		}
	}
}

func TestGenerateRadiusReportsFailures(t *testing.T) {
	w := newFlatWorld(t, Config{})
	far := chunk.Pos{X: gen.MaxChunkCoord + 1}
	n, err := w.GenerateRadius(context.Background(), far, 0)
	if n != 0 || !errors.Is(err, gen.ErrInvalidCoordinate) {
		t.Errorf("GenerateRadius = %d, %v, want 0 and ErrInvalidCoordinate", n, err)
	}
	if _, ok := w.Generation(far); ok {
		t.Error("failed chunk was published")
	}
}

func TestBlock(t *testing.T) {
	w := newFlatWorld(t, Config{})
	if _, err := w.LoadChunk(context.Background(), chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		pos  chunk.BlockPos
		want block.ID
	}{
		{chunk.BlockPos{X: 0, Y: gen.FlatHeight, Z: 0}, block.Grass},
		{chunk.BlockPos{X: 7, Y: 0, Z: 9}, block.Dirt},
		{chunk.BlockPos{X: 15, Y: -30, Z: 15}, block.Stone},
		{chunk.BlockPos{X: 3, Y: chunk.MinY, Z: 3}, block.Bedrock},
		{chunk.BlockPos{X: 5, Y: 64, Z: 10}, block.Air},
	}
	for _, tt := range tests {
		id, _, err := w.Block(tt.pos)
		if err != nil || id != tt.want {
			t.Errorf("Block(%v) = %s, %v, want %s", tt.pos, id, err, tt.want)
		}
	}

	if _, _, err := w.Block(chunk.BlockPos{X: 16}); !errors.Is(err, update.ErrChunkNotLoaded) {
		t.Errorf("unloaded: err = %v, want ErrChunkNotLoaded", err)
	}
	if _, _, err := w.Block(chunk.BlockPos{Y: chunk.MaxY}); !errors.Is(err, update.ErrInvalidPosition) {
		t.Errorf("above world: err = %v, want ErrInvalidPosition", err)
	}
}

func TestSetBlockRelightsColumn(t *testing.T) {
	w := newFlatWorld(t, Config{})
	if _, err := w.LoadChunk(context.Background(), chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	grass := chunk.BlockPos{X: 4, Y: gen.FlatHeight, Z: 4}
	if _, s, _ := w.Block(grass); s.Light() != chunk.MaxLight {
		t.Fatalf("grass light = %d, want %d", s.Light(), chunk.MaxLight)
	}
	if err := w.SetBlock(grass.Side(chunk.FaceUp), block.Stone); err != nil {
		t.Fatal(err)
	}
	if _, s, _ := w.Block(grass); s.Light() != 0 {
		t.Errorf("covered grass light = %d, want 0", s.Light())
	}
	if got := w.HighestBlock(chunk.Pos{}); got != gen.FlatHeight+1 {
		t.Errorf("HighestBlock = %d, want %d", got, gen.FlatHeight+1)
	}
}

func TestSetBlockWaterSpreads(t *testing.T) {
	w := newFlatWorld(t, Config{})
	if _, err := w.LoadChunk(context.Background(), chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	src := chunk.BlockPos{X: 8, Y: gen.FlatHeight + 1, Z: 8}
	if err := w.SetBlock(src, block.Water); err != nil {
		t.Fatal(err)
	}
	pending := w.PendingUpdates()
	if len(pending) != 1 || pending[0].Pos != src || pending[0].Kind != update.KindWater {
		t.Fatalf("pending = %+v, want one water ticket at %v", pending, src)
	}

	rep := tickN(t, w, update.WaterSpreadDelay)
	if rep.Completed == 0 {
		t.Fatal("water ticket was not dispatched")
	}
	for _, f := range chunk.HorizontalFaces {
		id, s, err := w.Block(src.Side(f))
		if err != nil || id != block.Water || s.LiquidLevel() != 1 {
			t.Errorf("%s of source = %s level %d, want water level 1", f, id, s.LiquidLevel())
		}
	}
}

func TestSetBlockSandFalls(t *testing.T) {
	spawns := &recordingSpawner{}
	w := newFlatWorld(t, Config{Spawner: spawns})
	if _, err := w.LoadChunk(context.Background(), chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	pos := chunk.BlockPos{X: 2, Y: 20, Z: 2}
	if err := w.SetBlock(pos, block.Sand); err != nil {
		t.Fatal(err)
	}
	tickN(t, w, update.FallingDelay)
	if id, _, _ := w.Block(pos); id != block.Air {
		t.Errorf("sand still at %v: %s", pos, id)
	}
	if len(spawns.got) != 1 || spawns.got[0] != pos {
		t.Errorf("spawned = %v, want [%v]", spawns.got, pos)
	}
}

func TestUnloadDiscardsTickets(t *testing.T) {
	w := newFlatWorld(t, Config{})
	ctx := context.Background()
	if _, err := w.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	src := chunk.BlockPos{X: 8, Y: gen.FlatHeight + 1, Z: 8}
	if _, _, err := w.ScheduleUpdate(update.Request{Pos: src, Kind: update.KindWater, Delay: 1}); err != nil {
		t.Fatal(err)
	}

	if !w.Unload(chunk.Pos{}) {
		t.Fatal("Unload returned false")
	}
	if w.Unload(chunk.Pos{}) {
		t.Error("second Unload returned true")
	}
	if _, err := w.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	if g, _ := w.Generation(chunk.Pos{}); g != 3 {
		t.Errorf("generation after unload and reload = %d, want 3", g)
	}

	rep := tickN(t, w, 1)
	if rep.Discarded != 1 || rep.Completed != 0 {
		t.Errorf("report = %+v, want the stale ticket discarded", rep)
	}
}

func TestOverridesSurviveReload(t *testing.T) {
	w := newFlatWorld(t, Config{})
	ctx := context.Background()
	if _, err := w.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	pos := chunk.BlockPos{X: 1, Y: 10, Z: 1}
	if err := w.SetBlock(pos, block.Cobblestone); err != nil {
		t.Fatal(err)
	}
	w.Unload(chunk.Pos{})
	if _, err := w.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	if id, _, _ := w.Block(pos); id != block.Cobblestone {
		t.Errorf("Block(%v) after reload = %s, want cobblestone", pos, id)
	}

	count := 0
	w.ForEachOverride(func(p chunk.BlockPos, id block.ID) {
		count++
		if p != pos || id != block.Cobblestone {
			t.Errorf("override %v = %s", p, id)
		}
	})
	if count != 1 {
		t.Errorf("%d overrides, want 1", count)
	}
}

func TestPublishChunkBumpsGeneration(t *testing.T) {
	w := newFlatWorld(t, Config{})
	c := chunk.New(chunk.Pos{X: 3, Z: -1})
	if g := w.PublishChunk(c); g != 1 {
		t.Errorf("first publish generation = %d, want 1", g)
	}
	if g := w.PublishChunk(c.Clone()); g != 2 {
		t.Errorf("re-publish generation = %d, want 2", g)
	}
	if _, ok := w.Chunk(chunk.Pos{X: 3, Z: -1}); !ok {
		t.Error("published chunk not found")
	}
}

func TestWorldTick(t *testing.T) {
	w := newFlatWorld(t, Config{})

	if age, tod := w.Time(); age != 0 || tod != 0 {
		t.Errorf("initial time = (%d, %d), want (0, 0)", age, tod)
	}
	tickN(t, w, 1)
	if age, tod := w.Time(); age != 1 || tod != 1 {
		t.Errorf("after 1 tick = (%d, %d), want (1, 1)", age, tod)
	}

	w.SetTime(100, DayLength-1)
	tickN(t, w, 1)
	if age, tod := w.Time(); age != 101 || tod != 0 {
		t.Errorf("after wrap = (%d, %d), want (101, 0)", age, tod)
	}
}

func TestWorldTickFrozenTime(t *testing.T) {
	w := newFlatWorld(t, Config{})
	w.SetTimeOfDay(-6000)
	tickN(t, w, 1)
	if age, tod := w.Time(); age != 1 || tod != -6000 {
		t.Errorf("after tick with frozen time = (%d, %d), want (1, -6000)", age, tod)
	}
}

func TestSpawnHeight(t *testing.T) {
	w := newFlatWorld(t, Config{})
	if got := w.SpawnHeight(); got != gen.FlatHeight+1 {
		t.Errorf("SpawnHeight() = %d, want %d", got, gen.FlatHeight+1)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w := newFlatWorld(t, Config{TickRate: 100})
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if age, _ := w.Time(); age == 0 {
		t.Error("Run did not tick")
	}
}

package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/voxel-engine/internal/config"
	"github.com/OCharnyshevich/voxel-engine/internal/gamedata"
	"github.com/OCharnyshevich/voxel-engine/internal/world"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/world/gen"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.Config{
		Generator: gen.NewFlatGenerator(gamedata.Default()),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Seed:      11,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestNewCreatesDirectories(t *testing.T) {
	_, dir := newTestStorage(t)
	if fi, err := os.Stat(filepath.Join(dir, "world")); err != nil || !fi.IsDir() {
		t.Errorf("world directory missing: %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s, _ := newTestStorage(t)

	cfg := config.DefaultConfig()
	if err := s.LoadConfig(cfg); err != nil {
		t.Fatalf("LoadConfig without file: %v", err)
	}
	if cfg.GeneratorType != "default" {
		t.Errorf("missing file changed config: %+v", cfg)
	}

	cfg.Seed = 1234
	cfg.GeneratorType = "flat"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got := config.DefaultConfig()
	if err := s.LoadConfig(got); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *got != *cfg {
		t.Errorf("LoadConfig = %+v, want %+v", got, cfg)
	}
}

func TestLevelRoundTrip(t *testing.T) {
	s, dir := newTestStorage(t)

	if lvl, err := s.LoadLevel(); err != nil || lvl != nil {
		t.Fatalf("LoadLevel without file = %v, %v, want nil, nil", lvl, err)
	}

	w := newTestWorld(t)
	w.SetTime(5000, 12000)
	want := LevelFromWorld(w, "flat")
	if err := s.SaveLevel(want); err != nil {
		t.Fatalf("SaveLevel: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "world", "level.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	got, err := s.LoadLevel()
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if *got != *want {
		t.Errorf("LoadLevel = %+v, want %+v", got, want)
	}
	if got.ID != w.ID().String() || got.Seed != 11 || got.Age != 5000 || got.TimeOfDay != 12000 {
		t.Errorf("level = %+v", got)
	}
}

func TestWorldOverridesRoundTrip(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	w := newTestWorld(t)
	if _, err := w.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	edits := map[chunk.BlockPos]block.ID{
		{X: 1, Y: 10, Z: 1}: block.Cobblestone,
		{X: 2, Y: 3, Z: 2}:  block.Air,
	}
	for pos, id := range edits {
		if err := w.SetBlock(pos, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveWorld(w); err != nil {
		t.Fatalf("SaveWorld: %v", err)
	}

	fresh := newTestWorld(t)
	if err := s.LoadWorld(fresh); err != nil {
		t.Fatalf("LoadWorld: %v", err)
	}
	if _, err := fresh.LoadChunk(ctx, chunk.Pos{}); err != nil {
		t.Fatal(err)
	}
	for pos, want := range edits {
		if id, _, _ := fresh.Block(pos); id != want {
			t.Errorf("Block(%v) = %s, want %s", pos, id, want)
		}
	}
}

func TestLoadWorldRejectsBadPosition(t *testing.T) {
	s, dir := newTestStorage(t)
	data := `{"overrides":[{"x":0,"y":9999,"z":0,"block":1}]}`
	if err := os.WriteFile(filepath.Join(dir, "world", "overrides.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadWorld(newTestWorld(t)); err == nil {
		t.Error("LoadWorld accepted an out-of-range position")
	}
}

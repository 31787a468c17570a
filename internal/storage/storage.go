package storage

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/voxel-engine/internal/config"
	"github.com/OCharnyshevich/voxel-engine/internal/world"
	"github.com/OCharnyshevich/voxel-engine/internal/world/block"
	"github.com/OCharnyshevich/voxel-engine/internal/world/chunk"
)

// Storage handles file-based persistence for config, level metadata and block edits.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "world"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig reads config.yaml into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.yaml atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return atomicWrite(filepath.Join(s.dir, "config.yaml"), data)
}

// LoadLevel reads level.json, or returns nil if there is none.
func (s *Storage) LoadLevel() (*Level, error) {
	path := filepath.Join(s.dir, "world", "level.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read level: %w", err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	return &lvl, nil
}

// SaveLevel writes level.json atomically.
func (s *Storage) SaveLevel(lvl *Level) error {
	return s.atomicWriteJSON(filepath.Join(s.dir, "world", "level.json"), lvl)
}

// LoadWorld reads overrides.json and hands the block edits to the world,
// which applies them as chunks are generated.
func (s *Storage) LoadWorld(w *world.World) error {
	path := filepath.Join(s.dir, "world", "overrides.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read world overrides: %w", err)
	}

	var wd WorldData
	if err := json.Unmarshal(data, &wd); err != nil {
		return fmt.Errorf("parse world overrides: %w", err)
	}

	overrides := make(map[chunk.BlockPos]block.ID, len(wd.Overrides))
	for _, o := range wd.Overrides {
		pos := chunk.BlockPos{X: o.X, Y: o.Y, Z: o.Z}
		if !pos.Valid() {
			return fmt.Errorf("parse world overrides: position %v out of range", pos)
		}
		overrides[pos] = block.ID(o.Block)
	}

	w.LoadOverrides(overrides)
	s.log.Info("loaded world overrides", "count", len(overrides))
	return nil
}

// SaveWorld writes all block edits to overrides.json atomically.
func (s *Storage) SaveWorld(w *world.World) error {
	var wd WorldData
	w.ForEachOverride(func(pos chunk.BlockPos, id block.ID) {
		wd.Overrides = append(wd.Overrides, BlockOverride{
			X: pos.X, Y: pos.Y, Z: pos.Z, Block: uint16(id),
		})
	})
	slices.SortFunc(wd.Overrides, func(a, b BlockOverride) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Y, b.Y), cmp.Compare(a.Z, b.Z))
	})

	path := filepath.Join(s.dir, "world", "overrides.json")
	return s.atomicWriteJSON(path, &wd)
}

// atomicWriteJSON marshals v to JSON and writes it atomically.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return atomicWrite(path, append(data, '\n'))
}

// atomicWrite writes data using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

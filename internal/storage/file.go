package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kotobamud/engine/pkg/state"
)

// FileStorage implements Storage with one JSON document per player in
// a data directory. It is the single-machine default; the server binary
// switches to Redis when configured.
type FileStorage struct {
	dir    string
	logger *slog.Logger
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file-backed store rooted at dir, creating
// the directory if needed.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

func (f *FileStorage) Ping(ctx context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStorage) SavePlayer(ctx context.Context, p *state.Player) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	// Write-then-rename so a crash mid-save cannot truncate the record.
	tmp := f.path(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write player file: %w", err)
	}
	if err := os.Rename(tmp, f.path(p.ID)); err != nil {
		return fmt.Errorf("failed to replace player file: %w", err)
	}
	return nil
}

func (f *FileStorage) LoadPlayer(ctx context.Context, id string) (*state.Player, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read player file: %w", err)
	}

	var p state.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return &p, nil
}

// LoadPlayerByName scans the data directory for a record with a
// matching name, case-insensitively. Player counts per machine are
// small enough that a scan is fine.
func (f *FileStorage) LoadPlayerByName(ctx context.Context, name string) (*state.Player, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		p, err := f.LoadPlayer(ctx, id)
		if err != nil {
			f.logger.Warn("Skipping unreadable player file", "file", entry.Name(), "error", err)
			continue
		}
		if p != nil && strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, nil
}

package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/kotobamud/engine/pkg/state"
)

func newTestFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f, err := NewFileStorage(t.TempDir(), log)
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	return f
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	f := newTestFileStorage(t)
	ctx := context.Background()

	p := state.NewPlayer("Hana", "N5")
	p.X, p.Y = 0, 1
	p.AddItem("item_0,1_1")

	if err := f.SavePlayer(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := f.LoadPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.Name != "Hana" || loaded.Y != 1 {
		t.Errorf("unexpected record: %+v", loaded)
	}
}

func TestFileLoadMissingPlayer(t *testing.T) {
	f := newTestFileStorage(t)

	p, err := f.LoadPlayer(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if p != nil {
		t.Error("expected nil player for missing file")
	}
}

func TestFileLoadByNameCaseInsensitive(t *testing.T) {
	f := newTestFileStorage(t)
	ctx := context.Background()

	p := state.NewPlayer("Hana", "")
	if err := f.SavePlayer(ctx, p); err != nil {
		t.Fatal(err)
	}

	loaded, err := f.LoadPlayerByName(ctx, "hana")
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.ID != p.ID {
		t.Errorf("expected %s, got %+v", p.ID, loaded)
	}
}

func TestFileSaveOverwrites(t *testing.T) {
	f := newTestFileStorage(t)
	ctx := context.Background()

	p := state.NewPlayer("Hana", "")
	if err := f.SavePlayer(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.X = 7
	if err := f.SavePlayer(ctx, p); err != nil {
		t.Fatal(err)
	}

	loaded, err := f.LoadPlayer(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.X != 7 {
		t.Errorf("expected overwritten X=7, got %d", loaded.X)
	}
}

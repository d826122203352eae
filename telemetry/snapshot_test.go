package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	vx, vy := 12.5, -3.0
	parent := uint32(7)
	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		Room:       "lobby",
		Tick:       1000,
		BulletTime: 0.2,
		Entities: []EntityState{
			{
				ID:         3,
				Shape:      "circle",
				X:          150,
				Y:          250,
				VelX:       &vx,
				VelY:       &vy,
				Receiver:   "normal",
				Trigger:    "bird",
				StuckTo:    &parent,
				Collisions: 2,
			},
			{
				ID:       7,
				Shape:    "polygon",
				X:        150,
				Y:        240,
				Provider: "sticky",
			},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkImpactSpike,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Room != snapshot.Room || loaded.Tick != snapshot.Tick {
		t.Errorf("header mismatch: got %q/%d", loaded.Room, loaded.Tick)
	}
	if len(loaded.Entities) != 2 {
		t.Fatalf("Entities count mismatch: got %d, want 2", len(loaded.Entities))
	}

	bird := loaded.Entities[0]
	if bird.VelX == nil || *bird.VelX != vx {
		t.Errorf("VelX not preserved: %v", bird.VelX)
	}
	if bird.StuckTo == nil || *bird.StuckTo != parent {
		t.Errorf("StuckTo not preserved: %v", bird.StuckTo)
	}
	if wall := loaded.Entities[1]; wall.VelX != nil || wall.StuckTo != nil {
		t.Error("optional fields should stay nil for a still provider")
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkImpactSpike {
		t.Errorf("Bookmark not loaded: %+v", loaded.Bookmark)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkCollisionStorm,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_collision_storm.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tick": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}

package state

import (
	"errors"
	"image"
	"reflect"
	"testing"
	"time"
)

func TestStore_AttachAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Attach("terminal", 3, 5)
	tile := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s.SetTile(2, tile)
	s.SetPage("dashboard")

	snap := s.Snapshot()
	if snap.Device != "terminal" || snap.Rows != 3 || snap.Cols != 5 {
		t.Fatalf("snapshot grid = %s %dx%d, want terminal 3x5", snap.Device, snap.Rows, snap.Cols)
	}
	if len(snap.Tiles) != 15 || snap.Tiles[2] != tile {
		t.Fatalf("snapshot tiles = %d entries, tile[2]=%v, want 15 with tile[2] set", len(snap.Tiles), snap.Tiles[2])
	}
	if snap.Page != "dashboard" {
		t.Fatalf("Page = %q, want dashboard", snap.Page)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Tiles[2] = nil
	if s.Snapshot().Tiles[2] != tile {
		t.Fatalf("Snapshot should clone tiles")
	}
}

func TestStore_SetTileIgnoresOutOfRange(t *testing.T) {
	var s Store
	s.Attach("terminal", 1, 2)
	s.SetTile(-1, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	s.SetTile(2, image.NewRGBA(image.Rect(0, 0, 1, 1)))

	for i, tile := range s.Snapshot().Tiles {
		if tile != nil {
			t.Fatalf("tile %d = %v, want nil", i, tile)
		}
	}
}

func TestStore_ClearTiles(t *testing.T) {
	var s Store
	s.Attach("terminal", 1, 2)
	s.SetTile(0, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	s.ClearTiles()
	if s.Snapshot().Tiles[0] != nil {
		t.Fatalf("tile 0 not cleared")
	}
}

func TestStore_SessionFailures(t *testing.T) {
	var s Store

	origErr := errors.New("boom")
	s.SessionEnded(origErr)
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsDegraded() {
		t.Fatalf("after one failure: failures=%d degraded=%v, want 1/false", snap.ConsecutiveFailures, snap.IsDegraded())
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.SessionEnded(errors.New("again"))
	if !s.Snapshot().IsDegraded() {
		t.Fatalf("IsDegraded() = false, want true after two failures")
	}

	s.SessionEnded(nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("after success: failures=%d err=%v, want 0/nil", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestStore_MarkFetchAndRender(t *testing.T) {
	var s Store
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	s.MarkFetch(at)
	s.MarkRender(at.Add(time.Second))

	snap := s.Snapshot()
	if !snap.LastFetch.Equal(at) || !snap.LastRender.Equal(at.Add(time.Second)) {
		t.Fatalf("LastFetch/LastRender = %v/%v, want %v/%v", snap.LastFetch, snap.LastRender, at, at.Add(time.Second))
	}
}

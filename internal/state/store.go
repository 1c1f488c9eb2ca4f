package state

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// Snapshot represents the latest deck state visible to observers (the
// terminal driver and the preview server).
type Snapshot struct {
	Device              string
	Rows                int
	Cols                int
	Tiles               []image.Image // nil entries are blank keys
	Page                string
	LastFetch           time.Time
	LastRender          time.Time
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // device sessions that ended in an error, in a row
}

// IsDegraded returns true when the last two device sessions failed.
func (s Snapshot) IsDegraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Attach resets the tile canvas for a device of the given grid.
func (s *Store) Attach(device string, rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Device = device
	s.snapshot.Rows = rows
	s.snapshot.Cols = cols
	s.snapshot.Tiles = make([]image.Image, rows*cols)
	s.snapshot.Page = ""
	s.snapshot.LastFetch = time.Time{}
	s.snapshot.LastRender = time.Time{}
	s.snapshot.LastUpdated = time.Now()
}

// SetTile records the image shown on key index; nil blanks it. Out of range
// indices are ignored.
func (s *Store) SetTile(index int, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.snapshot.Tiles) {
		return
	}
	s.snapshot.Tiles[index] = img
	s.snapshot.LastUpdated = time.Now()
}

// ClearTiles blanks every key.
func (s *Store) ClearTiles() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshot.Tiles {
		s.snapshot.Tiles[i] = nil
	}
	s.snapshot.LastUpdated = time.Now()
}

// SetPage records the name of the page currently shown.
func (s *Store) SetPage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Page = name
	s.snapshot.LastUpdated = time.Now()
}

// MarkFetch records a completed data fetch.
func (s *Store) MarkFetch(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastFetch = at
}

// MarkRender records a completed render pass.
func (s *Store) MarkRender(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastRender = at
}

// SessionEnded records the outcome of a device session. A nil err resets
// the failure counter; the previous tiles are kept either way.
func (s *Store) SessionEnded(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tiles = cloneTiles(s.snapshot.Tiles)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Images handed to SetTile are never mutated afterwards, so sharing them
// between snapshots is safe; only the slice is copied.
func cloneTiles(tiles []image.Image) []image.Image {
	if len(tiles) == 0 {
		return nil
	}
	dup := make([]image.Image, len(tiles))
	copy(dup, tiles)
	return dup
}

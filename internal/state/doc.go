// Package state provides the thread-safe snapshot of what the deck shows.
//
// # Overview
//
// The store is the meeting point between the goroutines that draw on the
// device and the ones that observe it. Drivers record every key image they
// are given, the manager records the current page and its fetch/render
// times, and the supervisor records how device sessions end.
//
//	Producers:                       Consumers:
//	┌──────────────────────┐        ┌──────────────────────┐
//	│ driver SetKeyImage() │        │ terminal driver View │
//	│ manager page/stamps  │──────→ │ preview /frame       │
//	│ supervisor sessions  │ (mutex)│ preview /status      │
//	└──────────────────────┘        └──────────────────────┘
//
// # Concurrency Model
//
// Store uses a readers-writer lock. Writers hold it only while copying a
// few fields; Snapshot copies the tile slice so readers can keep it while
// new images arrive. Images themselves are shared: once handed to SetTile
// they must not be modified.
//
// # Session Outcomes
//
// SessionEnded(err) counts consecutive failed device sessions. IsDegraded
// reports two or more failures in a row, which the preview surfaces so a
// misconfigured API token is visible without reading logs.
package state

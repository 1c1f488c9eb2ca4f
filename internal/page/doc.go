// Package page implements the screens of the deck.
//
// A Page decides what every key shows, what a completed key press means
// and how often its data should be refreshed. Four pages exist:
//
//   - Dashboard shows today's tracked time and the running timesheet. Its
//     last key stops tracking, or starts the selection flow when idle.
//     While idle for five minutes or more the start key flashes.
//   - CustomerList, ProjectList and ActivityList walk from customer to
//     project to activity. Pressing an activity starts tracking it.
//
// The list pages share a pager that splits the list into shards of
// tileCount-1 elements. The last key advances to the next shard (wrapping
// to the first) on a short press and returns to the dashboard on a press
// held for LongPress or longer.
//
// Pages never replace the current page themselves. OnKeyPress returns a
// Result and the manager applies it. Page constructors may block on the
// server and are called without any manager lock held.
package page

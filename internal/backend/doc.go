// Package backend supervises the external backend server process.
//
// The Supervisor probes an ordered list of candidate directories for the
// backend entry point, launches the first viable one through an ordered list
// of strategies (uv first, then a direct interpreter), and stores the
// resulting handle in a Slot. The Slot is the only shared state: it holds at
// most one live handle, and once the handle is taken for termination it is
// never re-populated.
//
// Every failure in this package degrades: a missing directory or entry point
// skips to the next candidate, a failed spawn falls through to the next
// strategy, and a total failure leaves the application running with no
// backend. Nothing here aborts the shell.
package backend

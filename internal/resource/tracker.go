// Package resource provides the shared machinery behind the per-resource
// data stores: the request-generation tracker that keeps a slow early
// response from overwriting a faster later one, the debouncer used by
// interactive search, and the coalesced change signal stores notify through.
package resource

// Tracker orders result application for one logical fetch slot. Every
// dispatched fetch takes a generation from Begin; only the response carrying
// the latest generation is allowed to land. Tracker carries no lock of its
// own; callers invoke it under the owning store's mutex.
type Tracker struct {
	gen     uint64
	loading bool
	errMsg  string
}

// Begin marks a new fetch in flight and returns its generation.
func (t *Tracker) Begin() uint64 {
	t.gen++
	t.loading = true
	return t.gen
}

// Finish records the outcome of the fetch with the given generation. It
// returns false, changing nothing, when a newer fetch has been dispatched
// since; the stale response must be discarded by the caller too. An empty
// errMsg clears any prior error.
func (t *Tracker) Finish(gen uint64, errMsg string) bool {
	if gen != t.gen {
		return false
	}
	t.loading = false
	t.errMsg = errMsg
	return true
}

// Loading reports whether the latest fetch is still in flight.
func (t *Tracker) Loading() bool { return t.loading }

// Err returns the user-facing error of the last settled fetch, or "".
func (t *Tracker) Err() string { return t.errMsg }

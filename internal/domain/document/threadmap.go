package document

// ThreadMapEntry identifies the review thread rendered by a thread region.
type ThreadMapEntry struct {
	ThreadID       string
	FirstCommentID int64
}

// ThreadMap maps thread region handles to the threads they render. Handles
// are stable across edits, so the map never needs rebuilding after load.
type ThreadMap struct {
	entries map[Handle]ThreadMapEntry
}

func newThreadMap() ThreadMap {
	return ThreadMap{entries: make(map[Handle]ThreadMapEntry)}
}

func (m ThreadMap) set(h Handle, e ThreadMapEntry) {
	m.entries[h] = e
}

// Lookup returns the entry for a thread region handle.
func (m ThreadMap) Lookup(h Handle) (ThreadMapEntry, bool) {
	e, ok := m.entries[h]
	return e, ok
}

// Len returns the number of mapped threads.
func (m ThreadMap) Len() int { return len(m.entries) }

// Entries returns a copy of all entries.
func (m ThreadMap) Entries() map[Handle]ThreadMapEntry {
	out := make(map[Handle]ThreadMapEntry, len(m.entries))
	for h, e := range m.entries {
		out[h] = e
	}
	return out
}

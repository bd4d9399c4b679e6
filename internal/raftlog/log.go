// Package raftlog implements spec.md §4.2's log store: a durable, ordered
// sequence of log entries plus term/vote metadata, indices starting at 1
// with index 0 a term-0 sentinel for the first entry's prev_log_*.
package raftlog

import "fmt"

// Entry is spec.md §3's log entry: (index, term, command). Commands are
// opaque bytes to Raft; the state machine driver decodes them.
type Entry struct {
	Index   uint64
	Term    uint64
	Command []byte
}

// Meta is the persistent term/vote pair of spec.md §3 "Raft persistent
// state" (the log itself is the third persistent component).
type Meta struct {
	Term     uint64
	VotedFor string // node id, "" for none
}

// Sentinel is the index-0, term-0 entry used as prev_log_* for the first
// real entry (spec.md §4.2).
var Sentinel = Entry{Index: 0, Term: 0}

// Store is the durable log abstraction spec.md §4.2 requires. All mutating
// methods must durably persist before returning.
type Store interface {
	// Append adds entries to the end of the log. Appending an entry whose
	// index is already present and identical is a no-op (idempotent,
	// spec.md §4.1 AppendEntries "idempotent on exact duplicates").
	Append(entries []Entry) error

	// Get returns the entry at index, or (Entry{}, false) if absent.
	Get(index uint64) (Entry, bool)

	// Range returns entries with index in [lo, hi).
	Range(lo, hi uint64) []Entry

	// TruncateSuffix discards every entry with index >= from.
	TruncateSuffix(from uint64) error

	// Last returns the most recently appended entry, or Sentinel if the log
	// is empty.
	Last() Entry

	// LoadMeta returns the persisted term/vote.
	LoadMeta() Meta

	// StoreMeta durably persists term and votedFor.
	StoreMeta(term uint64, votedFor string) error
}

// ErrGapInLog is returned by Append when entries are not contiguous with the
// existing log (spec.md §3 "Index is gap-free and monotonically increasing").
var ErrGapInLog = fmt.Errorf("raftlog: append would leave a gap in the log")

package raftlog

import (
	"bytes"
	"sync"
)

// MemStore is the in-memory Store implementation: spec.md §4.7 notes that
// "a compliant implementation may [defer durability] provided determinism
// across replicas is maintained", which the in-memory log shares with the
// in-memory KV store for the same reason (this is a study artifact, not a
// crash-safety exercise). FileStore wraps MemStore to add real durability
// when config selects file-backed storage.
type MemStore struct {
	mu      sync.Mutex
	entries []Entry // entries[i] has Index == i+1
	meta    Meta
}

// NewMemStore returns an empty, in-memory log store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Append(entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(entries)
}

func (m *MemStore) appendLocked(entries []Entry) error {
	for _, e := range entries {
		lastIdx := uint64(len(m.entries))
		switch {
		case e.Index == lastIdx+1:
			m.entries = append(m.entries, e)
		case e.Index <= lastIdx:
			// idempotent on exact duplicates; a differing entry replaces
			// the one at this index and every later entry is discarded.
			existing := m.entries[e.Index-1]
			if existing.Index != e.Index || existing.Term != e.Term || !bytes.Equal(existing.Command, e.Command) {
				m.entries[e.Index-1] = e
				m.entries = m.entries[:e.Index]
			}
		default:
			return ErrGapInLog
		}
	}
	return nil
}

func (m *MemStore) Get(index uint64) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(index)
}

func (m *MemStore) getLocked(index uint64) (Entry, bool) {
	if index == 0 {
		return Sentinel, true
	}
	if index > uint64(len(m.entries)) {
		return Entry{}, false
	}
	return m.entries[index-1], true
}

func (m *MemStore) Range(lo, hi uint64) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lo < 1 {
		lo = 1
	}
	if hi > uint64(len(m.entries))+1 {
		hi = uint64(len(m.entries)) + 1
	}
	if lo >= hi {
		return nil
	}
	out := make([]Entry, hi-lo)
	copy(out, m.entries[lo-1:hi-1])
	return out
}

func (m *MemStore) TruncateSuffix(from uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from < 1 {
		from = 1
	}
	if from <= uint64(len(m.entries)) {
		m.entries = m.entries[:from-1]
	}
	return nil
}

func (m *MemStore) Last() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Sentinel
	}
	return m.entries[len(m.entries)-1]
}

func (m *MemStore) LoadMeta() Meta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

func (m *MemStore) StoreMeta(term uint64, votedFor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = Meta{Term: term, VotedFor: votedFor}
	return nil
}

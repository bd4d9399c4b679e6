// Package kvstore implements the ordered byte-string map described in
// spec.md §4.7, backed by github.com/hashicorp/go-immutable-radix. The
// immutable tree gives every read a point-in-time snapshot for free, which
// the state machine's read-only query path relies on (see Snapshot).
package kvstore

import (
	iradix "github.com/hashicorp/go-immutable-radix"
)

// Store is an ordered map from byte-string keys to byte-string values.
// It does no locking of its own: Set and Delete replace the tree root without
// synchronization, so they must not run concurrently with any other method on
// the same Store. A Snapshot taken earlier holds its own immutable tree and
// may be read while the Store is being mutated.
type Store struct {
	tree *iradix.Tree
}

// New returns an empty Store.
func New() *Store {
	return &Store{tree: iradix.New()}
}

// Get returns the value at key, or (nil, false) if absent.
func (s *Store) Get(key []byte) ([]byte, bool) {
	v, ok := s.tree.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Set installs value at key, replacing any existing value.
func (s *Store) Set(key, value []byte) {
	tree, _, _ := s.tree.Insert(key, value)
	s.tree = tree
}

// Delete removes key, a no-op if it is already absent.
func (s *Store) Delete(key []byte) {
	tree, _, ok := s.tree.Delete(key)
	if ok {
		s.tree = tree
	}
}

// Entry is one (key, value) pair yielded by ScanPrefix.
type Entry struct {
	Key   []byte
	Value []byte
}

// ScanPrefix returns every entry whose key starts with prefix, in ascending
// key order.
func (s *Store) ScanPrefix(prefix []byte) []Entry {
	return scanPrefix(s.tree, prefix)
}

func scanPrefix(tree *iradix.Tree, prefix []byte) []Entry {
	it := tree.Root().Iterator()
	it.SeekPrefix(prefix)
	var out []Entry
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Entry{Key: append([]byte(nil), k...), Value: v.([]byte)})
	}
	return out
}

// Len reports the number of entries currently stored.
func (s *Store) Len() int {
	return s.tree.Len()
}

// Snapshot captures the current tree for a read-only query. Because the
// underlying radix tree is persistent/immutable, later Set/Delete calls on s
// build new tree roots and never mutate the one held by the snapshot, so a
// read-only query iterating a Snapshot cannot observe a concurrent apply.
type Snapshot struct {
	tree *iradix.Tree
}

// Snapshot returns a frozen view of the store as of this call.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{tree: s.tree}
}

// Get reads key as of the snapshot.
func (sn *Snapshot) Get(key []byte) ([]byte, bool) {
	v, ok := sn.tree.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// ScanPrefix scans as of the snapshot, in ascending key order.
func (sn *Snapshot) ScanPrefix(prefix []byte) []Entry {
	return scanPrefix(sn.tree, prefix)
}

package raftlog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/raftlog"
)

func TestMemStoreAppendContiguous(t *testing.T) {
	m := raftlog.NewMemStore()
	require.NoError(t, m.Append([]raftlog.Entry{
		{Index: 1, Term: 1, Command: []byte("a")},
		{Index: 2, Term: 1, Command: []byte("b")},
	}))
	require.Equal(t, uint64(2), m.Last().Index)

	e, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, []byte("a"), e.Command)
}

func TestMemStoreAppendGapRejected(t *testing.T) {
	m := raftlog.NewMemStore()
	err := m.Append([]raftlog.Entry{{Index: 2, Term: 1}})
	require.ErrorIs(t, err, raftlog.ErrGapInLog)
}

func TestMemStoreAppendDuplicateIsIdempotent(t *testing.T) {
	m := raftlog.NewMemStore()
	entry := raftlog.Entry{Index: 1, Term: 1, Command: []byte("a")}
	require.NoError(t, m.Append([]raftlog.Entry{entry}))
	require.NoError(t, m.Append([]raftlog.Entry{entry}))
	require.Equal(t, uint64(1), m.Last().Index)
}

func TestMemStoreAppendConflictingEntryTruncates(t *testing.T) {
	m := raftlog.NewMemStore()
	require.NoError(t, m.Append([]raftlog.Entry{
		{Index: 1, Term: 1},
		{Index: 2, Term: 1},
		{Index: 3, Term: 1},
	}))
	require.NoError(t, m.Append([]raftlog.Entry{{Index: 2, Term: 2}}))
	require.Equal(t, uint64(2), m.Last().Index)
	e, _ := m.Get(2)
	require.Equal(t, uint64(2), e.Term)
}

func TestMemStoreGetSentinelAtZero(t *testing.T) {
	m := raftlog.NewMemStore()
	e, ok := m.Get(0)
	require.True(t, ok)
	require.Equal(t, raftlog.Sentinel, e)
}

func TestMemStoreRangeClampsBounds(t *testing.T) {
	m := raftlog.NewMemStore()
	require.NoError(t, m.Append([]raftlog.Entry{
		{Index: 1, Term: 1}, {Index: 2, Term: 1}, {Index: 3, Term: 1},
	}))
	require.Len(t, m.Range(0, 100), 3)
	require.Len(t, m.Range(2, 3), 1)
	require.Empty(t, m.Range(5, 10))
}

func TestMemStoreTruncateSuffix(t *testing.T) {
	m := raftlog.NewMemStore()
	require.NoError(t, m.Append([]raftlog.Entry{
		{Index: 1, Term: 1}, {Index: 2, Term: 1}, {Index: 3, Term: 1},
	}))
	require.NoError(t, m.TruncateSuffix(2))
	require.Equal(t, uint64(1), m.Last().Index)
}

func TestMemStoreMetaRoundTrip(t *testing.T) {
	m := raftlog.NewMemStore()
	require.NoError(t, m.StoreMeta(5, "node-2"))
	require.Equal(t, raftlog.Meta{Term: 5, VotedFor: "node-2"}, m.LoadMeta())
}

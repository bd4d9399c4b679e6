package raft

import (
	"context"

	"github.com/raftsql/raftsql/internal/raftlog"
)

// applyLoop is the sole consumer of applyCh: it applies committed entries to
// the state machine strictly in log order and resolves any Submit future
// waiting on that index (spec.md §4.1 "apply loop", §9 "exactly one entry
// applied at a time").
func (n *Node) applyLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.closed:
			return
		case entry := <-n.applyCh:
			n.applyEntry(entry)
		}
	}
}

func (n *Node) applyEntry(entry raftlog.Entry) {
	result, err := n.sm.Apply(entry.Index, entry.Command)
	if err != nil {
		rlog.Error().Err(err).Uint64("index", entry.Index).Msg("state machine apply failed")
	}
	n.do(func() {
		n.lastApplied = entry.Index
		key := pendingKey{term: entry.Term, index: entry.Index}
		if ch, ok := n.pending[key]; ok {
			ch <- pendingResult{result: result, err: err}
			delete(n.pending, key)
		}
	})
}

package raft

import (
	"context"

	"github.com/raftsql/raftsql/internal/raftlog"
)

// Submit appends command as a new log entry and blocks until it is applied
// to the state machine (or the context is cancelled, or this node stops
// being leader for the entry's term). This is spec.md §6's client-facing
// entry point; internal/clientapi sends every query through it, read-only
// ones included.
func (n *Node) Submit(ctx context.Context, command []byte) (interface{}, error) {
	resultCh := make(chan pendingResult, 1)
	var submitErr error

	n.do(func() {
		if n.role != Leader {
			submitErr = &NotLeaderError{Hint: n.leaderHintLocked()}
			return
		}
		last := n.log.Last()
		entry := raftlog.Entry{
			Index:   last.Index + 1,
			Term:    n.currentTerm,
			Command: command,
		}
		if err := n.log.Append([]raftlog.Entry{entry}); err != nil {
			submitErr = err
			return
		}
		n.pending[pendingKey{term: entry.Term, index: entry.Index}] = resultCh
		if n.quorum() <= 1 {
			n.advanceCommitIndex()
		} else {
			n.broadcastAppendEntries()
		}
	})
	if submitErr != nil {
		return nil, submitErr
	}

	select {
	case res := <-resultCh:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-n.closed:
		return nil, ErrShuttingDown
	}
}

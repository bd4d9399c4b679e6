package raft

import (
	"context"
	"time"

	"github.com/raftsql/raftsql/internal/raftlog"
)

// onHeartbeatTimeout fires every HeartbeatInterval while this node is
// leader (spec.md §4.1 "Leader behavior. Every H, send AppendEntries...").
func (n *Node) onHeartbeatTimeout() {
	if n.role != Leader {
		return
	}
	n.broadcastAppendEntries()
	n.resetHeartbeatTimer()
}

// broadcastAppendEntries sends AppendEntries (possibly empty, i.e. a
// heartbeat) to every peer, starting at each peer's nextIndex.
func (n *Node) broadcastAppendEntries() {
	for _, peerID := range sortedPeerIDs(n.peers) {
		peer := n.peers[peerID]
		args := n.buildAppendArgs(peerID)
		go n.sendAppendEntries(peerID, peer, args)
	}
}

// buildAppendArgs must run on the driver loop goroutine (it reads
// nextIndex); the log itself is safe for concurrent reads from other
// goroutines.
func (n *Node) buildAppendArgs(peerID string) *AppendEntriesArgs {
	next := n.nextIndex[peerID]
	if next == 0 {
		next = 1
	}
	prevIndex := next - 1
	prevEntry, _ := n.log.Get(prevIndex)
	last := n.log.Last()
	var entries []raftlog.Entry
	if next <= last.Index {
		entries = n.log.Range(next, last.Index+1)
	}
	return &AppendEntriesArgs{
		Term:         n.currentTerm,
		LeaderID:     n.id,
		PrevLogIndex: prevEntry.Index,
		PrevLogTerm:  prevEntry.Term,
		Entries:      entries,
		LeaderCommit: n.commitIndex,
	}
}

func (n *Node) sendAppendEntries(peerID string, peer Peer, args *AppendEntriesArgs) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	reply, err := peer.AppendEntries(ctx, args)
	if err != nil {
		rlog.Debug().Err(err).Str("peer", peerID).Msg("AppendEntries failed")
		return
	}
	n.do(func() { n.handleAppendReply(peerID, args, reply) })
}

// handleAppendReply implements spec.md §4.1's leader-side AppendEntries
// result handling: advance match/next on success, back off by one and retry
// on rejection (no fast-backoff optimization).
func (n *Node) handleAppendReply(peerID string, args *AppendEntriesArgs, reply *AppendEntriesReply) {
	if reply.Term > n.currentTerm {
		n.becomeFollower(reply.Term)
		return
	}
	if n.role != Leader || n.currentTerm != args.Term {
		return
	}
	if reply.Success {
		newMatch := args.PrevLogIndex + uint64(len(args.Entries))
		if newMatch > n.matchIndex[peerID] {
			n.matchIndex[peerID] = newMatch
		}
		if newMatch+1 > n.nextIndex[peerID] {
			n.nextIndex[peerID] = newMatch + 1
		}
		n.advanceCommitIndex()
		return
	}
	if n.nextIndex[peerID] > 1 {
		n.nextIndex[peerID]--
	}
	peer := n.peers[peerID]
	retryArgs := n.buildAppendArgs(peerID)
	go n.sendAppendEntries(peerID, peer, retryArgs)
}

// advanceCommitIndex implements spec.md §4.1: "the highest N >=
// commit_index such that a majority of match_index >= N and
// log[N].term == current_term".
func (n *Node) advanceCommitIndex() {
	last := n.log.Last()
	for N := last.Index; N > n.commitIndex; N-- {
		entry, ok := n.log.Get(N)
		if !ok || entry.Term != n.currentTerm {
			continue
		}
		count := 1 // self
		for _, m := range n.matchIndex {
			if m >= N {
				count++
			}
		}
		if count >= n.quorum() {
			n.setCommitIndex(N)
			return
		}
	}
}

func (n *Node) setCommitIndex(newCommit uint64) {
	if newCommit <= n.commitIndex {
		return
	}
	n.publishCommitted(n.commitIndex, newCommit)
	n.commitIndex = newCommit
}

// publishCommitted enqueues every newly committed entry onto commitQueue, a
// FIFO drained by the single long-lived publishLoop goroutine (spec.md §5
// "Never blocks on state machine work"). Because this method only ever runs
// on the driver loop goroutine, successive calls enqueue their batches in
// call order; with exactly one consumer reading commitQueue in order, the
// applier is guaranteed to see entries strictly in log order even when
// commit index advances more than once before the first batch is applied.
func (n *Node) publishCommitted(oldCommit, newCommit uint64) {
	entries := n.log.Range(oldCommit+1, newCommit+1)
	n.commitQueue <- entries
}

// publishLoop is the sole consumer of commitQueue and the sole producer for
// applyCh, so entries always reach the applier in the order their batches
// were enqueued.
func (n *Node) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.closed:
			return
		case batch := <-n.commitQueue:
			for _, e := range batch {
				select {
				case n.applyCh <- e:
				case <-ctx.Done():
					return
				case <-n.closed:
					return
				}
			}
		}
	}
}

// HandleAppendEntries answers an AppendEntries RPC (spec.md §4.1).
func (n *Node) HandleAppendEntries(args *AppendEntriesArgs) *AppendEntriesReply {
	var reply AppendEntriesReply
	n.do(func() {
		if args.Term < n.currentTerm {
			reply.Term = n.currentTerm
			reply.Success = false
			return
		}
		n.becomeFollower(args.Term)
		n.leaderID = args.LeaderID
		n.resetElectionTimer()
		reply.Term = n.currentTerm

		prev, ok := n.log.Get(args.PrevLogIndex)
		if !ok || prev.Term != args.PrevLogTerm {
			reply.Success = false
			return
		}

		if len(args.Entries) > 0 {
			n.reconcileLog(args.PrevLogIndex, args.Entries)
		}

		last := n.log.Last()
		newCommit := args.LeaderCommit
		if newCommit > last.Index {
			newCommit = last.Index
		}
		n.setCommitIndex(newCommit)
		reply.Success = true
	})
	return &reply
}

// reconcileLog implements spec.md §4.1 "truncate any conflicting suffix
// starting at prev_log_index+1, append new entries (idempotent on exact
// duplicates)".
func (n *Node) reconcileLog(prevIndex uint64, entries []raftlog.Entry) {
	for i, e := range entries {
		idx := prevIndex + uint64(i) + 1
		existing, ok := n.log.Get(idx)
		if ok && existing.Term != e.Term {
			if err := n.log.TruncateSuffix(idx); err != nil {
				rlog.Error().Err(err).Msg("failed to truncate conflicting log suffix")
				return
			}
			if err := n.log.Append(entries[i:]); err != nil {
				rlog.Error().Err(err).Msg("failed to append reconciled log entries")
			}
			return
		}
		if !ok {
			if err := n.log.Append(entries[i:]); err != nil {
				rlog.Error().Err(err).Msg("failed to append new log entries")
			}
			return
		}
	}
}

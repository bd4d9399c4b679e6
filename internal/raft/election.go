package raft

import (
	"context"
	"time"
)

// onElectionTimeout runs on the driver loop goroutine. Follower->Candidate:
// the election timeout elapsed with no heartbeat (spec.md §4.1).
func (n *Node) onElectionTimeout() {
	if n.role == Leader {
		// becomeLeader leaves the election timer running; a leader ignores
		// it when it fires
		return
	}
	n.startElection()
}

// startElection implements spec.md §4.1 "Candidate on start": increment
// term, vote for self, reset timer, broadcast RequestVote.
func (n *Node) startElection() {
	n.currentTerm++
	n.votedFor = n.id
	n.role = Candidate
	n.persistMeta()
	n.resetElectionTimer()
	n.votesGranted = map[string]bool{n.id: true}

	rlog.Info().Str("id", n.id).Uint64("term", n.currentTerm).Msg("starting election")

	last := n.log.Last()
	term := n.currentTerm
	args := &RequestVoteArgs{
		Term:         term,
		CandidateID:  n.id,
		LastLogIndex: last.Index,
		LastLogTerm:  last.Term,
	}

	if n.quorum() <= 1 {
		// single-node cluster: self-vote alone is already a majority
		n.becomeLeader()
		return
	}

	for peerID, peer := range n.peers {
		go n.sendRequestVote(peerID, peer, args)
	}
}

func (n *Node) sendRequestVote(peerID string, peer Peer, args *RequestVoteArgs) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	reply, err := peer.RequestVote(ctx, args)
	if err != nil {
		rlog.Debug().Err(err).Str("peer", peerID).Msg("RequestVote failed")
		return
	}
	n.do(func() { n.handleVoteReply(args.Term, peerID, reply) })
}

// handleVoteReply implements spec.md §4.1 Candidate->Leader / ->Follower
// transitions based on the tallied votes.
func (n *Node) handleVoteReply(requestTerm uint64, peerID string, reply *RequestVoteReply) {
	if reply.Term > n.currentTerm {
		n.becomeFollower(reply.Term)
		return
	}
	if n.role != Candidate || n.currentTerm != requestTerm {
		// stale reply from a past term or we already moved on
		return
	}
	if !reply.VoteGranted {
		return
	}
	n.votesGranted[peerID] = true
	if len(n.votesGranted) >= n.quorum() {
		n.becomeLeader()
	}
}

// becomeLeader implements spec.md §4.1 "Leader behavior. On election":
// initialize nextIndex/matchIndex and immediately broadcast heartbeats.
func (n *Node) becomeLeader() {
	n.role = Leader
	n.leaderID = n.id
	last := n.log.Last()
	for peerID := range n.peers {
		n.nextIndex[peerID] = last.Index + 1
		n.matchIndex[peerID] = 0
	}
	rlog.Info().Str("id", n.id).Uint64("term", n.currentTerm).Msg("became leader")
	n.broadcastAppendEntries()
	n.resetHeartbeatTimer()
}

// HandleRequestVote answers a RequestVote RPC (spec.md §4.1). Runs on the
// driver loop via do, so it observes and mutates Raft state exclusively.
func (n *Node) HandleRequestVote(args *RequestVoteArgs) *RequestVoteReply {
	var reply RequestVoteReply
	n.do(func() {
		if args.Term > n.currentTerm {
			n.becomeFollower(args.Term)
		}
		reply.Term = n.currentTerm

		switch {
		case args.Term < n.currentTerm:
			reply.VoteGranted = false
		case n.votedFor != "" && n.votedFor != args.CandidateID:
			reply.VoteGranted = false
		case !n.candidateLogUpToDate(args.LastLogIndex, args.LastLogTerm):
			reply.VoteGranted = false
		default:
			n.votedFor = args.CandidateID
			n.persistMeta()
			n.resetElectionTimer()
			reply.VoteGranted = true
		}
	})
	return &reply
}

// candidateLogUpToDate implements spec.md §4.1's RequestVote "at least as
// up-to-date" rule: compare last_log_term, tiebreak on last_log_index.
func (n *Node) candidateLogUpToDate(candLastIndex, candLastTerm uint64) bool {
	last := n.log.Last()
	if candLastTerm != last.Term {
		return candLastTerm > last.Term
	}
	return candLastIndex >= last.Index
}

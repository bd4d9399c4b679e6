// Package raft implements spec.md §4.1: leader election, log replication,
// commit-index advancement, and the apply loop, as a single actor owning all
// Raft state behind one inbox (spec.md §9 design note), generalizing the
// teacher's mutex-guarded Node (internal/node/node.go in the retrieval pack)
// into that shape.
package raft

import (
	"context"
	"errors"
	"time"

	"github.com/raftsql/raftsql/internal/raftlog"
)

// Role is a node's current position in the Raft state machine (spec.md
// §4.1). Node.Status reports the role held at the moment it is asked, so
// Candidate is visible while an election is in progress.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// Errors surfaced to callers (spec.md §7).
var (
	ErrShuttingDown = errors.New("raft: node is shutting down")
)

// NotLeaderError is spec.md §7's NotLeader(hint?): the request was rejected
// because this node is not (or is no longer) the leader.
type NotLeaderError struct {
	Hint string // address of the suspected leader, "" if unknown
}

func (e *NotLeaderError) Error() string {
	if e.Hint == "" {
		return "raft: not leader"
	}
	return "raft: not leader, try " + e.Hint
}

// RequestVoteArgs is spec.md §4.1's RequestVote RPC request.
type RequestVoteArgs struct {
	Term         uint64
	CandidateID  string
	LastLogIndex uint64
	LastLogTerm  uint64
}

// RequestVoteReply is the RequestVote RPC response.
type RequestVoteReply struct {
	Term        uint64
	VoteGranted bool
}

// AppendEntriesArgs is spec.md §4.1's AppendEntries RPC request (doubling as
// the heartbeat when Entries is empty).
type AppendEntriesArgs struct {
	Term         uint64
	LeaderID     string
	PrevLogIndex uint64
	PrevLogTerm  uint64
	Entries      []raftlog.Entry
	LeaderCommit uint64
}

// AppendEntriesReply is the AppendEntries RPC response.
type AppendEntriesReply struct {
	Term    uint64
	Success bool
}

// Peer is how a Node reaches one other member of the cluster. Transport
// framing (spec.md §6 "Peer RPC... transport framing is the concern of the
// collaborator") lives in internal/transport; Peer is the boundary the Raft
// driver needs: reliable-delivery-or-timeout, at-most-once per message.
type Peer interface {
	RequestVote(ctx context.Context, args *RequestVoteArgs) (*RequestVoteReply, error)
	AppendEntries(ctx context.Context, args *AppendEntriesArgs) (*AppendEntriesReply, error)
}

// StateMachine is the replicated state machine a Node drives (spec.md
// §4.1 apply loop). Result is opaque to Raft, per spec.md §3 "commands are
// opaque to Raft"; internal/statemachine supplies the SQL-aware
// implementation.
type StateMachine interface {
	Apply(index uint64, command []byte) (result interface{}, err error)
}

// Config configures a Node's timers and addressing (spec.md §6).
type Config struct {
	ID                   string
	Peers                map[string]Peer
	ElectionTimeoutMin   time.Duration
	ElectionTimeoutMax   time.Duration
	HeartbeatInterval    time.Duration
}

// withDefaults fills in spec.md §6's suggested defaults (heartbeat 200ms,
// election 500-1000ms) for any zero-valued duration fields.
func (c Config) withDefaults() Config {
	if c.ElectionTimeoutMin == 0 {
		c.ElectionTimeoutMin = 500 * time.Millisecond
	}
	if c.ElectionTimeoutMax == 0 {
		c.ElectionTimeoutMax = 1000 * time.Millisecond
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 200 * time.Millisecond
	}
	return c
}

package raft

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/raftsql/raftsql/internal/log"
	"github.com/raftsql/raftsql/internal/raftlog"
)

var rlog = log.With("raft")

// Node is one member of a Raft cluster. All mutable Raft state (role, term,
// vote, commit/apply indices, peer progress) is owned exclusively by the
// goroutine running Node.run; every other method communicates with it by
// pushing a closure onto actions, so there is never fine-grained locking
// around the state itself (spec.md §9 design note).
type Node struct {
	id     string
	peers  map[string]Peer
	log    raftlog.Store
	sm     StateMachine
	config Config

	actions     chan func()
	applyCh     chan raftlog.Entry
	commitQueue chan []raftlog.Entry
	closed      chan struct{}
	closeMu     sync.Once

	// --- owned only by run() ---
	role        Role
	currentTerm uint64
	votedFor    string
	leaderID    string
	commitIndex uint64
	lastApplied uint64
	nextIndex   map[string]uint64
	matchIndex  map[string]uint64
	votesGranted map[string]bool

	electionTimer  *time.Timer
	heartbeatTimer *time.Timer

	pending map[pendingKey]chan pendingResult
}

type pendingKey struct {
	term  uint64
	index uint64
}

type pendingResult struct {
	result interface{}
	err    error
}

// New constructs a Node around log and sm, loading persisted term/vote from
// log (spec.md §3 "Raft persistent state... survive restart").
func New(config Config, logStore raftlog.Store, sm StateMachine) *Node {
	config = config.withDefaults()
	meta := logStore.LoadMeta()
	n := &Node{
		id:           config.ID,
		peers:        config.Peers,
		log:          logStore,
		sm:           sm,
		config:       config,
		actions:      make(chan func()),
		applyCh:      make(chan raftlog.Entry, 64),
		commitQueue:  make(chan []raftlog.Entry, 256),
		closed:       make(chan struct{}),
		role:         Follower,
		currentTerm:  meta.Term,
		votedFor:     meta.VotedFor,
		nextIndex:    map[string]uint64{},
		matchIndex:   map[string]uint64{},
		votesGranted: map[string]bool{},
		pending:      map[pendingKey]chan pendingResult{},
	}
	n.electionTimer = time.NewTimer(n.randomElectionTimeout())
	n.heartbeatTimer = time.NewTimer(config.HeartbeatInterval)
	if !n.heartbeatTimer.Stop() {
		<-n.heartbeatTimer.C
	}
	return n
}

// Start launches the driver loop, the single ordered publisher that drains
// commitQueue onto applyCh, and the applier. All three stop when ctx is
// cancelled.
func (n *Node) Start(ctx context.Context) {
	go n.run(ctx)
	go n.publishLoop(ctx)
	go n.applyLoop(ctx)
}

// Close stops the driver; safe to call more than once.
func (n *Node) Close() {
	n.closeMu.Do(func() { close(n.closed) })
}

func (n *Node) randomElectionTimeout() time.Duration {
	lo := n.config.ElectionTimeoutMin
	hi := n.config.ElectionTimeoutMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

func (n *Node) quorum() int {
	return (len(n.peers)+1)/2 + 1
}

// do submits fn to run on the driver loop and blocks until it has executed,
// used by RPC handlers and Submit which need a reply computed under the
// actor's exclusive state.
func (n *Node) do(fn func()) {
	done := make(chan struct{})
	select {
	case n.actions <- func() { fn(); close(done) }:
		<-done
	case <-n.closed:
	}
}

// run is the single owning actor for all Raft state: it processes one event
// at a time, never blocking on state machine work (spec.md §5).
func (n *Node) run(ctx context.Context) {
	defer n.electionTimer.Stop()
	defer n.heartbeatTimer.Stop()
	for {
		select {
		case <-ctx.Done():
			n.Close()
			return
		case <-n.closed:
			return
		case fn := <-n.actions:
			fn()
		case <-n.electionTimer.C:
			n.onElectionTimeout()
		case <-n.heartbeatTimer.C:
			n.onHeartbeatTimeout()
		}
	}
}

func (n *Node) resetElectionTimer() {
	if !n.electionTimer.Stop() {
		select {
		case <-n.electionTimer.C:
		default:
		}
	}
	n.electionTimer.Reset(n.randomElectionTimeout())
}

func (n *Node) resetHeartbeatTimer() {
	if !n.heartbeatTimer.Stop() {
		select {
		case <-n.heartbeatTimer.C:
		default:
		}
	}
	n.heartbeatTimer.Reset(n.config.HeartbeatInterval)
}

func (n *Node) stopHeartbeatTimer() {
	if !n.heartbeatTimer.Stop() {
		select {
		case <-n.heartbeatTimer.C:
		default:
		}
	}
}

// becomeFollower adopts role Follower, and if term > currentTerm, the new
// term (clearing votedFor), per spec.md §4.1 "Any role -> Follower: on
// observing a message with term > current_term".
func (n *Node) becomeFollower(term uint64) {
	stepDown := n.role == Leader
	if term > n.currentTerm {
		n.currentTerm = term
		n.votedFor = ""
		n.persistMeta()
	}
	n.role = Follower
	n.leaderID = ""
	if stepDown {
		n.stopHeartbeatTimer()
		n.failPendingForTerm(term)
	}
}

func (n *Node) persistMeta() {
	if err := n.log.StoreMeta(n.currentTerm, n.votedFor); err != nil {
		rlog.Error().Err(err).Msg("failed to persist term/vote")
	}
}

// failPendingForTerm resolves every still-pending Submit future with
// NotLeader, per spec.md §9 "on term change, all futures in the prior term
// are failed with NotLeader".
func (n *Node) failPendingForTerm(newTerm uint64) {
	for key, ch := range n.pending {
		if key.term < newTerm {
			ch <- pendingResult{err: &NotLeaderError{Hint: n.leaderHintLocked()}}
			delete(n.pending, key)
		}
	}
}

func (n *Node) leaderHintLocked() string {
	return n.leaderID
}

// Status is spec.md §6's Status RPC payload.
type Status struct {
	NodeID     string
	Term       uint64
	Role       Role
	LeaderHint string
}

// Status returns the node's current status.
func (n *Node) Status() Status {
	var st Status
	n.do(func() {
		st = Status{NodeID: n.id, Term: n.currentTerm, Role: n.role, LeaderHint: n.leaderID}
	})
	return st
}

func sortedPeerIDs(peers map[string]Peer) []string {
	ids := make([]string, 0, len(peers))
	for id := range peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

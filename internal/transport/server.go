package transport

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/raftsql/raftsql/internal/log"
	"github.com/raftsql/raftsql/internal/raft"
)

var tlog = log.With("transport")

// nodeServer adapts *raft.Node (whose handlers are synchronous and
// context-free, since they resolve entirely within the driver's own
// actions inbox) to the raftServer interface RegisterRaftServer expects.
type nodeServer struct {
	node *raft.Node
}

func (s *nodeServer) RequestVote(ctx context.Context, args *raft.RequestVoteArgs) (*raft.RequestVoteReply, error) {
	return s.node.HandleRequestVote(args), nil
}

func (s *nodeServer) AppendEntries(ctx context.Context, args *raft.AppendEntriesArgs) (*raft.AppendEntriesReply, error) {
	return s.node.HandleAppendEntries(args), nil
}

// StartRaftServer starts a gRPC server exposing n's RequestVote/AppendEntries
// RPCs over lis, grounded on the teacher's raftserver.StartRaftServer.
func StartRaftServer(lis net.Listener, n *raft.Node) *grpc.Server {
	s := grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	RegisterRaftServer(s, &nodeServer{node: n})
	go func() {
		if err := s.Serve(lis); err != nil {
			tlog.Error().Err(err).Msg("raft gRPC server stopped")
		}
	}()
	return s
}

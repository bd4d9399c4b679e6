package transport

import (
	"context"

	"google.golang.org/grpc"

	"github.com/raftsql/raftsql/internal/raft"
)

// serviceName is the gRPC service path; normally protoc-gen-go-grpc emits
// this constant alongside the generated stubs, which we hand-write instead
// (see codec.go).
const serviceName = "raftsql.Raft"

// raftServer is the server-side interface RegisterRaftServer expects.
type raftServer interface {
	RequestVote(ctx context.Context, args *raft.RequestVoteArgs) (*raft.RequestVoteReply, error)
	AppendEntries(ctx context.Context, args *raft.AppendEntriesArgs) (*raft.AppendEntriesReply, error)
}

func requestVoteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(raft.RequestVoteArgs)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(raftServer).RequestVote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/RequestVote"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(raftServer).RequestVote(ctx, req.(*raft.RequestVoteArgs))
	}
	return interceptor(ctx, in, info, handler)
}

func appendEntriesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(raft.AppendEntriesArgs)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(raftServer).AppendEntries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/AppendEntries"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(raftServer).AppendEntries(ctx, req.(*raft.AppendEntriesArgs))
	}
	return interceptor(ctx, in, info, handler)
}

// raftServiceDesc plays the role of a protoc-generated _ServiceDesc.
var raftServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*raftServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RequestVote", Handler: requestVoteHandler},
		{MethodName: "AppendEntries", Handler: appendEntriesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/transport/service.go",
}

// RegisterRaftServer registers srv's RequestVote/AppendEntries methods on s.
func RegisterRaftServer(s grpc.ServiceRegistrar, srv raftServer) {
	s.RegisterService(&raftServiceDesc, srv)
}

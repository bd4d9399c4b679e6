package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/raftsql/raftsql/internal/raft"
)

// peerClient is the raft.Peer implementation used for every peer this node
// talks to. One is dialed per configured peer address at startup.
type peerClient struct {
	addr string
	conn *grpc.ClientConn
}

// Dial opens a gRPC connection to a peer at addr and returns it as a
// raft.Peer. Cluster membership in spec.md §6 is static and trusted, so
// plaintext transport credentials are sufficient (mirrors the teacher's own
// insecure.NewCredentials() usage).
func Dial(addr string) (raft.Peer, error) {
	conn, err := grpc.DialContext(context.Background(), addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &peerClient{addr: addr, conn: conn}, nil
}

func (c *peerClient) RequestVote(ctx context.Context, args *raft.RequestVoteArgs) (*raft.RequestVoteReply, error) {
	reply := new(raft.RequestVoteReply)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/RequestVote", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *peerClient) AppendEntries(ctx context.Context, args *raft.AppendEntriesArgs) (*raft.AppendEntriesReply, error) {
	reply := new(raft.AppendEntriesReply)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/AppendEntries", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Close closes the underlying connection.
func (c *peerClient) Close() error { return c.conn.Close() }

// Command raftsqld is the thin runnable entry point named as a collaborator
// in spec.md §1: it loads configuration, wires up the log store, Raft node,
// peer transport and client API, and serves. No consensus or SQL logic
// lives here.
package main

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raftsql/raftsql/internal/clientapi"
	"github.com/raftsql/raftsql/internal/config"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/log"
	"github.com/raftsql/raftsql/internal/raft"
	"github.com/raftsql/raftsql/internal/raftlog"
	"github.com/raftsql/raftsql/internal/statemachine"
	"github.com/raftsql/raftsql/internal/transport"
)

var mlog = log.With("main")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		mlog.Fatal().Err(err).Msg("raftsqld exited")
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Defaults()
	var peerFlags []string

	root := &cobra.Command{
		Use:   "raftsqld",
		Short: "raftsqld runs one node of a raftsql cluster",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "start this node and serve client and peer RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Peers = parsePeers(peerFlags)
			return runServe(cfg)
		},
	}

	flags := serve.Flags()
	flags.StringVar(&cfg.ID, "id", cfg.ID, "this node's id")
	flags.StringArrayVar(&peerFlags, "peer", nil, "peer as id=address, repeatable")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for file-backed storage")
	flags.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address for peer RPC")
	flags.StringVar(&cfg.ClientAddr, "client-addr", cfg.ClientAddr, "address for the client HTTP API")
	flags.IntVar(&cfg.HeartbeatMs, "heartbeat-ms", cfg.HeartbeatMs, "leader heartbeat interval")
	flags.IntVar(&cfg.ElectionTimeoutMsMin, "election-timeout-ms-min", cfg.ElectionTimeoutMsMin, "minimum election timeout")
	flags.IntVar(&cfg.ElectionTimeoutMsMax, "election-timeout-ms-max", cfg.ElectionTimeoutMsMax, "maximum election timeout")
	flags.StringVar((*string)(&cfg.Storage), "storage", string(cfg.Storage), "memory or file")

	root.AddCommand(serve)
	return root
}

func parsePeers(flags []string) map[string]string {
	peers := map[string]string{}
	for _, f := range flags {
		id, addr, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		peers[id] = addr
	}
	return peers
}

func runServe(cfg config.Config) error {
	logStore, err := openLogStore(cfg)
	if err != nil {
		return err
	}

	kv := kvstore.New()
	engine := statemachine.NewEngine(kv)

	peers := map[string]raft.Peer{}
	for id, addr := range cfg.Peers {
		peer, err := transport.Dial(addr)
		if err != nil {
			return err
		}
		peers[id] = peer
	}

	raftCfg := raft.Config{
		ID:                   cfg.ID,
		Peers:                peers,
		ElectionTimeoutMin:   cfg.ElectionTimeoutMin(),
		ElectionTimeoutMax:   cfg.ElectionTimeoutMax(),
		HeartbeatInterval:    cfg.Heartbeat(),
	}
	node := raft.New(raftCfg, logStore, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	node.Start(ctx)
	defer node.Close()

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	grpcServer := transport.StartRaftServer(lis, node)
	defer grpcServer.GracefulStop()

	server := clientapi.New(node, kv)
	mlog.Info().Str("id", cfg.ID).Str("clientAddr", cfg.ClientAddr).Str("listenAddr", cfg.ListenAddr).Msg("raftsqld serving")

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- serveHTTP(cfg.ClientAddr, server)
	}()

	select {
	case err := <-httpErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

func openLogStore(cfg config.Config) (raftlog.Store, error) {
	if cfg.Storage == config.StorageFile {
		return raftlog.OpenFileStore(cfg.DataDir)
	}
	return raftlog.NewMemStore(), nil
}

func serveHTTP(addr string, server *clientapi.Server) error {
	return http.ListenAndServe(addr, server.Router())
}

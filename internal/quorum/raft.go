package quorum

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"

	"github.com/hashicorp/raft"
)

// raftLeaderElection carries no replicated state. Raft is used purely
// to agree on which instance runs the singleton background jobs, so
// the FSM and the stores are in memory and empty.
type raftLeaderElection struct {
	raftConfig config.RaftConfig
	callback   LeaderChangeCallback
	raft       *raft.Raft
	isLeader   atomic.Bool
}

func newRaftLeaderElection(raftConfig config.RaftConfig, callback LeaderChangeCallback) LeaderElection {
	return &raftLeaderElection{
		raftConfig: raftConfig,
		callback:   callback,
	}
}

func (r *raftLeaderElection) Start(ctx context.Context) error {
	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(r.raftConfig.Id)

	bindAddr := fmt.Sprintf("%s:%d", r.raftConfig.Host, r.raftConfig.Port)
	advertise, err := net.ResolveTCPAddr("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("resolving raft bind address: %w", err)
	}

	transport, err := raft.NewTCPTransport(bindAddr, advertise, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating raft transport: %w", err)
	}

	store := raft.NewInmemStore()
	r.raft, err = raft.NewRaft(cfg, &emptyFSM{}, store, store, raft.NewInmemSnapshotStore(), transport)
	if err != nil {
		return fmt.Errorf("creating raft node: %w", err)
	}

	// only the initiator bootstraps, the other nodes join its cluster
	if r.raftConfig.Id == r.raftConfig.InitiatorId {
		servers := make([]raft.Server, len(r.raftConfig.Nodes))
		for i, node := range r.raftConfig.Nodes {
			servers[i] = raft.Server{
				ID:      raft.ServerID(node.Id),
				Address: raft.ServerAddress(node.Address),
			}
		}

		future := r.raft.BootstrapCluster(raft.Configuration{Servers: servers})
		if err := future.Error(); err != nil {
			return fmt.Errorf("bootstrapping raft cluster: %w", err)
		}

		logging.Logger.Infof("bootstrapped raft cluster with %d nodes", len(servers))
	}

	go r.observeLeadership(ctx)
	return nil
}

func (r *raftLeaderElection) observeLeadership(ctx context.Context) {
	observationCh := make(chan raft.Observation, 1)
	observer := raft.NewObserver(observationCh, false, func(o *raft.Observation) bool {
		_, ok := o.Data.(raft.LeaderObservation)
		return ok
	})
	r.raft.RegisterObserver(observer)
	defer r.raft.DeregisterObserver(observer)

	for {
		select {
		case <-ctx.Done():
			return
		case <-observationCh:
			isLeader := r.raft.State() == raft.Leader
			if r.isLeader.Swap(isLeader) != isLeader {
				logging.Logger.Infof("leadership changed, leader=%v", isLeader)
				go r.callback(isLeader)
			}
		}
	}
}

func (r *raftLeaderElection) Stop() error {
	if r.raft == nil {
		return nil
	}
	return r.raft.Shutdown().Error()
}

func (r *raftLeaderElection) IsLeader() bool {
	return r.isLeader.Load()
}

type emptyFSM struct{}

func (f *emptyFSM) Apply(*raft.Log) any                 { return nil }
func (f *emptyFSM) Snapshot() (raft.FSMSnapshot, error) { return &emptySnapshot{}, nil }
func (f *emptyFSM) Restore(io.ReadCloser) error         { return nil }

type emptySnapshot struct{}

func (s *emptySnapshot) Persist(sink raft.SnapshotSink) error {
	return sink.Close()
}

func (s *emptySnapshot) Release() {}

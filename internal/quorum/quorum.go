package quorum

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"
)

// LeaderChangeCallback fires on every leadership transition. Background
// jobs that must run on exactly one instance start and stop from here.
type LeaderChangeCallback func(isLeader bool)

type LeaderElection interface {
	Start(ctx context.Context) error
	Stop() error
	IsLeader() bool
}

// NewLeaderElection builds the election backend for the configured mode.
// Single instance deployments use the none mode, which elects the local
// process unconditionally.
func NewLeaderElection(leaderElectionConfig config.LeaderElectionConfig, callback LeaderChangeCallback) LeaderElection {
	switch leaderElectionConfig.Mode {
	case config.LeaderElectionModeNone:
		return newStaticLeaderElection(callback)

	case config.LeaderElectionModeRaft:
		return newRaftLeaderElection(leaderElectionConfig.Raft, callback)

	default:
		panic(fmt.Sprintf("leader election mode %s not supported", leaderElectionConfig.Mode))
	}
}

package cluster

import (
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/config"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/pkg/errors"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	maxPool          = 3
	transportTimeout = 10 * time.Second
	snapshotRetain   = 2
)

// NewRaft starts the raft node for one ledger replica. With an empty data
// directory every raft store lives in memory.
func NewRaft(cfg config.Ledger, fsm raft.FSM, log hclog.Logger) (*raft.Raft, error) {
	conf := raft.DefaultConfig()
	conf.LocalID = raft.ServerID(cfg.NodeID)
	conf.Logger = log.Named("raft")
	conf.SnapshotThreshold = 1024

	var (
		logs   raft.LogStore
		stable raft.StableStore
		snaps  raft.SnapshotStore
	)
	if cfg.DataDir == "" {
		store := raft.NewInmemStore()
		logs, stable, snaps = store, store, raft.NewInmemSnapshotStore()
	} else {
		dir := filepath.Join(cfg.DataDir, "raft")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
		bolt, err := raftboltdb.NewBoltStore(filepath.Join(dir, "raft.db"))
		if err != nil {
			return nil, errors.Wrap(err, "open bolt store")
		}
		logs, stable = bolt, bolt
		snaps, err = raft.NewFileSnapshotStoreWithLogger(dir, snapshotRetain, log.Named("snapshot"))
		if err != nil {
			return nil, errors.Wrap(err, "open snapshot store")
		}
	}

	addr, err := net.ResolveTCPAddr("tcp", cfg.RaftAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve raft address %s", cfg.RaftAddr)
	}
	transport, err := raft.NewTCPTransportWithLogger(cfg.RaftAddr, addr, maxPool, transportTimeout, log.Named("transport"))
	if err != nil {
		return nil, errors.Wrap(err, "open raft transport")
	}

	r, err := raft.NewRaft(conf, fsm, logs, stable, snaps, transport)
	if err != nil {
		return nil, errors.Wrap(err, "start raft")
	}

	if cfg.Bootstrap {
		future := r.BootstrapCluster(raft.Configuration{
			Servers: []raft.Server{{
				ID:      conf.LocalID,
				Address: transport.LocalAddr(),
			}},
		})
		if err := future.Error(); err != nil && err != raft.ErrCantBootstrap {
			return nil, errors.Wrap(err, "bootstrap cluster")
		}
	}
	return r, nil
}

// WaitForLeader blocks until the cluster has elected a leader.
func WaitForLeader(ctx context.Context, r *raft.Raft) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if addr, _ := r.LeaderWithID(); addr != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for raft leader")
		case <-ticker.C:
		}
	}
}

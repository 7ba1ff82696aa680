package repo

import (
	"encoding/json"
	"github.com/hashicorp/raft"
	"github.com/pkg/errors"
	"time"
)

// Consensus is the part of *raft.Raft the ledger writes through.
type Consensus interface {
	State() raft.RaftState
	LeaderWithID() (raft.ServerAddress, raft.ServerID)
	Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture
}

// Propose replicates one command and returns the error produced by the
// state machine, if any.
func Propose(c Consensus, op, key string, value interface{}, timeout time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encode command value")
	}
	cmd, err := json.Marshal(CommandPayload{Operation: op, Key: key, Value: raw})
	if err != nil {
		return errors.Wrap(err, "encode command")
	}

	future := c.Apply(cmd, timeout)
	if err := future.Error(); err != nil {
		return errors.Wrap(err, "persist in raft cluster")
	}

	resp, ok := future.Response().(*ApplyResponse)
	if !ok {
		return errors.Errorf("unexpected apply response %T", future.Response())
	}
	return resp.Error
}

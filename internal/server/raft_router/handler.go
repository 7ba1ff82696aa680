package raft_router

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/pkg/errors"
)

type Handler struct {
	raft *raft.Raft
	log  hclog.Logger
}

func New(r *raft.Raft, log hclog.Logger) *Handler {
	return &Handler{raft: r, log: log}
}

// leaderConfiguration fails unless this node leads and can read the
// current membership.
func (h *Handler) leaderConfiguration() (raft.Configuration, error) {
	if h.raft.State() != raft.Leader {
		return raft.Configuration{}, errors.New("not the leader")
	}
	future := h.raft.GetConfiguration()
	if err := future.Error(); err != nil {
		return raft.Configuration{}, errors.Wrap(err, "failed to get raft configuration")
	}
	return future.Configuration(), nil
}

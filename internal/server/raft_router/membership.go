package raft_router

import (
	"fmt"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/apierr"
	"github.com/go-chi/render"
	"github.com/hashicorp/raft"
	"github.com/pkg/errors"
	"net/http"
)

type requestJoin struct {
	NodeID      string `json:"node_id"`
	RaftAddress string `json:"raft_address"`
}

func (j *requestJoin) Bind(r *http.Request) error {
	if j.NodeID == "" || j.RaftAddress == "" {
		return errors.New("node_id and raft_address are required")
	}
	return nil
}

type requestRemove struct {
	NodeID string `json:"node_id"`
}

func (j *requestRemove) Bind(r *http.Request) error {
	if j.NodeID == "" {
		return errors.New("node_id is required")
	}
	return nil
}

type responseMembership struct {
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func (j *responseMembership) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// JoinRaft adds a ledger replica as a voter. Joining twice with the same
// id and address is accepted.
func (h *Handler) JoinRaft(w http.ResponseWriter, r *http.Request) {
	data := &requestJoin{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	conf, err := h.leaderConfiguration()
	if err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	id, addr := raft.ServerID(data.NodeID), raft.ServerAddress(data.RaftAddress)
	for _, srv := range conf.Servers {
		if srv.ID == id && srv.Address == addr {
			h.log.Info("node already member", "node", id, "addr", addr)
			render.Render(w, r, &responseMembership{
				Message: fmt.Sprintf("node %s at %s already joined", id, addr),
				Data:    h.raft.Stats(),
			})
			return
		}
	}

	if err := h.raft.AddVoter(id, addr, 0, 0).Error(); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(errors.Wrap(err, "error add voter")))
		return
	}

	h.log.Info("node joined", "node", id, "addr", addr)
	render.Status(r, http.StatusOK)
	render.Render(w, r, &responseMembership{
		Message: fmt.Sprintf("node %s at %s joined successfully", id, addr),
		Data:    h.raft.Stats(),
	})
}

func (h *Handler) RemoveRaft(w http.ResponseWriter, r *http.Request) {
	data := &requestRemove{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	if _, err := h.leaderConfiguration(); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	if err := h.raft.RemoveServer(raft.ServerID(data.NodeID), 0, 0).Error(); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(errors.Wrapf(err, "error removing existing node %s", data.NodeID)))
		return
	}

	h.log.Info("node removed", "node", data.NodeID)
	render.Status(r, http.StatusOK)
	render.Render(w, r, &responseMembership{
		Message: fmt.Sprintf("node %s removed successfully", data.NodeID),
		Data:    h.raft.Stats(),
	})
}

// StatsRaft is also the liveness probe the dashboard gateway uses.
func (h *Handler) StatsRaft(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.raft.Stats())
}

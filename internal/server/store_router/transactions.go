package store_router

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/apierr"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/hashicorp/raft"
	"net/http"
)

// Feed serves the newest transactions of one account, most recent first.
// Any replica can answer it.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	acct, err := account(r)
	if err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	recs, err := h.ledger.Recent(acct, FeedLimit)
	if err != nil {
		h.log.Error("reading feed", "error", err)
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}

	feed := &repo.Feed{Items: make([]repo.Transaction, 0, len(recs))}
	for _, rec := range recs {
		feed.Items = append(feed.Items, rec.Transaction())
	}
	render.Render(w, r, feed)
}

// Record appends a transaction through raft; only the leader accepts it.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	data := &repo.RecordRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	if h.raft.State() != raft.Leader {
		leader, _ := h.raft.LeaderWithID()
		render.Render(w, r, apierr.ErrNotLeader(string(leader)))
		return
	}

	rec := repo.Record{
		ID:        uuid.New().String(),
		Account:   data.Account,
		Type:      data.Type,
		Merchant:  data.Merchant,
		Amount:    data.Amount,
		Status:    data.Status,
		CreatedAt: h.now().UTC(),
	}
	if err := repo.Propose(h.raft, repo.OpAppend, "", rec, applyTimeout); err != nil {
		h.log.Error("recording transaction", "id", rec.ID, "error", err)
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}

	h.log.Info("recorded transaction", "id", rec.ID, "account", rec.Account, "merchant", rec.Merchant, "amount", rec.Amount)
	render.Status(r, http.StatusCreated)
	render.Render(w, r, &repo.RecordResponse{ID: rec.ID, Addr: h.addr})
}

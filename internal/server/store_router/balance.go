package store_router

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/apierr"
	"github.com/go-chi/render"
	"net/http"
)

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	acct, err := account(r)
	if err != nil {
		render.Render(w, r, apierr.ErrInvalidRequest(err))
		return
	}

	recs, err := h.ledger.Recent(acct, repo.BalanceWindow)
	if err != nil {
		h.log.Error("reading balance window", "error", err)
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}
	render.Render(w, r, &repo.BalanceResponse{Balance: repo.Balance(recs).StringFixed(2)})
}

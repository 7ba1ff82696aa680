package store_router

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/hashicorp/go-hclog"
	"time"
)

const (
	// FeedLimit is how many records GET /api/transactions returns.
	FeedLimit    = 12
	applyTimeout = 5 * time.Second
)

type Reader interface {
	Recent(account string, limit int) ([]repo.Record, error)
}

type Handler struct {
	raft   repo.Consensus
	ledger Reader
	addr   string
	now    func() time.Time
	log    hclog.Logger
}

func New(raft repo.Consensus, ledger Reader, addr string, log hclog.Logger) *Handler {
	return &Handler{
		raft:   raft,
		ledger: ledger,
		addr:   addr,
		now:    time.Now,
		log:    log,
	}
}

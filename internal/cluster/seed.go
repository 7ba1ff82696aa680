package cluster

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"math/rand"
	"time"
)

const (
	SeedCount    = 12
	seedWorkers  = 4
	applyTimeout = 5 * time.Second
)

// Emptier reports whether an account holds no records yet.
type Emptier interface {
	Empty(account string) (bool, error)
}

// Seed fills an empty account with demo records. It must run on the leader.
// An account that already has records is left alone.
func Seed(c repo.Consensus, ledger Emptier, account string, now time.Time, log hclog.Logger) error {
	empty, err := ledger.Empty(account)
	if err != nil {
		return errors.Wrap(err, "check ledger")
	}
	if !empty {
		log.Debug("account already seeded", "account", account)
		return nil
	}

	recs := repo.DemoRecords(account, SeedCount, now, rand.New(rand.NewSource(now.UnixNano())))

	p := pool.New().WithErrors().WithMaxGoroutines(seedWorkers)
	for _, rec := range recs {
		rec := rec
		p.Go(func() error {
			return errors.Wrapf(repo.Propose(c, repo.OpAppend, "", rec, applyTimeout), "seed %s", rec.ID)
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	log.Info("seeded account", "account", account, "records", len(recs))
	return nil
}

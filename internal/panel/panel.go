package panel

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/feed"
	"net/http"
	"sync"
)

// Snapshot is a consistent copy of the panel content.
type Snapshot struct {
	State    string     `json:"state"`
	Skeleton int        `json:"skeleton,omitempty"`
	Hint     string     `json:"hint,omitempty"`
	Rows     []feed.Row `json:"rows"`
	Message  string     `json:"message,omitempty"`
	Version  uint64     `json:"version"`
}

func (s *Snapshot) Render(w http.ResponseWriter, r *http.Request) error {
	if s.Rows == nil {
		s.Rows = []feed.Row{}
	}
	return nil
}

// Panel is the transaction table shown by the dashboard. It starts in the
// loading state and every Show* call replaces its whole content.
type Panel struct {
	mu   sync.RWMutex
	snap Snapshot
}

func New() *Panel {
	return &Panel{snap: Snapshot{State: feed.StateLoading.String(), Skeleton: feed.SkeletonRows}}
}

func (p *Panel) ShowSkeleton(rows int) {
	p.replace(Snapshot{State: feed.StateLoading.String(), Skeleton: rows})
}

func (p *Panel) ShowRows(hint string, rows []feed.Row) {
	p.replace(Snapshot{State: feed.StateRendered.String(), Hint: hint, Rows: append([]feed.Row(nil), rows...)})
}

func (p *Panel) ShowError(message string) {
	p.replace(Snapshot{State: feed.StateErrored.String(), Message: message})
}

func (p *Panel) replace(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.Version = p.snap.Version + 1
	p.snap = s
}

func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.snap
	s.Rows = append([]feed.Row(nil), p.snap.Rows...)
	return s
}

package feed

import (
	"context"
	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"sync"
	"time"
)

const (
	SkeletonRows   = 3
	ErrorMessage   = "Unable to load transactions."
	DefaultTimeout = 5 * time.Second

	syncHintLayout = "15:04"
)

type State int

const (
	StateLoading State = iota
	StateRendered
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Table is the panel body. Each call replaces whatever it showed before.
type Table interface {
	ShowSkeleton(rows int)
	ShowRows(hint string, rows []Row)
	ShowError(message string)
}

type Sparkline interface {
	Draw(values []float64)
}

type Option func(*Loader)

func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func WithLogger(log hclog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// Loader synchronizes the transaction panel with the feed. Every Load
// starts from the skeleton; only the most recently started Load may
// paint its outcome.
type Loader struct {
	fetcher Fetcher
	table   Table
	spark   Sparkline
	timeout time.Duration
	now     func() time.Time
	log     hclog.Logger

	mu     sync.Mutex
	latest uint64
}

func NewLoader(fetcher Fetcher, table Table, spark Sparkline, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		table:   table,
		spark:   spark,
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load performs one fetch and renders the result. Failures end in the
// error row and are never returned.
func (l *Loader) Load(ctx context.Context) {
	defer metrics.MeasureSince([]string{"feed", "load"}, time.Now())

	l.mu.Lock()
	l.latest++
	token := l.latest
	l.table.ShowSkeleton(SkeletonRows)
	l.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	items, err := l.fetcher.Fetch(fetchCtx)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if token != l.latest {
		metrics.IncrCounter([]string{"feed", "load", "stale"}, 1)
		l.log.Debug("discarding stale feed result", "token", token, "latest", l.latest)
		return
	}

	if err != nil {
		metrics.IncrCounter([]string{"feed", "load", "error"}, 1)
		l.log.Warn("feed load failed", "token", token, "error", err)
		l.table.ShowError(ErrorMessage)
		return
	}

	hint := "Last sync: " + l.now().Format(syncHintLayout)
	if series := Series(items); len(series) > 0 {
		l.spark.Draw(series)
	}
	l.table.ShowRows(hint, BuildRows(items))

	metrics.IncrCounter([]string{"feed", "load", "ok"}, 1)
	l.log.Debug("feed rendered", "token", token, "items", len(items))
}

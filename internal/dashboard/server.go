package dashboard

import (
	"bytes"
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/config"
	"github.com/KushnerykPavel/ledger-dashboard/internal/feed"
	"github.com/KushnerykPavel/ledger-dashboard/internal/panel"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/apierr"
	"github.com/KushnerykPavel/ledger-dashboard/internal/sparkline"
	"github.com/armon/go-metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/conc"
	"net/http"
	"time"
)

const (
	pageTitle      = "Ledger dashboard"
	balanceTimeout = 2 * time.Second
)

type refreshResponse struct {
	Status string `json:"status"`
}

func (r *refreshResponse) Render(w http.ResponseWriter, req *http.Request) error {
	return nil
}

// Server is the dashboard: the transaction panel, its sparkline and the
// gateway to the ledger replicas.
type Server struct {
	listenAddress string
	router        *chi.Mux
	http          *http.Server
	log           hclog.Logger

	account    string
	cardMasked string

	gateway *Gateway
	panel   *panel.Panel
	canvas  *sparkline.Canvas
	loader  *feed.Loader
	inm     *metrics.InmemSink

	ctx    context.Context
	cancel context.CancelFunc
	loads  conc.WaitGroup
}

func New(cfg config.Dashboard, inm *metrics.InmemSink, log hclog.Logger) *Server {
	client := &http.Client{}
	s := &Server{
		listenAddress: cfg.ListenAddr,
		log:           log,
		account:       cfg.Account,
		cardMasked:    panel.MaskCard(cfg.CardLast4),
		gateway:       NewGateway(cfg.Backends, client, log.Named("gateway")),
		panel:         panel.New(),
		canvas:        sparkline.NewCanvas(cfg.SurfaceWidth, cfg.SurfaceHeight, cfg.PixelRatio),
		inm:           inm,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.loader = feed.NewLoader(
		feed.NewHTTPFetcher(feed.AccountURL(cfg.FeedURL, cfg.Account), client),
		s.panel,
		sparkline.New(s.canvas),
		feed.WithTimeout(cfg.FeedTimeout),
		feed.WithLogger(log.Named("loader")),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/", s.index)
	router.Get("/sparkline.png", s.sparkline)
	router.Get("/panel", s.snapshot)
	router.Post("/refresh", s.refresh)
	router.Get("/metrics", s.metrics)
	router.Get("/api/transactions", s.gateway.availableProxy)
	router.Post("/api/transactions", s.gateway.leaderProxy)
	router.Get("/api/balance", s.gateway.availableProxy)

	s.router = router
	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: cfg.FeedTimeout + 3*time.Second,
		Handler:      router,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Gateway() *Gateway {
	return s.gateway
}

// Refresh starts a Load in the background. A newer Refresh supersedes
// any still in flight.
func (s *Server) Refresh() {
	s.loads.Go(func() {
		s.loader.Load(s.ctx)
	})
}

// Start performs the initial load and serves until Shutdown.
func (s *Server) Start() error {
	s.Refresh()
	s.log.Info("dashboard listening", "addr", s.listenAddress)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener, cancels in-flight loads and waits for them.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.cancel()
	s.loads.Wait()
	return err
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), balanceTimeout)
	defer cancel()

	balance, err := s.gateway.Balance(ctx, s.account)
	if err != nil {
		s.log.Debug("balance unavailable", "error", err)
	}

	var buf bytes.Buffer
	err = panel.WriteHTML(&buf, panel.Page{
		Title:        pageTitle,
		Account:      s.account,
		CardMasked:   s.cardMasked,
		Balance:      balance,
		SparklineURL: "/sparkline.png",
		Panel:        s.panel.Snapshot(),
	})
	if err != nil {
		s.log.Error("rendering page", "error", err)
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) sparkline(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.canvas.EncodePNG(&buf); err != nil {
		s.log.Error("encoding sparkline", "error", err)
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.panel.Snapshot()
	render.Render(w, r, &snap)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.Refresh()
	render.Status(r, http.StatusAccepted)
	render.Render(w, r, &refreshResponse{Status: "refreshing"})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	if s.inm == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	data, err := s.inm.DisplayMetrics(w, r)
	if err != nil {
		render.Render(w, r, apierr.ErrInternal(err))
		return
	}
	render.JSON(w, r, data)
}

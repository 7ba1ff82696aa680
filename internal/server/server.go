package server

import (
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/raft_router"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server/store_router"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"net/http"
	_ "net/http/pprof"
	"time"
)

type Srv struct {
	listenAddress string
	router        *chi.Mux
	http          *http.Server
	log           hclog.Logger
}

// Start blocks until the server stops; a clean Shutdown returns nil.
func (s *Srv) Start() error {
	s.log.Info("ledger http listening", "addr", s.listenAddress)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Srv) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Srv) Handler() http.Handler {
	return s.router
}

func New(listenAddr string, ledger *repo.Ledger, r *raft.Raft, log hclog.Logger) *Srv {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Mount("/debug/pprof", http.DefaultServeMux)

	raftRouter := raft_router.New(r, log.Named("raft_router"))
	router.Get("/raft/stats", raftRouter.StatsRaft)
	router.Post("/raft/join", raftRouter.JoinRaft)
	router.Post("/raft/remove", raftRouter.RemoveRaft)

	storeRouter := store_router.New(r, ledger, listenAddr, log.Named("store_router"))
	store_router.Routes(router, storeRouter)

	return &Srv{
		listenAddress: listenAddr,
		router:        router,
		log:           log,
		http: &http.Server{
			Addr:         listenAddr,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			Handler:      router,
		},
	}
}

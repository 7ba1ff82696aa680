package main

import (
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/cluster"
	"github.com/KushnerykPavel/ledger-dashboard/internal/config"
	"github.com/KushnerykPavel/ledger-dashboard/internal/logging"
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/KushnerykPavel/ledger-dashboard/internal/server"
	"github.com/armon/go-metrics"
	"github.com/joho/godotenv"
	"github.com/sourcegraph/conc"
	"github.com/spf13/pflag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("ledger", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a config file")
	flags.String("log_level", "info", "log level")
	flags.String("ledger.http_addr", ":2221", "HTTP listen address")
	flags.String("ledger.node_id", "node1", "raft node id")
	flags.String("ledger.raft_addr", "localhost:1111", "raft bind address")
	flags.String("ledger.data_dir", "data/node1", "badger and raft data directory, empty keeps everything in memory")
	flags.Bool("ledger.bootstrap", false, "bootstrap a new cluster with this node")
	flags.Bool("ledger.seed", true, "seed demo transactions into empty accounts")
	flags.StringSlice("ledger.accounts", []string{"demo"}, "accounts to seed")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		logging.New("ledger", "error").Error("loading config", "error", err)
		os.Exit(1)
	}
	log := logging.New("ledger", cfg.LogLevel).With("node", cfg.Ledger.NodeID)

	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metricsConf := metrics.DefaultConfig("ledger")
	metricsConf.EnableHostname = false
	if _, err := metrics.NewGlobal(metricsConf, inm); err != nil {
		log.Warn("metrics disabled", "error", err)
	}

	db, err := repo.OpenBadger(badgerDir(cfg.Ledger.DataDir), log)
	if err != nil {
		log.Error("opening store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger := repo.NewLedger(db, log.Named("fsm"))
	r, err := cluster.NewRaft(cfg.Ledger, ledger, log)
	if err != nil {
		log.Error("starting raft", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Ledger.HTTPAddr, ledger, r, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := srv.Start(); err != nil {
			log.Error("http server stopped", "error", err)
			stop()
		}
	})
	if cfg.Ledger.Seed && cfg.Ledger.Bootstrap {
		wg.Go(func() {
			seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := cluster.WaitForLeader(seedCtx, r); err != nil {
				log.Warn("skipping seed", "error", err)
				return
			}
			for _, account := range cfg.Ledger.Accounts {
				if err := cluster.Seed(r, ledger, account, time.Now(), log.Named("seed")); err != nil {
					log.Warn("seeding ledger", "account", account, "error", err)
				}
			}
		})
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	if err := r.Shutdown().Error(); err != nil {
		log.Warn("raft shutdown", "error", err)
	}
	wg.Wait()
}

func badgerDir(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "badger")
}

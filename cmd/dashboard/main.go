package main

import (
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/config"
	"github.com/KushnerykPavel/ledger-dashboard/internal/dashboard"
	"github.com/KushnerykPavel/ledger-dashboard/internal/logging"
	"github.com/armon/go-metrics"
	"github.com/joho/godotenv"
	"github.com/sourcegraph/conc"
	"github.com/spf13/pflag"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("dashboard", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a config file")
	flags.String("log_level", "info", "log level")
	flags.String("dashboard.listen_addr", ":8080", "HTTP listen address")
	flags.String("dashboard.feed_url", "http://localhost:2221/api/transactions", "transaction feed URL")
	flags.Duration("dashboard.feed_timeout", 5*time.Second, "feed request timeout")
	flags.StringSlice("dashboard.backends", []string{"http://localhost:2221", "http://localhost:2222", "http://localhost:2223"}, "ledger replicas")
	flags.StringSlice("dashboard.join", nil, "node_id=raft_addr replicas to add to the cluster on startup")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		logging.New("dashboard", "error").Error("loading config", "error", err)
		os.Exit(1)
	}
	log := logging.New("dashboard", cfg.LogLevel)

	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metricsConf := metrics.DefaultConfig("dashboard")
	metricsConf.EnableHostname = false
	if _, err := metrics.NewGlobal(metricsConf, inm); err != nil {
		log.Warn("metrics disabled", "error", err)
	}

	srv := dashboard.New(cfg.Dashboard, inm, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	if len(cfg.Dashboard.Join) > 0 {
		wg.Go(func() {
			joinCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := srv.Gateway().Join(joinCtx, cfg.Dashboard.Join); err != nil {
				log.Warn("joining replicas", "error", err)
			}
		})
	}
	wg.Go(func() {
		if err := srv.Start(); err != nil {
			log.Error("http server stopped", "error", err)
			stop()
		}
	})

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	wg.Wait()
}

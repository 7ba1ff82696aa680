package main

import (
	"context"
	"github.com/KushnerykPavel/ledger-dashboard/internal/config"
	"github.com/KushnerykPavel/ledger-dashboard/internal/feed"
	"github.com/KushnerykPavel/ledger-dashboard/internal/logging"
	"github.com/KushnerykPavel/ledger-dashboard/internal/panel"
	"github.com/KushnerykPavel/ledger-dashboard/internal/sparkline"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"os"
	"os/signal"
)

// outcome remembers whether the last render was the error row.
type outcome struct {
	*panel.Terminal
	failed bool
}

func (o *outcome) ShowRows(hint string, rows []feed.Row) {
	o.failed = false
	o.Terminal.ShowRows(hint, rows)
}

func (o *outcome) ShowError(message string) {
	o.failed = true
	o.Terminal.ShowError(message)
}

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("feedctl", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a config file")
	url := flags.String("url", "", "transaction feed URL, defaults to dashboard.feed_url")
	account := flags.String("account", "", "account to show, defaults to dashboard.account")
	out := flags.StringP("out", "o", "", "write the sparkline PNG to this file")
	noColor := flags.Bool("no-color", false, "disable coloured status")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, nil)
	if err != nil {
		logging.New("feedctl", "error").Error("loading config", "error", err)
		os.Exit(1)
	}
	log := logging.New("feedctl", cfg.LogLevel)
	if *noColor {
		color.NoColor = true
	}

	feedURL := cfg.Dashboard.FeedURL
	if *url != "" {
		feedURL = *url
	}
	if *account != "" {
		feedURL = feed.AccountURL(feedURL, *account)
	} else if *url == "" {
		feedURL = feed.AccountURL(feedURL, cfg.Dashboard.Account)
	}

	canvas := sparkline.NewCanvas(cfg.Dashboard.SurfaceWidth, cfg.Dashboard.SurfaceHeight, cfg.Dashboard.PixelRatio)
	table := &outcome{Terminal: panel.NewTerminal(os.Stdout)}
	loader := feed.NewLoader(
		feed.NewHTTPFetcher(feedURL, nil),
		table,
		sparkline.New(canvas),
		feed.WithTimeout(cfg.Dashboard.FeedTimeout),
		feed.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	loader.Load(ctx)

	if table.failed {
		os.Exit(1)
	}
	if *out == "" {
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Error("creating sparkline file", "path", *out, "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := canvas.EncodePNG(f); err != nil {
		log.Error("writing sparkline", "path", *out, "error", err)
		os.Exit(1)
	}
	log.Info("sparkline written", "path", *out)
}

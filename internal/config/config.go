package config

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"strings"
	"time"
)

const envPrefix = "LEDGERDASH"

type Config struct {
	LogLevel  string    `mapstructure:"log_level"`
	Ledger    Ledger    `mapstructure:"ledger"`
	Dashboard Dashboard `mapstructure:"dashboard"`
}

// Ledger configures one replica of the transaction ledger.
type Ledger struct {
	HTTPAddr  string   `mapstructure:"http_addr"`
	NodeID    string   `mapstructure:"node_id"`
	RaftAddr  string   `mapstructure:"raft_addr"`
	DataDir   string   `mapstructure:"data_dir"`
	Bootstrap bool     `mapstructure:"bootstrap"`
	Seed      bool     `mapstructure:"seed"`
	Accounts  []string `mapstructure:"accounts"`
}

// Dashboard configures the feed panel and the gateway in front of the ledgers.
type Dashboard struct {
	ListenAddr    string        `mapstructure:"listen_addr"`
	FeedURL       string        `mapstructure:"feed_url"`
	FeedTimeout   time.Duration `mapstructure:"feed_timeout"`
	Backends      []string      `mapstructure:"backends"`
	Join          []string      `mapstructure:"join"`
	Account       string        `mapstructure:"account"`
	CardLast4     string        `mapstructure:"card_last4"`
	SurfaceWidth  int           `mapstructure:"surface_width"`
	SurfaceHeight int           `mapstructure:"surface_height"`
	PixelRatio    float64       `mapstructure:"pixel_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("ledger.http_addr", ":2221")
	v.SetDefault("ledger.node_id", "node1")
	v.SetDefault("ledger.raft_addr", "localhost:1111")
	v.SetDefault("ledger.data_dir", "data/node1")
	v.SetDefault("ledger.bootstrap", false)
	v.SetDefault("ledger.seed", true)
	v.SetDefault("ledger.accounts", []string{"demo"})

	v.SetDefault("dashboard.listen_addr", ":8080")
	v.SetDefault("dashboard.feed_url", "http://localhost:2221/api/transactions")
	v.SetDefault("dashboard.feed_timeout", 5*time.Second)
	v.SetDefault("dashboard.backends", []string{"http://localhost:2221", "http://localhost:2222", "http://localhost:2223"})
	v.SetDefault("dashboard.join", []string{})
	v.SetDefault("dashboard.account", "demo")
	v.SetDefault("dashboard.card_last4", "4821")
	v.SetDefault("dashboard.surface_width", 320)
	v.SetDefault("dashboard.surface_height", 80)
	v.SetDefault("dashboard.pixel_ratio", 2.0)
}

// Load resolves configuration from defaults, an optional file, LEDGERDASH_*
// environment variables and bound flags, in increasing precedence.
// Flags are bound by name, so a flag called "dashboard.feed_url" overrides
// that key.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for _, account := range append([]string{c.Dashboard.Account}, c.Ledger.Accounts...) {
		if err := repo.ValidateAccount(account); err != nil {
			return err
		}
	}
	if len(c.Dashboard.CardLast4) != 4 {
		return errors.Errorf("dashboard.card_last4 must be 4 characters, got %q", c.Dashboard.CardLast4)
	}
	if c.Dashboard.FeedTimeout <= 0 {
		return errors.Errorf("dashboard.feed_timeout must be positive, got %s", c.Dashboard.FeedTimeout)
	}
	if c.Dashboard.SurfaceWidth <= 0 || c.Dashboard.SurfaceHeight <= 0 {
		return errors.Errorf("dashboard surface must be positive, got %dx%d", c.Dashboard.SurfaceWidth, c.Dashboard.SurfaceHeight)
	}
	for _, j := range c.Dashboard.Join {
		if id, addr, ok := strings.Cut(j, "="); !ok || id == "" || addr == "" {
			return errors.Errorf("dashboard.join entries look like node_id=raft_addr, got %q", j)
		}
	}
	if c.Dashboard.PixelRatio <= 0 {
		return errors.Errorf("dashboard.pixel_ratio must be positive, got %v", c.Dashboard.PixelRatio)
	}
	return nil
}

package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"maker_go/internal/domain"
)

// Reference price strategy names accepted in configuration.
const (
	RefPriceIndex = "index"
	RefPriceMid   = "mid"
)

// TradingParams are the quoting knobs for one contract.
type TradingParams struct {
	OffsetPct           decimal.Decimal `yaml:"offset_pct"`
	MinSpread           decimal.Decimal `yaml:"min_spread"`
	StackPct            decimal.Decimal `yaml:"stack_pct"`
	NumLevels           int             `yaml:"n_levels"`
	StartOrderSize      int64           `yaml:"start_order_size"`
	OrderStepSize       int64           `yaml:"order_step_size"`
	IsRandomOrderSize   bool            `yaml:"is_random_order_size"`
	MinOrderSize        int64           `yaml:"min_order_size"`
	MaxOrderSize        int64           `yaml:"max_order_size"`
	MaxLongPosBtc       decimal.Decimal `yaml:"max_long_pos_btc"`
	MaxShortPosBtc      decimal.Decimal `yaml:"max_short_pos_btc"`
	CheckPositionLimits bool            `yaml:"check_position_limits"`
	RelistTolerance     decimal.Decimal `yaml:"relist_tolerance"`
	ReferencePriceType  string          `yaml:"reference_price_type"`
}

// Config holds the whole application configuration. Credentials can be
// overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Venue struct {
		Name          string `yaml:"name"`
		WSURL         string `yaml:"ws_url"`
		APIKey        string `yaml:"api_key"`
		APISecret     string `yaml:"api_secret"`
		APIPassphrase string `yaml:"api_passphrase"`
	} `yaml:"venue"`

	Symbol      string `yaml:"symbol"`
	IndexSymbol string `yaml:"index_symbol"`

	Trading TradingParams `yaml:"trading_params"`

	EnableDryRun    bool `yaml:"enable_dry_run"`
	QuoteIntervalMS int  `yaml:"quote_interval_ms"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity. Misconfiguration fails here,
// before any connection is made.
func (c *Config) Validate() error {
	if c.Venue.WSURL == "" || (!strings.HasPrefix(c.Venue.WSURL, "ws://") && !strings.HasPrefix(c.Venue.WSURL, "wss://")) {
		return fmt.Errorf("invalid venue WS URL: %s", c.Venue.WSURL)
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.IndexSymbol == "" {
		return fmt.Errorf("index_symbol is required")
	}
	if c.QuoteIntervalMS <= 0 {
		return fmt.Errorf("quote interval must be positive")
	}

	t := &c.Trading
	switch t.ReferencePriceType {
	case RefPriceIndex, RefPriceMid:
	default:
		return fmt.Errorf("unknown reference_price_type: %q", t.ReferencePriceType)
	}
	if t.NumLevels <= 0 {
		return fmt.Errorf("n_levels must be positive")
	}
	if t.OffsetPct.IsNegative() {
		return fmt.Errorf("offset_pct must not be negative")
	}
	if t.MinSpread.IsNegative() {
		return fmt.Errorf("min_spread must not be negative")
	}
	if t.RelistTolerance.IsNegative() {
		return fmt.Errorf("relist_tolerance must not be negative")
	}
	if t.IsRandomOrderSize && t.MinOrderSize > t.MaxOrderSize {
		return fmt.Errorf("min_order_size %d exceeds max_order_size %d", t.MinOrderSize, t.MaxOrderSize)
	}
	if t.MaxLongPosBtc.IsNegative() || t.MaxShortPosBtc.IsNegative() {
		return fmt.Errorf("position limits must not be negative")
	}
	return nil
}

// overrideWithEnv replaces credentials when environment variables exist.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("MAKER_API_KEY"); key != "" {
		cfg.Venue.APIKey = key
	}
	if secret := os.Getenv("MAKER_API_SECRET"); secret != "" {
		cfg.Venue.APISecret = secret
	}
	if pass := os.Getenv("MAKER_API_PASSPHRASE"); pass != "" {
		cfg.Venue.APIPassphrase = pass
	}
}

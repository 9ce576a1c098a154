package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/0xmhha/txmonkey/internal/balance"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
)

// EnvPrefix prefixes every environment override, e.g. TXMONKEY_URL
const EnvPrefix = "TXMONKEY"

// DotEnvFile is read from the working directory when present
const DotEnvFile = ".env"

// Log formats
const (
	LogFormatTerminal = "terminal"
	LogFormatJSON     = "json"
)

// Defaults reproduce the parameters the harness has always used
const (
	DefaultURL         = "http://localhost:8545"
	DefaultFixture     = "accounts.json"
	DefaultAccounts    = 10
	DefaultGasPrice    = "0x1"
	DefaultValue       = "0x1"
	DefaultFundValue   = "0x2000000000000000"
	DefaultTokenAmount = "6000"
	DefaultMinBalance  = "1"
	DefaultIterations  = 10
	DefaultMetricsPort = 9090
)

// Config holds all configuration for a txmonkey invocation
type Config struct {
	// RPC connection
	URL string `mapstructure:"url"`

	// Account configuration. Mnemonic wins over PrivateKey, which wins over Fixture.
	Fixture    string `mapstructure:"fixture"`
	PrivateKey string `mapstructure:"private-key"`
	Mnemonic   string `mapstructure:"mnemonic"`
	Accounts   uint64 `mapstructure:"accounts"`

	// Chain configuration. A zero ChainID is detected from the node.
	ChainID        uint64 `mapstructure:"chain-id"`
	GasLimit       uint64 `mapstructure:"gas-limit"`
	DeployGasLimit uint64 `mapstructure:"deploy-gas-limit"`
	GasPrice       string `mapstructure:"gas-price"`

	// Scenario parameters
	Value       string `mapstructure:"value"`
	FundValue   string `mapstructure:"fund-value"`
	TokenAmount string `mapstructure:"token-amount"`
	MinBalance  string `mapstructure:"min-balance"`
	Iterations  uint64 `mapstructure:"iterations"`

	// Output
	Verbose   bool   `mapstructure:"verbose"`
	LogFormat string `mapstructure:"log-format"`
	Progress  bool   `mapstructure:"progress"`

	// Advanced
	RateLimit uint64 `mapstructure:"rate-limit"`

	// Prometheus metrics
	MetricsEnabled bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`
}

// Amounts are the parsed numeric settings, in base units except MinBalance
// which is converted from display units.
type Amounts struct {
	GasPrice    *big.Int
	Value       *big.Int
	FundValue   *big.Int
	TokenAmount *big.Int
	MinBalance  *big.Int
}

var (
	httpRegex   = regexp.MustCompile(`^https?://`)
	wsRegex     = regexp.MustCompile(`^wss?://`)
	hexKeyRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// RegisterFlags adds every configuration flag with its default to flags
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "optional config file (json, yaml or toml)")
	flags.String("url", DefaultURL, "node JSON-RPC endpoint")
	flags.String("fixture", DefaultFixture, "account and contract fixture file")
	flags.String("private-key", "", "master key to derive the account pool from (0x-prefixed)")
	flags.String("mnemonic", "", "mnemonic to derive the account pool from")
	flags.Uint64("accounts", DefaultAccounts, "pool size when deriving from a key or mnemonic")
	flags.Uint64("chain-id", 0, "chain ID used for signing (0 detects it from the node)")
	flags.Uint64("gas-limit", txbuilder.DefaultGasLimit, "gas limit of value transfers")
	flags.Uint64("deploy-gas-limit", txbuilder.DefaultDeployGasLimit, "gas limit of deploy and token transfer transactions")
	flags.String("gas-price", DefaultGasPrice, "fixed gas price in wei")
	flags.String("value", DefaultValue, "value of each random transfer in wei")
	flags.String("fund-value", DefaultFundValue, "value sent to each account by fill in wei")
	flags.String("token-amount", DefaultTokenAmount, "tokens sent to each account by deploy")
	flags.String("min-balance", DefaultMinBalance, "minimum funding balance in ether before random starts")
	flags.Uint64P("iterations", "n", DefaultIterations, "number of random transfers")
	flags.Bool("verbose", false, "enable debug logging")
	flags.String("log-format", LogFormatTerminal, "log format: terminal or json")
	flags.Bool("progress", false, "show a progress bar")
	flags.Uint64("rate-limit", 0, "maximum sends per second (0 = unlimited)")
	flags.Bool("metrics", false, "enable the Prometheus endpoint")
	flags.Int("metrics-port", DefaultMetricsPort, "Prometheus metrics port")
}

// Load resolves the configuration from flags, TXMONKEY_* environment
// variables, the optional --config file and a .env file, in that order.
// Unset flags fall back to their defaults last.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := loadDotEnv(v, DotEnvFile); err != nil {
		return nil, err
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv registers the TXMONKEY_* entries of a .env file as viper defaults,
// so they rank below the real environment and the config file.
func loadDotEnv(v *viper.Viper, path string) error {
	entries, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	prefix := EnvPrefix + "_"
	for name, value := range entries {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, prefix), "_", "-"))
		v.SetDefault(key, value)
	}
	return nil
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate URL
	if c.URL == "" {
		return errors.New("url is required")
	}
	if !httpRegex.MatchString(c.URL) && !wsRegex.MatchString(c.URL) {
		return errors.New("url must be a valid HTTP or WebSocket URL")
	}

	// Validate account source
	if c.PrivateKey != "" && !hexKeyRegex.MatchString(c.PrivateKey) {
		return errors.New("private-key must be a valid 64-character hex string with 0x prefix")
	}
	if c.Mnemonic == "" && c.PrivateKey == "" && c.Fixture == "" {
		return errors.New("one of fixture, private-key or mnemonic is required")
	}
	if c.UsesDerivedPool() && c.Accounts == 0 {
		c.Accounts = DefaultAccounts
	}

	// Fill in defaults
	if c.GasLimit == 0 {
		c.GasLimit = txbuilder.DefaultGasLimit
	}
	if c.DeployGasLimit == 0 {
		c.DeployGasLimit = txbuilder.DefaultDeployGasLimit
	}
	if c.GasPrice == "" {
		c.GasPrice = DefaultGasPrice
	}
	if c.Value == "" {
		c.Value = DefaultValue
	}
	if c.FundValue == "" {
		c.FundValue = DefaultFundValue
	}
	if c.TokenAmount == "" {
		c.TokenAmount = DefaultTokenAmount
	}
	if c.MinBalance == "" {
		c.MinBalance = DefaultMinBalance
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}

	// Amounts are only checked for syntax, not bounds
	if _, err := c.ParseAmounts(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "":
		c.LogFormat = LogFormatTerminal
	case LogFormatTerminal, LogFormatJSON:
	default:
		return errors.New("log-format must be terminal or json")
	}

	// Set default metrics port
	if c.MetricsEnabled && c.MetricsPort == 0 {
		c.MetricsPort = DefaultMetricsPort
	}

	return nil
}

// ParseAmounts parses the numeric string settings
func (c *Config) ParseAmounts() (*Amounts, error) {
	var (
		a   Amounts
		err error
	)
	if a.GasPrice, err = txbuilder.ParseAmount(c.GasPrice); err != nil {
		return nil, fmt.Errorf("gas-price: %w", err)
	}
	if a.Value, err = txbuilder.ParseAmount(c.Value); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if a.FundValue, err = txbuilder.ParseAmount(c.FundValue); err != nil {
		return nil, fmt.Errorf("fund-value: %w", err)
	}
	if a.TokenAmount, err = txbuilder.ParseAmount(c.TokenAmount); err != nil {
		return nil, fmt.Errorf("token-amount: %w", err)
	}
	if a.MinBalance, err = balance.ParseDisplayUnits(c.MinBalance); err != nil {
		return nil, fmt.Errorf("min-balance: %w", err)
	}
	return &a, nil
}

// UsesDerivedPool returns true if the pool is derived from a key or mnemonic
// instead of being read from the fixture.
func (c *Config) UsesDerivedPool() bool {
	return c.Mnemonic != "" || c.PrivateKey != ""
}

// ChainIDValue returns the configured chain ID, or nil when it must be detected
func (c *Config) ChainIDValue() *big.Int {
	if c.ChainID == 0 {
		return nil
	}
	return new(big.Int).SetUint64(c.ChainID)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const testKey = "0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid fixture config",
			config: &Config{URL: "http://localhost:8545", Fixture: "accounts.json"},
		},
		{
			name:   "valid config with private key",
			config: &Config{URL: "http://localhost:8545", PrivateKey: testKey},
		},
		{
			name:   "valid config with mnemonic",
			config: &Config{URL: "http://localhost:8545", Mnemonic: "test test test test test test test test test test test junk"},
		},
		{
			name:   "valid websocket url",
			config: &Config{URL: "ws://localhost:8546", Fixture: "accounts.json"},
		},
		{
			name:    "missing url",
			config:  &Config{Fixture: "accounts.json"},
			wantErr: true,
			errMsg:  "url is required",
		},
		{
			name:    "invalid url",
			config:  &Config{URL: "localhost:8545", Fixture: "accounts.json"},
			wantErr: true,
			errMsg:  "url must be a valid HTTP or WebSocket URL",
		},
		{
			name:    "no account source",
			config:  &Config{URL: "http://localhost:8545"},
			wantErr: true,
			errMsg:  "one of fixture, private-key or mnemonic is required",
		},
		{
			name:    "invalid private key",
			config:  &Config{URL: "http://localhost:8545", PrivateKey: "invalid-key"},
			wantErr: true,
			errMsg:  "private-key must be a valid 64-character hex string",
		},
		{
			name:    "invalid gas price",
			config:  &Config{URL: "http://localhost:8545", Fixture: "accounts.json", GasPrice: "0xzz"},
			wantErr: true,
			errMsg:  "gas-price",
		},
		{
			name:    "invalid fund value",
			config:  &Config{URL: "http://localhost:8545", Fixture: "accounts.json", FundValue: "lots"},
			wantErr: true,
			errMsg:  "fund-value",
		},
		{
			name:    "invalid min balance",
			config:  &Config{URL: "http://localhost:8545", Fixture: "accounts.json", MinBalance: "one"},
			wantErr: true,
			errMsg:  "min-balance",
		},
		{
			name:    "invalid log format",
			config:  &Config{URL: "http://localhost:8545", Fixture: "accounts.json", LogFormat: "xml"},
			wantErr: true,
			errMsg:  "log-format must be terminal or json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Config.Validate() error = %v, want error containing %v", err, tt.errMsg)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{URL: "http://localhost:8545", Fixture: "accounts.json", MetricsEnabled: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if cfg.GasLimit != 31500 {
		t.Errorf("GasLimit = %d, want 31500", cfg.GasLimit)
	}
	if cfg.DeployGasLimit != 4700000 {
		t.Errorf("DeployGasLimit = %d, want 4700000", cfg.DeployGasLimit)
	}
	if cfg.Iterations != DefaultIterations {
		t.Errorf("Iterations = %d, want %d", cfg.Iterations, DefaultIterations)
	}
	if cfg.LogFormat != LogFormatTerminal {
		t.Errorf("LogFormat = %s, want %s", cfg.LogFormat, LogFormatTerminal)
	}
	if cfg.MetricsPort != DefaultMetricsPort {
		t.Errorf("MetricsPort = %d, want %d", cfg.MetricsPort, DefaultMetricsPort)
	}
	if cfg.UsesDerivedPool() {
		t.Error("fixture config should not derive the pool")
	}
	if cfg.ChainIDValue() != nil {
		t.Error("zero chain id should be detected from the node")
	}

	amounts, err := cfg.ParseAmounts()
	if err != nil {
		t.Fatalf("ParseAmounts() failed: %v", err)
	}
	if amounts.FundValue.Text(16) != "2000000000000000" {
		t.Errorf("FundValue = %s, want 0x2000000000000000", amounts.FundValue.Text(16))
	}
	if amounts.MinBalance.String() != "1000000000000000000" {
		t.Errorf("MinBalance = %s, want 1 ether", amounts.MinBalance)
	}
	if amounts.TokenAmount.Int64() != 6000 {
		t.Errorf("TokenAmount = %s, want 6000", amounts.TokenAmount)
	}
}

func TestConfig_DerivedPoolDefaultsAccounts(t *testing.T) {
	cfg := &Config{URL: "http://localhost:8545", PrivateKey: testKey}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.Accounts != DefaultAccounts {
		t.Errorf("Accounts = %d, want %d", cfg.Accounts, DefaultAccounts)
	}
	if !cfg.UsesDerivedPool() {
		t.Error("private key config should derive the pool")
	}
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return flags
}

func TestLoad_FlagDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != DefaultURL {
		t.Errorf("URL = %s, want %s", cfg.URL, DefaultURL)
	}
	if cfg.Fixture != DefaultFixture {
		t.Errorf("Fixture = %s, want %s", cfg.Fixture, DefaultFixture)
	}
	if cfg.GasLimit != 31500 {
		t.Errorf("GasLimit = %d, want 31500", cfg.GasLimit)
	}
	if cfg.FundValue != DefaultFundValue {
		t.Errorf("FundValue = %s, want %s", cfg.FundValue, DefaultFundValue)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("TXMONKEY_GAS_LIMIT", "50000")
	t.Setenv("TXMONKEY_URL", "http://env:8545")

	cfg, err := Load(newFlags(t, "--url", "http://flag:8545", "-n", "25"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "http://flag:8545" {
		t.Errorf("URL = %s, flag should win over env", cfg.URL)
	}
	if cfg.GasLimit != 50000 {
		t.Errorf("GasLimit = %d, env should win over default", cfg.GasLimit)
	}
	if cfg.Iterations != 25 {
		t.Errorf("Iterations = %d, want 25", cfg.Iterations)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txmonkey.yaml")
	content := "url: http://file:8545\ngas-price: \"0x5\"\ntoken-amount: \"100\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("TXMONKEY_TOKEN_AMOUNT", "200")

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "http://file:8545" {
		t.Errorf("URL = %s, want the config file value", cfg.URL)
	}
	if cfg.GasPrice != "0x5" {
		t.Errorf("GasPrice = %s, want 0x5", cfg.GasPrice)
	}
	if cfg.TokenAmount != "200" {
		t.Errorf("TokenAmount = %s, env should win over the config file", cfg.TokenAmount)
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load(newFlags(t, "--url", "localhost")); err == nil {
		t.Error("expected invalid url error")
	}
	if _, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Error("expected missing config file error")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "txmonkey.yaml")
	if err := os.WriteFile(path, []byte("token-amount: \"100\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	dotenv := "TXMONKEY_TOKEN_AMOUNT=300\nTXMONKEY_VALUE=0x5\nTXMONKEY_ITERATIONS=7\nTXMONKEY_GAS_PRICE=0x9\nUNRELATED=1\n"
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("TXMONKEY_GAS_PRICE", "0x3")

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TokenAmount != "100" {
		t.Errorf("TokenAmount = %s, the config file should win over .env", cfg.TokenAmount)
	}
	if cfg.GasPrice != "0x3" {
		t.Errorf("GasPrice = %s, the environment should win over .env", cfg.GasPrice)
	}
	if cfg.Value != "0x5" {
		t.Errorf("Value = %s, .env should win over the flag default", cfg.Value)
	}
	if cfg.Iterations != 7 {
		t.Errorf("Iterations = %d, want 7 from .env", cfg.Iterations)
	}
	if _, ok := os.LookupEnv("TXMONKEY_VALUE"); ok {
		t.Error(".env entries must not leak into the process environment")
	}
}

func TestLoad_DotEnvFlagWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("TXMONKEY_URL=http://dotenv:8545\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "http://dotenv:8545" {
		t.Errorf("URL = %s, want the .env value", cfg.URL)
	}

	cfg, err = Load(newFlags(t, "--url", "http://flag:8545"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.URL != "http://flag:8545" {
		t.Errorf("URL = %s, flag should win over .env", cfg.URL)
	}
}

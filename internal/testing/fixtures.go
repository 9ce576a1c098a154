package testing

import (
	"testing"

	"github.com/0xmhha/txmonkey/internal/config"
	"github.com/0xmhha/txmonkey/internal/fixture"
	"github.com/0xmhha/txmonkey/internal/wallet"
)

// TestTokenBytecode is the token creation payload shipped in accounts.json
const TestTokenBytecode = "0x69d3c21bcecceda1000000335560548060186000396000f360003560e01c8063a9059cbb14601e57806370a0823114604257600080fd5b6024353354818110604f578190033355600435805482019055600160005260206000f35b6004355460005260206000f35b600080fd"

// TestConfig creates a valid test configuration
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		URL:     "http://localhost:8545",
		Fixture: "accounts.json",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config is invalid: %v", err)
	}
	return cfg
}

// TestFixture returns a fixture with DevKeys[0] as the funding account and
// the next n development keys as the pool
func TestFixture(t *testing.T, n int) *fixture.Fixture {
	t.Helper()
	if n < 1 || n >= len(DevKeys) {
		t.Fatalf("pool size must be between 1 and %d, got %d", len(DevKeys)-1, n)
	}

	f := &fixture.Fixture{
		From:          fixture.Entry{Key: DevKeys[0]},
		TokenContract: fixture.Contract{Data: TestTokenBytecode},
	}
	for _, key := range DevKeys[1 : n+1] {
		f.Accounts = append(f.Accounts, fixture.Entry{
			Address: AddressFromKey(MustParseKey(t, key)).Hex(),
			Key:     key,
		})
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("test fixture is invalid: %v", err)
	}
	return f
}

// TestPool builds the account pool of TestFixture
func TestPool(t *testing.T, n int) *wallet.Pool {
	t.Helper()
	pool, err := TestFixture(t, n).Pool()
	if err != nil {
		t.Fatalf("failed to build test pool: %v", err)
	}
	return pool
}

package testing

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/0xmhha/txmonkey/internal/client"
)

// ErrMockSend is the default failure injected through SendErrors
var ErrMockSend = errors.New("mock: transaction rejected")

// MockClient is an in-memory stand-in for the JSON-RPC client.
// Every call is appended to Calls in the order it was made, and every
// failure is wrapped in a *client.TransportError like the real client does.
type MockClient struct {
	mu sync.Mutex

	// Configurable return values
	ChainIDValue   *big.Int
	Nonces         map[common.Address]uint64
	Balances       map[common.Address]*big.Int
	DefaultBalance *big.Int
	CallResult     []byte
	Transactions   map[common.Hash]*types.Transaction

	// AutoNonce advances the sender's nonce after every accepted transaction,
	// mimicking an instant-mining development node.
	AutoNonce bool

	// Error responses
	ChainIDError error
	NonceError   error
	BalanceError error
	CallError    error

	// SendErrors fails the n-th eth_sendRawTransaction (zero-based)
	SendErrors map[int]error

	// Tracking
	Calls       []string
	SentRawTxs  [][]byte
	SentTxs     []*types.Transaction
	CallHistory []client.CallRequest
}

// NewMockClient creates a new mock client with default values
func NewMockClient() *MockClient {
	return &MockClient{
		ChainIDValue:   big.NewInt(1337),
		Nonces:         make(map[common.Address]uint64),
		Balances:       make(map[common.Address]*big.Int),
		DefaultBalance: Ether(100),
		Transactions:   make(map[common.Hash]*types.Transaction),
		SendErrors:     make(map[int]error),
		AutoNonce:      true,
	}
}

func (m *MockClient) record(method string) {
	m.Calls = append(m.Calls, method)
}

// CallLog returns a copy of the ordered call log
func (m *MockClient) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// CallCount returns the number of times a JSON-RPC method was called
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// Sent returns the decoded transactions submitted so far, failed ones included
func (m *MockClient) Sent() []*types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*types.Transaction(nil), m.SentTxs...)
}

// SetBalance sets the balance reported for an account
func (m *MockClient) SetBalance(account common.Address, balance *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Balances[account] = balance
}

// FailSend makes the n-th submission (zero-based) fail with ErrMockSend
func (m *MockClient) FailSend(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendErrors[n] = ErrMockSend
}

// ChainID returns the configured chain ID
func (m *MockClient) ChainID(_ context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(client.MethodChainID)
	if m.ChainIDError != nil {
		return nil, &client.TransportError{Method: client.MethodChainID, Err: m.ChainIDError}
	}
	return m.ChainIDValue, nil
}

// TransactionCount returns the configured nonce of an account
func (m *MockClient) TransactionCount(_ context.Context, account common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(client.MethodGetTransactionCount)
	if m.NonceError != nil {
		return 0, &client.TransportError{Method: client.MethodGetTransactionCount, Err: m.NonceError}
	}
	return m.Nonces[account], nil
}

// SendRawTransaction decodes and stores the raw transaction.
// The returned hash is keccak256 of the encoding, as a node would report.
func (m *MockClient) SendRawTransaction(_ context.Context, rawTx []byte) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := len(m.SentRawTxs)
	m.record(client.MethodSendRawTransaction)
	m.SentRawTxs = append(m.SentRawTxs, rawTx)

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return common.Hash{}, &client.TransportError{Method: client.MethodSendRawTransaction, Err: err}
	}
	m.SentTxs = append(m.SentTxs, tx)

	if err, ok := m.SendErrors[index]; ok {
		return common.Hash{}, &client.TransportError{Method: client.MethodSendRawTransaction, Err: err}
	}

	hash := crypto.Keccak256Hash(rawTx)
	m.Transactions[hash] = tx

	if m.AutoNonce {
		from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
		if err == nil {
			m.Nonces[from] = tx.Nonce() + 1
		}
	}
	return hash, nil
}

// BalanceAt returns the configured balance of an account
func (m *MockClient) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(client.MethodGetBalance)
	if m.BalanceError != nil {
		return nil, &client.TransportError{Method: client.MethodGetBalance, Err: m.BalanceError}
	}
	if b, ok := m.Balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int).Set(m.DefaultBalance), nil
}

// Call records the request and returns the configured result
func (m *MockClient) Call(_ context.Context, req client.CallRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(client.MethodCall)
	m.CallHistory = append(m.CallHistory, req)
	if m.CallError != nil {
		return nil, &client.TransportError{Method: client.MethodCall, Err: m.CallError}
	}
	return common.CopyBytes(m.CallResult), nil
}

// TransactionByHash returns a transaction accepted earlier or added with AddTransaction
func (m *MockClient) TransactionByHash(_ context.Context, hash common.Hash) (*client.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(client.MethodGetTransaction)
	tx, ok := m.Transactions[hash]
	if !ok {
		return nil, &client.TransportError{Method: client.MethodGetTransaction, Err: ethereum.NotFound}
	}
	return &client.TransactionRecord{Tx: tx, Pending: true}, nil
}

// AddTransaction stores a transaction for TransactionByHash lookups
func (m *MockClient) AddTransaction(tx *types.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions[tx.Hash()] = tx
}

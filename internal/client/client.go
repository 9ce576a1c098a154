package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC methods used by txmonkey
const (
	MethodChainID             = "eth_chainId"
	MethodGetTransactionCount = "eth_getTransactionCount"
	MethodSendRawTransaction  = "eth_sendRawTransaction"
	MethodCall                = "eth_call"
	MethodGetBalance          = "eth_getBalance"
	MethodGetTransaction      = "eth_getTransactionByHash"
)

// TransportError is returned when a JSON-RPC call fails
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportErr(method string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Method: method, Err: err}
}

// TransactionRecord is the typed result of eth_getTransactionByHash
type TransactionRecord struct {
	Tx      *types.Transaction
	Pending bool
}

// CallRequest is the argument of a read-only eth_call. It carries no nonce.
type CallRequest struct {
	From common.Address
	To   *common.Address
	Data []byte
}

// Client wraps the Ethereum client with typed results for every call txmonkey makes
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client
}

// New creates a new client instance
func New(url string) (*Client, error) {
	rpcClient, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	return &Client{
		eth: ethclient.NewClient(rpcClient),
		rpc: rpcClient,
	}, nil
}

// Close closes the client connection
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID returns the chain ID
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	return id, transportErr(MethodChainID, err)
}

// TransactionCount returns the account's transaction count under the "latest" view
func (c *Client) TransactionCount(ctx context.Context, account common.Address) (uint64, error) {
	var count hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &count, MethodGetTransactionCount, account, "latest"); err != nil {
		return 0, transportErr(MethodGetTransactionCount, err)
	}
	return uint64(count), nil
}

// SendRawTransaction sends a raw transaction via RPC and returns the node-reported hash
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (common.Hash, error) {
	var hash common.Hash
	err := c.rpc.CallContext(ctx, &hash, MethodSendRawTransaction, hexutil.Encode(rawTx))
	return hash, transportErr(MethodSendRawTransaction, err)
}

// BalanceAt returns the latest balance of an account in wei
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, account, nil)
	return balance, transportErr(MethodGetBalance, err)
}

// Call executes a read-only call against the latest state
func (c *Client) Call(ctx context.Context, req CallRequest) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: req.From,
		To:   req.To,
		Data: req.Data,
	}
	out, err := c.eth.CallContract(ctx, msg, nil)
	return out, transportErr(MethodCall, err)
}

// TransactionByHash looks up a transaction by its hash
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*TransactionRecord, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, transportErr(MethodGetTransaction, err)
	}
	return &TransactionRecord{Tx: tx, Pending: pending}, nil
}

// Package sender turns a transaction request into a submitted transaction.
//
// Send performs one strictly ordered round: resolve the nonce, derive the
// contract address for creations, sign, serialize and submit. Nothing is
// retried and no two requests share a round trip.
package sender

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/txmonkey/internal/nonce"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
	txtypes "github.com/0xmhha/txmonkey/pkg/types"
)

var (
	// ErrRequestReused is returned for a request that already carries a nonce
	ErrRequestReused = errors.New("request already submitted")
	// ErrKeyMismatch is returned when the signing key does not belong to the sender
	ErrKeyMismatch = errors.New("key does not match request sender")
)

// SubmissionError is returned when the node rejected or never received the transaction
type SubmissionError struct {
	From  common.Address
	Nonce uint64
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission from %s (nonce %d) failed: %v", e.From.Hex(), e.Nonce, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Client is the part of the RPC client the sender needs
type Client interface {
	nonce.TransactionCounter
	SendRawTransaction(ctx context.Context, rawTx []byte) (common.Hash, error)
}

// Observer receives round trip latencies
type Observer interface {
	ObserveNonceLatency(d time.Duration)
	ObserveSubmitLatency(d time.Duration)
}

// Option configures a Sender
type Option func(*Sender)

// WithObserver reports latencies to o
func WithObserver(o Observer) Option {
	return func(s *Sender) {
		s.observer = o
	}
}

// Sender signs and submits requests one at a time
type Sender struct {
	client   Client
	nonces   *nonce.Resolver
	builder  *txbuilder.Builder
	observer Observer
}

// New creates a sender
func New(client Client, builder *txbuilder.Builder, opts ...Option) *Sender {
	s := &Sender{
		client:  client,
		nonces:  nonce.NewResolver(client),
		builder: builder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send resolves the nonce of req.From, signs req with key and submits it.
// req.Nonce is set to the resolved nonce; the request must not be sent again.
func (s *Sender) Send(ctx context.Context, req *txtypes.TransactionRequest, key *ecdsa.PrivateKey) (*txtypes.SubmissionResult, error) {
	if req.Nonce != nil {
		return nil, ErrRequestReused
	}
	if txbuilder.AddressFromKey(key) != req.From {
		return nil, fmt.Errorf("%w: %s", ErrKeyMismatch, req.From.Hex())
	}

	start := time.Now()
	n, err := s.nonces.Resolve(ctx, req.From)
	s.observeNonce(time.Since(start))
	if err != nil {
		return nil, err
	}
	req.Nonce = &n

	result := &txtypes.SubmissionResult{Nonce: n}
	if req.IsCreation() {
		addr := txbuilder.ContractAddress(req.From, n)
		result.ContractAddress = &addr
	}

	_, rawTx, err := s.builder.Sign(s.builder.Build(req, n), key)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	hash, err := s.client.SendRawTransaction(ctx, rawTx)
	s.observeSubmit(time.Since(start))
	if err != nil {
		return nil, &SubmissionError{From: req.From, Nonce: n, Err: err}
	}

	result.TxHash = hash
	return result, nil
}

func (s *Sender) observeNonce(d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveNonceLatency(d)
	}
}

func (s *Sender) observeSubmit(d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveSubmitLatency(d)
	}
}

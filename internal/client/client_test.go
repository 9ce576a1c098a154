package client

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum"
)

func TestTransportError(t *testing.T) {
	err := transportErr(MethodSendRawTransaction, ethereum.NotFound)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.Method != MethodSendRawTransaction {
		t.Errorf("Method = %s, want %s", te.Method, MethodSendRawTransaction)
	}
	if !errors.Is(err, ethereum.NotFound) {
		t.Error("TransportError should unwrap to the underlying error")
	}
	if got, want := err.Error(), "eth_sendRawTransaction failed: not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransportError_Nil(t *testing.T) {
	if err := transportErr(MethodGetBalance, nil); err != nil {
		t.Errorf("transportErr(nil) = %v, want nil", err)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New("unsupported://localhost"); err == nil {
		t.Error("expected error for unsupported URL scheme")
	}
}

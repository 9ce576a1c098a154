package txbuilder

import (
	"bytes"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	testPrivateKey   = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testContractAddr = "0x1234567890123456789012345678901234567890"
)

func newTestKey() *ecdsa.PrivateKey {
	key, _ := crypto.HexToECDSA(testPrivateKey)
	return key
}

func TestAddressFromKey(t *testing.T) {
	key := newTestKey()
	addr := AddressFromKey(key)

	expected := crypto.PubkeyToAddress(key.PublicKey)
	if addr != expected {
		t.Errorf("AddressFromKey() = %s, want %s", addr.Hex(), expected.Hex())
	}
}

func TestBuilder_Build(t *testing.T) {
	to := common.HexToAddress(testContractAddr)
	from := AddressFromKey(newTestKey())

	tests := []struct {
		name      string
		to        *common.Address
		value     *big.Int
		data      []byte
		wantValue *big.Int
	}{
		{
			name:      "value transfer",
			to:        &to,
			value:     big.NewInt(1),
			wantValue: big.NewInt(1),
		},
		{
			name:      "contract creation",
			to:        nil,
			data:      common.FromHex("0x6080604052"),
			wantValue: big.NewInt(0),
		},
		{
			name:      "call with nil value",
			to:        &to,
			data:      ERC20TransferSelector,
			wantValue: big.NewInt(0),
		},
	}

	b := New(&BuilderConfig{ChainID: big.NewInt(1337)})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(from, tt.to, tt.value, DefaultGasLimit, DefaultGasPrice, tt.data)
			tx := b.Build(req, 7)

			if tx.Type() != types.LegacyTxType {
				t.Errorf("Type() = %d, want legacy", tx.Type())
			}
			if tx.Nonce() != 7 {
				t.Errorf("Nonce() = %d, want 7", tx.Nonce())
			}
			if tx.Gas() != DefaultGasLimit {
				t.Errorf("Gas() = %d, want %d", tx.Gas(), DefaultGasLimit)
			}
			if tx.GasPrice().Cmp(DefaultGasPrice) != 0 {
				t.Errorf("GasPrice() = %s, want %s", tx.GasPrice(), DefaultGasPrice)
			}
			if tx.Value().Cmp(tt.wantValue) != 0 {
				t.Errorf("Value() = %s, want %s", tx.Value(), tt.wantValue)
			}
			if (tx.To() == nil) != (tt.to == nil) {
				t.Errorf("To() = %v, want %v", tx.To(), tt.to)
			}
			if !bytes.Equal(tx.Data(), tt.data) {
				t.Errorf("Data() = %x, want %x", tx.Data(), tt.data)
			}
		})
	}
}

func TestNewRequest_Copies(t *testing.T) {
	to := common.HexToAddress(testContractAddr)
	value := big.NewInt(5)
	data := []byte{1, 2, 3}

	req := NewRequest(common.Address{}, &to, value, 21000, big.NewInt(1), data)

	to[0] = 0xff
	value.SetInt64(6)
	data[0] = 9

	if *req.To != common.HexToAddress(testContractAddr) {
		t.Error("request shares the recipient with the caller")
	}
	if req.Value.Int64() != 5 {
		t.Error("request shares the value with the caller")
	}
	if req.Data[0] != 1 {
		t.Error("request shares the data with the caller")
	}
	if req.Nonce != nil {
		t.Error("new request should have an unresolved nonce")
	}
	if req.IsCreation() {
		t.Error("request with recipient is not a creation")
	}
}

func TestBuilder_Sign(t *testing.T) {
	key := newTestKey()
	from := AddressFromKey(key)
	to := common.HexToAddress(testContractAddr)

	tests := []struct {
		name    string
		chainID *big.Int
	}{
		{name: "eip155", chainID: big.NewInt(1001)},
		{name: "homestead", chainID: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(&BuilderConfig{ChainID: tt.chainID})
			tx := b.Build(NewRequest(from, &to, big.NewInt(1), DefaultGasLimit, DefaultGasPrice, nil), 0)

			signedTx, rawTx, err := b.Sign(tx, key)
			if err != nil {
				t.Fatalf("Sign() failed: %v", err)
			}
			if len(rawTx) == 0 {
				t.Fatal("raw transaction is empty")
			}
			if signedTx.Hash() != crypto.Keccak256Hash(rawTx) {
				t.Error("legacy tx hash should be keccak of the raw encoding")
			}

			var signer types.Signer = types.HomesteadSigner{}
			if tt.chainID != nil {
				signer = types.LatestSignerForChainID(tt.chainID)
			}
			sender, err := types.Sender(signer, signedTx)
			if err != nil {
				t.Fatalf("Sender() failed: %v", err)
			}
			if sender != from {
				t.Errorf("Sender() = %s, want %s", sender.Hex(), from.Hex())
			}

			decoded := new(types.Transaction)
			if err := decoded.UnmarshalBinary(rawTx); err != nil {
				t.Fatalf("UnmarshalBinary() failed: %v", err)
			}
			if decoded.Hash() != signedTx.Hash() {
				t.Error("decoded transaction hash mismatch")
			}
		})
	}
}

func TestContractAddress_Deterministic(t *testing.T) {
	from := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	first := ContractAddress(from, 0)
	second := ContractAddress(from, 0)
	if first != second {
		t.Errorf("ContractAddress() not deterministic: %s vs %s", first.Hex(), second.Hex())
	}

	// First deployment of the well-known development account
	want := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	if first != want {
		t.Errorf("ContractAddress(from, 0) = %s, want %s", first.Hex(), want.Hex())
	}

	if ContractAddress(from, 1) == first {
		t.Error("different nonces should derive different addresses")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    *big.Int
		wantErr bool
	}{
		{in: "0x1", want: big.NewInt(1)},
		{in: "0x2000000000000000", want: new(big.Int).Lsh(big.NewInt(1), 61)},
		{in: "6000", want: big.NewInt(6000)},
		{in: "", wantErr: true},
		{in: "0xzz", wantErr: true},
		{in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.Cmp(tt.want) != 0 {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

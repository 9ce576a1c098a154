package txbuilder

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ERC20 function selectors
var (
	// transfer(address,uint256) = 0xa9059cbb
	ERC20TransferSelector = common.FromHex("0xa9059cbb")
	// balanceOf(address) = 0x70a08231
	ERC20BalanceOfSelector = common.FromHex("0x70a08231")
)

// Method is a parsed "name(inputs):(outputs)" signature
type Method struct {
	Name    string
	Inputs  abi.Arguments
	Outputs abi.Arguments
}

// Sig returns the canonical signature used for the selector
func (m *Method) Sig() string {
	types := make([]string, len(m.Inputs))
	for i, input := range m.Inputs {
		types[i] = input.Type.String()
	}
	return fmt.Sprintf("%s(%s)", m.Name, strings.Join(types, ","))
}

// Selector returns the 4-byte function selector
func (m *Method) Selector() []byte {
	return crypto.Keccak256([]byte(m.Sig()))[:4]
}

// Pack encodes a call of the method with the given arguments
func (m *Method) Pack(args ...interface{}) ([]byte, error) {
	packed, err := m.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s arguments: %w", m.Name, err)
	}
	return append(m.Selector(), packed...), nil
}

// Unpack decodes the return data of the method
func (m *Method) Unpack(data []byte) ([]interface{}, error) {
	out, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", m.Name, err)
	}
	return out, nil
}

// ParseMethod parses a signature such as "transfer(address,uint256):(bool)".
// Tuple types are not supported.
func ParseMethod(signature string) (*Method, error) {
	signature = strings.ReplaceAll(signature, " ", "")

	head, outputs, _ := strings.Cut(signature, ":")
	open := strings.IndexByte(head, '(')
	if open <= 0 || !strings.HasSuffix(head, ")") {
		return nil, fmt.Errorf("malformed method signature %q", signature)
	}

	inputArgs, err := parseArguments(head[open+1 : len(head)-1])
	if err != nil {
		return nil, fmt.Errorf("malformed method signature %q: %w", signature, err)
	}

	var outputArgs abi.Arguments
	if outputs != "" {
		if !strings.HasPrefix(outputs, "(") || !strings.HasSuffix(outputs, ")") {
			return nil, fmt.Errorf("malformed outputs in %q", signature)
		}
		outputArgs, err = parseArguments(outputs[1 : len(outputs)-1])
		if err != nil {
			return nil, fmt.Errorf("malformed method signature %q: %w", signature, err)
		}
	}

	return &Method{
		Name:    head[:open],
		Inputs:  inputArgs,
		Outputs: outputArgs,
	}, nil
}

// EncodeCall builds call data from a method signature and its arguments
func EncodeCall(signature string, args ...interface{}) ([]byte, error) {
	method, err := ParseMethod(signature)
	if err != nil {
		return nil, err
	}
	return method.Pack(args...)
}

func parseArguments(list string) (abi.Arguments, error) {
	if list == "" {
		return abi.Arguments{}, nil
	}
	if strings.ContainsAny(list, "()") {
		return nil, fmt.Errorf("tuple types are not supported")
	}

	parts := strings.Split(list, ",")
	args := make(abi.Arguments, len(parts))
	for i, part := range parts {
		typ, err := abi.NewType(part, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid type %q: %w", part, err)
		}
		args[i] = abi.Argument{Type: typ}
	}
	return args, nil
}

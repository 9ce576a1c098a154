package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// ParseAmount parses a base-unit amount given as hex ("0x2000") or decimal ("8192")
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

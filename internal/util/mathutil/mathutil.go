// Package mathutil holds checked integer conversions for configuration values.
package mathutil

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type
var ErrOverflow = errors.New("value exceeds target type capacity")

// Uint64ToInt converts a count parsed as uint64, such as the iteration
// count, to an int loop bound. It fails instead of wrapping on 32-bit or
// oversized input.
func Uint64ToInt(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, fmt.Errorf("value %d overflows int: %w", v, ErrOverflow)
	}
	return int(v), nil
}

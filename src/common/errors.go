package common

import (
	"errors"
	"fmt"
	"strings"

	"tixgate/src/types"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidState     = errors.New("invalid state for this operation")
	ErrMissingReference = errors.New("missing transaction reference")
)

// InventoryExhaustedError reports the seats still available at the moment a
// reservation was refused, so callers can render an exact "N seats left"
// message.
type InventoryExhaustedError struct {
	SessionID uint
	SeatsLeft types.CategoryQuantities
}

func (e *InventoryExhaustedError) Error() string {
	parts := make([]string, 0, 3)
	for _, cat := range types.Categories() {
		parts = append(parts, fmt.Sprintf("%s: %d seats left", cat, e.SeatsLeft.Of(cat)))
	}
	return fmt.Sprintf("session [%d] cannot satisfy the request (%s)", e.SessionID, strings.Join(parts, ", "))
}

func IsInventoryExhausted(err error) bool {
	var target *InventoryExhaustedError
	return errors.As(err, &target)
}

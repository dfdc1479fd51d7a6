package repo

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is returned when the backing database cannot serve a call.
var ErrStoreUnavailable = errors.New("message store unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"travel_booking/internal/models"
)

// ErrNotFound is re-exported so callers can keep switching on the
// repository package the way handlers already do.
var ErrNotFound = models.ErrNotFound

// storageErr classifies a driver error: a blown deadline is a Timeout,
// anything else means the store itself is unavailable. Row misses never
// come through here.
func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, models.ErrTimeout)
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrStorageUnavailable, err)
}

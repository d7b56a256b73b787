package models

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrUnsupportedBookingType = errors.New("unsupported booking type")
	ErrInvalidState           = errors.New("invalid transaction state")
	ErrAmountExceeded         = errors.New("refund amount exceeds original")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrGatewayUnavailable     = errors.New("gateway unavailable")
	ErrTimeout                = errors.New("operation timed out")
)

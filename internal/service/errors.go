package service

import "errors"

// Common service errors
var (
	// ErrSnapshotCorrupted is returned when a stored snapshot is missing or does not match its checksum
	ErrSnapshotCorrupted = errors.New("snapshot content is missing or corrupted")

	// ErrInvalidCurrency is returned when the configured currency is not an ISO 4217 code
	ErrInvalidCurrency = errors.New("invalid currency")
)

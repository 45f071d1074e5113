package domain

import "errors"

var (
	// ErrProductNotFound is returned when a barcode has no usable entry in
	// the external catalog. Transport failures are degraded to this error
	// too, so callers branch on a single outcome.
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrListUnavailable is returned when the external list service cannot
	// be reached or answers with an error status.
	ErrListUnavailable = errors.New("list service unavailable")

	// ErrListNotFound is returned when the configured target list never
	// appears among the available lists.
	ErrListNotFound = errors.New("target list not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when a barcode has no cached record
	ErrCacheMiss = errors.New("cache miss")
)

// Package domain defines domain-level errors for the dividends feature.
package domain

import "errors"

var (
	// ErrMalformedDocument indicates that a source document lacks a required
	// field or carries a value that cannot be parsed.
	ErrMalformedDocument = errors.New("malformed dividend document")

	// ErrUnknownTicker is returned when the requested ticker is not in the dataset.
	ErrUnknownTicker = errors.New("unknown ticker")

	// ErrInvalidRange is returned when the start of a date range is after its end.
	ErrInvalidRange = errors.New("start date is after end date")
)

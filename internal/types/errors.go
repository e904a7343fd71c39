package types

import "errors"

var (
	// ErrInvalidMetric marks a negative engagement counter.
	ErrInvalidMetric = errors.New("invalid metric")
	// ErrTooShort marks a video below the minimum duration. It is an expected
	// outcome, not a failure.
	ErrTooShort = errors.New("video too short")
	// ErrNotFound marks a fetch that produced no usable file.
	ErrNotFound = errors.New("media not found")
	// ErrCodecFailure wraps read/write/transform failures in the media codec.
	ErrCodecFailure = errors.New("codec failure")
	// ErrHeuristicFailure wraps OCR or decode failures in the watermark check.
	// It is only ever logged.
	ErrHeuristicFailure = errors.New("heuristic failure")
)

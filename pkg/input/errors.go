package input

import "errors"

var (
	// ErrMalformedTime is returned for time fields which are neither empty,
	// a decimal value, MM:SS(.ss) nor one of DNF, DNS, DSQ.
	ErrMalformedTime   = errors.New("malformed time value")
	ErrMalformedHeader = errors.New("malformed header")
	ErrMalformedRow    = errors.New("malformed racer row")
)

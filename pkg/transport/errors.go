package transport

import "errors"

var (
	// ErrCircuitOpen is the cause of requests rejected by an open circuit breaker.
	ErrCircuitOpen = errors.New("magpie api circuit breaker is open")
)

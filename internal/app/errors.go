package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service not started")
)

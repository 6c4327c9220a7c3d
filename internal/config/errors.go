package config

import "errors"

var (
	// ErrInvalidConfig marks values that fail decoding or validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config source that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)

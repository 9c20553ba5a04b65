package config

import "errors"

// ErrInvalidConfig wraps validation failures; ErrLoadConfig wraps file and
// env loading failures.
var (
	ErrInvalidConfig = errors.New("invalid keyrace config")
	ErrLoadConfig    = errors.New("cannot load keyrace config")
)

package store

import "errors"

var (
	ErrCorruptCollection  = errors.New("stored collection is not valid JSON")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

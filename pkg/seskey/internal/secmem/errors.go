package secmem

import "errors"

// ErrInvalidSize is returned when a negative buffer size is requested.
var ErrInvalidSize = errors.New("invalid buffer size")

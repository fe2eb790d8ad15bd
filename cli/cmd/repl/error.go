package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrNoTerminal   = errors.New("repl requires an interactive terminal")
	ErrNoFile       = errors.New("document was read from stdin; nothing to write")
	ErrUsage        = errors.New("usage")
)

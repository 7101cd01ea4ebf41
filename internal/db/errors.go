package db

import "errors"

// ErrIndexExists is returned by CreateIndex when the index is already defined.
var ErrIndexExists = errors.New("db: index already exists")

// Op constants map to Redis command names for error context.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
)

// Error wraps a failed store command. Target is the index or key the command addressed.
type Error struct {
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Target + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

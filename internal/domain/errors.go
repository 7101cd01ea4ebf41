package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode signals settings that could not be decrypted or parsed.
	ErrDecode = errors.New("could not decode settings")
	// ErrValidation signals well-formed settings with missing or invalid required fields.
	ErrValidation = errors.New("invalid settings")
	// ErrBackend signals a search engine failure (unreachable, errored or timed out).
	ErrBackend = errors.New("search backend error")
	// ErrLinkBuild signals that a deep link could not be generated.
	ErrLinkBuild = errors.New("link build error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// SearchError carries the diagnostic context of a failed search stage.
// The context is for server-side logs only and must never reach the client.
type SearchError struct {
	Stage      string
	Core       string
	StoragePID int
	Term       string
	Page       int
	Mode       string
	Err        error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s (core=%s pid=%d term=%q page=%d mode=%s): %v",
		e.Stage, e.Core, e.StoragePID, e.Term, e.Page, e.Mode, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("source document unavailable")
	ErrExtractionEmpty   = errors.New("no rows extracted")
	ErrConfiguration     = errors.New("invalid configuration")
	ErrRateNotFound      = errors.New("rate not found")
	ErrSinkUnwritable    = errors.New("sink unwritable")
)

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

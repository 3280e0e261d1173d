package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles   = errors.New("no spreadsheet files found")
	ErrAllFailed = errors.New("every file failed to import")
)

// GridLoadError: the source could not be read into a cell grid.
type GridLoadError struct {
	Source string
	Err    error
}

func (e *GridLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *GridLoadError) Unwrap() error { return e.Err }

// ConsolidationWriteError: the batch for Source was rolled back as a whole.
type ConsolidationWriteError struct {
	Source string
	Err    error
}

func (e *ConsolidationWriteError) Error() string {
	return fmt.Sprintf("consolidate %s: %v", e.Source, e.Err)
}

func (e *ConsolidationWriteError) Unwrap() error { return e.Err }

// Package source lists and opens the spreadsheet files of a multi-file run.
package source

import (
	"context"
	"io"
	"time"
)

// Object is one listed file. Key is what Open expects back.
type Object struct {
	Key          string
	Name         string
	Size         int64
	LastModified time.Time
}

type Source interface {
	// List returns the loadable spreadsheets sorted by key.
	List(ctx context.Context) ([]Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// String names the source in logs.
	String() string
}

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ingest-service/internal/fileio"
)

// FS reads spreadsheets from one directory, non-recursively.
type FS struct {
	Dir string
}

func NewFS(dir string) *FS { return &FS{Dir: dir} }

func (f *FS) String() string { return "dir:" + f.Dir }

// List skips subdirectories, unsupported extensions and Office lock files (~$name.xlsx).
func (f *FS) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", f.Dir, err)
	}
	var out []Object
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") || !fileio.Supported(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		out = append(out, Object{
			Key:          filepath.Join(f.Dir, name),
			Name:         name,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *FS) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(key) //nolint:gosec // key comes from List
}

package filesource

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Source reads the document from a local file, e.g. a saved copy of the page.
type Source struct {
	path string
}

func (s *Source) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %q: %w", s.path, err)
	}
	return f, nil
}

func New(path string) *Source {
	return &Source{path: path}
}

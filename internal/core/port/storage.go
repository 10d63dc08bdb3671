package port

import (
	"context"
	"io"
)

// ImageStorage persists uploaded files and returns the public path they are
// served from.
type ImageStorage interface {
	Save(ctx context.Context, name string, content io.Reader) (string, error)
}

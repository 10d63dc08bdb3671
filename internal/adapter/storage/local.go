package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todolist/internal/core/port"
	"todolist/internal/core/telemetry"
)

// LocalStorage writes uploads into a directory that is served statically
// under urlPrefix. File writes and database rows are not transactional.
type LocalStorage struct {
	dir       string
	urlPrefix string
	logger    *otelzap.Logger
	metrics   *telemetry.AppMetrics
}

var _ port.ImageStorage = (*LocalStorage)(nil)

// NewLocalStorage creates dir and any missing parents.
func NewLocalStorage(dir, urlPrefix string, logger *otelzap.Logger, metrics *telemetry.AppMetrics) (*LocalStorage, error) {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create uploads directory", zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}

	return &LocalStorage{
		dir:       dir,
		urlPrefix: urlPrefix,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save stores content as name and returns the public path. Directory parts
// of name are dropped.
func (s *LocalStorage) Save(ctx context.Context, name string, content io.Reader) (publicPath string, err error) {
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordUpload(ctx, err)
		}
	}()

	name = filepath.Base(name)

	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name")
	}

	file, err := os.Create(filepath.Join(s.dir, name))

	if err != nil {
		s.logger.Ctx(ctx).Error("Failed to create upload", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err = io.Copy(file, content); err != nil {
		file.Close()
		s.logger.Ctx(ctx).Error("Failed to write upload", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if err = file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// PrefixedName keeps the client's file name behind a random prefix.
func PrefixedName(original string) string {
	return uuid.NewString() + "_" + filepath.Base(original)
}

// ExtensionName keeps only the extension of the client's file name.
func ExtensionName(original string) string {
	return uuid.NewString() + filepath.Ext(original)
}

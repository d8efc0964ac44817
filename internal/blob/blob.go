// Package blob keeps the image payloads of locally synthesized analyses
// behind owned references, on disk or in an S3-compatible bucket.
package blob

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/config"
	"github.com/Veraticus/lensline/internal/service"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// New opens the blob store selected by cfg.
func New(ctx context.Context, cfg config.BlobConfig) (service.BlobStore, error) {
	switch cfg.Backend {
	case config.BlobBackendFile, "":
		return NewFileStore(cfg.Dir)
	case config.BlobBackendMinIO:
		return NewMinIOStore(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("%w: blob backend %q", common.ErrInvalidConfig, cfg.Backend)
	}
}

// objectName returns a fresh collision-free name that keeps a usable
// extension, taken from the content type when it is known.
func objectName(name, contentType string) string {
	ext := ""
	if m := mimetype.Lookup(contentType); m != nil {
		ext = m.Extension()
	}
	if ext == "" {
		ext = filepath.Ext(name)
	}
	return uuid.NewString() + ext
}

package digest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/logger"
)

// FileDeliverer writes the rendered digest to an HTML file.
type FileDeliverer struct {
	path string
}

// NewFileDeliverer creates a file deliverer. path defaults to digest.html.
func NewFileDeliverer(path string) *FileDeliverer {
	if path == "" {
		path = "digest.html"
	}
	return &FileDeliverer{path: path}
}

func (f *FileDeliverer) Name() string { return "file" }

// Deliver renders the digest and writes it to the configured path,
// creating parent directories as needed.
func (f *FileDeliverer) Deliver(ctx context.Context, d Digest) error {
	html, err := RenderHTML(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create digest directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write digest file: %w", err)
	}
	logger.FromContext(ctx).Info("digest saved", zap.String("path", f.path))
	return nil
}

package archive

import (
	"context"
	"fmt"

	"fintrack/internal/backup"
	"fintrack/internal/config"
)

// NewArchiveFromConfig creates the archive backend selected by the
// configuration's type tag.
func NewArchiveFromConfig(ctx context.Context, cfg config.ArchiveConfig) (backup.Archive, error) {
	switch cfg.Type {
	case "filesystem":
		return NewFilesystemArchive(cfg.Root)
	case "s3":
		return NewS3Archive(ctx, cfg)
	case "memory":
		return NewMemoryArchive(), nil
	default:
		return nil, fmt.Errorf("unknown archive type: %q", cfg.Type)
	}
}

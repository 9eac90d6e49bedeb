package safe

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// Close closes an io.Closer and logs any error. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Remove deletes a file and logs any error other than the file already
// being gone.
func Remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.From(ctx).Error("Failed to remove file", slog.Any("error", err), slog.String("path", path))
	}
}

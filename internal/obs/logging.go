// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// InitLogger installs a JSON slog handler at info level as the default logger.
func InitLogger() {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))
}

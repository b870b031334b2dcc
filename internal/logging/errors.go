package logging

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// ErrorAttrs returns the log attributes for err, including the oops code and
// context when err carries them.
func ErrorAttrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if c := oopsErr.Context(); len(c) > 0 {
		attrs = append(attrs, "context", c)
	}
	return attrs
}

// LogError logs err at error level
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, args ...any) {
	logger.ErrorContext(ctx, msg, append(args, ErrorAttrs(err)...)...)
}

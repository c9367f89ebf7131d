package docker

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
)

// logWriter forwards daemon output (build/push progress) to the structured
// logger at debug level, line by line.
type logWriter struct {
	logger *slog.Logger
	op     string
	image  string
	buf    strings.Builder
}

func newLogWriter(ctx context.Context, op, image string) io.Writer {
	return &logWriter{
		logger: ctxlog.From(ctx),
		op:     op,
		image:  image,
	}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		s := w.buf.String()
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(s[:idx], "\r")
		w.buf.Reset()
		w.buf.WriteString(s[idx+1:])
		if line != "" {
			w.logger.Debug(w.op, "image", w.image, "output", line)
		}
	}
	return len(p), nil
}

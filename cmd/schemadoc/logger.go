package main

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// newLogger fans records out to stderr as text and, when logFile is set, to
// that file as JSON lines. The returned closer releases the file.
func newLogger(stderr io.Writer, logFile string) (*slog.Logger, func(), error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closer = func() { _ = f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

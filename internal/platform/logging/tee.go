package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler fans records out to several sinks, e.g. the console and the
// rotating log file. Each sink keeps its own level and format.
type teeHandler struct {
	sinks []slog.Handler
}

func newTeeHandler(sinks ...slog.Handler) *teeHandler {
	return &teeHandler{sinks: sinks}
}

// Enabled reports whether any sink accepts level.
func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle writes r to every sink that accepts its level. A failing sink does
// not stop the others; all errors are joined.
func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var errs []error
	for _, s := range h.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *teeHandler) each(fn func(slog.Handler) slog.Handler) *teeHandler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = fn(s)
	}

	return newTeeHandler(sinks...)
}

// Package logger builds the slog JSON logger and carries per-request attributes in the context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type ctxKey int

const dataKey ctxKey = iota

// Data is attached to log records emitted with a context that carries it.
type Data struct {
	RequestID string
	Screen    string
	SessionID string
}

type contextHandler struct {
	handler slog.Handler
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&contextHandler{handler: h})
}

// ParseLevel maps "debug", "info", "warn" and "error"; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (h *contextHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.handler.Enabled(ctx, lvl)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if d, ok := ctx.Value(dataKey).(Data); ok {
		if d.RequestID != "" {
			rec.AddAttrs(slog.String("request_id", d.RequestID))
		}
		if d.Screen != "" {
			rec.AddAttrs(slog.String("screen", d.Screen))
		}
		if d.SessionID != "" {
			rec.AddAttrs(slog.String("session_id", d.SessionID))
		}
	}
	return h.handler.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name)}
}

func from(ctx context.Context) Data {
	d, _ := ctx.Value(dataKey).(Data)
	return d
}

func WithRequestID(ctx context.Context, id string) context.Context {
	d := from(ctx)
	d.RequestID = id
	return context.WithValue(ctx, dataKey, d)
}

func WithScreen(ctx context.Context, screen string) context.Context {
	d := from(ctx)
	d.Screen = screen
	return context.WithValue(ctx, dataKey, d)
}

func WithSessionID(ctx context.Context, id string) context.Context {
	d := from(ctx)
	d.SessionID = id
	return context.WithValue(ctx, dataKey, d)
}

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	return from(ctx).RequestID
}

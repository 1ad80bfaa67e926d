package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the root logger for the given environment. Non-local
// environments log JSON to both stdout and a file under logPath.
func SetupLogger(env, logPath string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(logWriter(logPath), &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(logWriter(logPath), &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return log
}

func logWriter(logPath string) io.Writer {
	file, err := os.OpenFile(filepath.Join(logPath, "agrihub.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, file)
}

// Notifier receives log records escalated beyond the local sinks, e.g. the
// Telegram admin bot.
type Notifier interface {
	SendMessage(msg string)
}

// SetupTelegramHandler fans records at or above level out to the notifier
// in addition to the existing handler chain.
func SetupTelegramHandler(log *slog.Logger, notifier Notifier, level slog.Level) *slog.Logger {
	return slog.New(&notifyHandler{
		next:     log.Handler(),
		notifier: notifier,
		level:    level,
	})
}

type notifyHandler struct {
	next     slog.Handler
	notifier Notifier
	attrs    string
	level    slog.Level
}

func (h *notifyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *notifyHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= h.level && h.notifier != nil {
		msg := record.Level.String() + ": " + record.Message + h.attrs
		record.Attrs(func(a slog.Attr) bool {
			msg += " " + a.String()
			return true
		})
		h.notifier.SendMessage(msg)
	}
	return h.next.Handle(ctx, record)
}

func (h *notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	joined := h.attrs
	for _, a := range attrs {
		joined += " " + a.String()
	}
	return &notifyHandler{
		next:     h.next.WithAttrs(attrs),
		notifier: h.notifier,
		attrs:    joined,
		level:    h.level,
	}
}

func (h *notifyHandler) WithGroup(name string) slog.Handler {
	return &notifyHandler{
		next:     h.next.WithGroup(name),
		notifier: h.notifier,
		attrs:    h.attrs,
		level:    h.level,
	}
}

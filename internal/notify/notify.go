// Package notify is the fire-and-forget notification sink consumed by the
// lifecycle handlers. The hosted platform renders these as toasts; the
// default implementation just logs them.
package notify

import (
	"log/slog"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notifier interface {
	Notify(kind Kind, message string, duration time.Duration)
}

type logNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(kind Kind, message string, duration time.Duration) {
	if kind == KindError {
		n.logger.Error("notification", "message", message, "duration", duration)
		return
	}
	n.logger.Info("notification", "message", message, "duration", duration)
}

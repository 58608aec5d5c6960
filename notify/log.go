package notify

import (
	"context"
	"log/slog"

	otpAuth "github.com/MrEthical07/otpAuth"
)

// Log writes every message to a logger instead of delivering it. The body is
// included, so one-time codes end up in the log; use it only in development.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log notifier. A nil logger falls back to slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Send logs the message at info level.
func (l *Log) Send(ctx context.Context, to, subject, body string) error {
	l.logger.InfoContext(ctx, "mail",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

var _ otpAuth.Notifier = (*Log)(nil)

package email

import (
	"context"

	"github.com/accountd/accountd/internal/logger"
)

// LogSender writes emails to the application log instead of sending them.
// It is the default provider for local development, where the verification
// link can be copied straight from the log output.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a LogSender writing to the given logger.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("email")}
}

// Send logs the message instead of delivering it.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("email delivery skipped (log provider)")
	return nil
}

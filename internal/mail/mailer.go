// Package mail sends notification emails. Sends go through a Gate that serialises them and
// keeps a minimum interval between consecutive sends.
package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs messages. It is used when SMTP is not configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a LogMailer writing to logger.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: utils.OrNop(logger)}
}

// Send logs msg and always succeeds.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email (not sent, smtp disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", utils.TruncateForLog(msg.Body, 120)))
	return nil
}

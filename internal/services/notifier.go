package services

import (
	"go.uber.org/zap"

	"finflow/internal/logger"
)

// Notifier delivers a message to a list of recipients.
type Notifier interface {
	Notify(recipients []string, subject, body string) error
}

type logNotifier struct {
	from string
	log  *zap.SugaredLogger
}

// NewLogNotifier returns a Notifier that records outgoing messages in the log.
// Bodies are never logged since they can carry credentials.
func NewLogNotifier(from string) Notifier {
	return &logNotifier{from: from, log: logger.Named("notifier")}
}

func (n *logNotifier) Notify(recipients []string, subject, body string) error {
	n.log.Infow("notification queued",
		"from", n.from,
		"to", recipients,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}

// notifyBestEffort sends a notification and swallows any failure.
func notifyBestEffort(n Notifier, recipients []string, subject, body string) {
	if n == nil || len(recipients) == 0 {
		return
	}
	if err := n.Notify(recipients, subject, body); err != nil {
		logger.Get().Warnw("notification failed",
			"error", err,
			"subject", subject,
			"recipients", len(recipients),
		)
	}
}

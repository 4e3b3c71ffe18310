package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/model"
)

// LogNotifier simulates email delivery by writing the message to the log
type LogNotifier struct {
	composer Composer
	log      logrus.FieldLogger
}

// NewLogNotifier creates a notifier that logs through log, or the standard logger when nil
func NewLogNotifier(composer Composer, log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{composer: composer, log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, g model.Greeting, action Action) error {
	msg, err := n.composer.Compose(g, action)
	if err != nil {
		return &Error{Driver: "log", Err: err}
	}

	n.log.WithFields(logrus.Fields{
		"greeting_id": g.ID,
		"action":      string(action),
		"to":          msg.To,
		"subject":     msg.Subject,
		"sender":      g.SenderName,
		"recipient":   g.RecipientName,
		"occasion":    string(g.Occasion),
		"view_url":    msg.ViewURL,
		"body":        msg.TextBody,
	}).Info("Email notification (simulated)")

	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}

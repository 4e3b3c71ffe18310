package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/model"
)

// defaultIMAPTimeout bounds a session when the caller sets no deadline
const defaultIMAPTimeout = 30 * time.Second

// mailbox is the part of an IMAP session the notifier needs
type mailbox interface {
	Append(mbox string, flags []string, date time.Time, msg imap.Literal) error
	Logout() error
	Terminate() error
}

// IMAPNotifier drops notifications into an IMAP mailbox, e.g. an outbox
// folder that a mail client delivers from
type IMAPNotifier struct {
	composer Composer
	target   string
	dial     func(ctx context.Context) (mailbox, error)
}

// NewIMAPNotifier creates a notifier that opens a short IMAP session per message
func NewIMAPNotifier(composer Composer, cfg config.IMAPConfig) *IMAPNotifier {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &IMAPNotifier{
		composer: composer,
		target:   cfg.Mailbox,
		dial: func(ctx context.Context) (mailbox, error) {
			timeout, err := remaining(ctx)
			if err != nil {
				return nil, err
			}
			// the dialer timeout also covers the TLS handshake and server greeting
			c, err := client.DialWithDialerTLS(&net.Dialer{Timeout: timeout}, addr, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
			}
			if c.Timeout, err = remaining(ctx); err != nil {
				c.Terminate()
				return nil, err
			}
			if err := c.Login(cfg.User, cfg.Password); err != nil {
				c.Terminate()
				return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
			}
			return c, nil
		},
	}
}

// remaining returns the time left before the ctx deadline
func remaining(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dl, ok := ctx.Deadline()
	if !ok {
		return defaultIMAPTimeout, nil
	}
	left := time.Until(dl)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}

func (n *IMAPNotifier) Notify(ctx context.Context, g model.Greeting, action Action) error {
	if err := ctx.Err(); err != nil {
		return &Error{Driver: "imap", Err: err}
	}

	msg, err := n.composer.Compose(g, action)
	if err != nil {
		return &Error{Driver: "imap", Err: err}
	}

	now := time.Now()
	raw, err := buildMIME(msg, now)
	if err != nil {
		return &Error{Driver: "imap", Err: err}
	}

	mb, err := n.dial(ctx)
	if err != nil {
		return &Error{Driver: "imap", Err: err}
	}

	// drop the connection if ctx ends mid-command
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mb.Terminate()
		case <-done:
		}
	}()
	defer mb.Logout()

	if err := mb.Append(n.target, nil, now, bytes.NewBuffer(raw)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return &Error{Driver: "imap", Err: fmt.Errorf("failed to append to %s: %w", n.target, err)}
	}

	logrus.WithFields(logrus.Fields{
		"greeting_id": g.ID,
		"action":      string(action),
		"mailbox":     n.target,
	}).Info("Notification email queued")
	return nil
}

func (n *IMAPNotifier) Close() error {
	return nil
}

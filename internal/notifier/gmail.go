package notifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/model"
)

// GmailNotifier sends notifications through the Gmail API
type GmailNotifier struct {
	composer  Composer
	userEmail string
	send      func(ctx context.Context, msg *gmail.Message) error
}

// OAuthConfig returns the OAuth2 client used to send mail on behalf of the
// configured account. redirectURL is only needed when obtaining a token.
func OAuthConfig(cfg config.GmailConfig, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
	}
}

// NewGmailNotifier creates a Gmail API client authorised by a refresh token
func NewGmailNotifier(ctx context.Context, composer Composer, cfg config.GmailConfig) (*GmailNotifier, error) {
	tokenSource := OAuthConfig(cfg, "").TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	userEmail := cfg.UserEmail
	if userEmail == "" {
		userEmail = "me"
	}

	n := &GmailNotifier{composer: composer, userEmail: userEmail}
	n.send = func(ctx context.Context, msg *gmail.Message) error {
		_, err := service.Users.Messages.Send(n.userEmail, msg).Context(ctx).Do()
		return err
	}
	return n, nil
}

func (n *GmailNotifier) Notify(ctx context.Context, g model.Greeting, action Action) error {
	msg, err := n.composer.Compose(g, action)
	if err != nil {
		return &Error{Driver: "gmail", Err: err}
	}

	raw, err := buildMIME(msg, time.Now())
	if err != nil {
		return &Error{Driver: "gmail", Err: err}
	}

	err = n.send(ctx, &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)})
	if err != nil {
		return &Error{Driver: "gmail", Err: fmt.Errorf("failed to send message: %w", err)}
	}

	logrus.WithFields(logrus.Fields{
		"greeting_id": g.ID,
		"action":      string(action),
		"to":          msg.To,
	}).Info("Notification email sent")
	return nil
}

func (n *GmailNotifier) Close() error {
	return nil
}

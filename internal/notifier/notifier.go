// Package notifier tells the sender of a greeting card that their card was
// created or updated. Delivery is best-effort: callers log a failed
// notification and carry on.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"greeting-card-go/internal/model"
)

// Action is the change that triggered a notification
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Notifier delivers a notification about a greeting
type Notifier interface {
	Notify(ctx context.Context, g model.Greeting, action Action) error
	Close() error
}

// Error reports a failed notification
type Error struct {
	Driver string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s notifier: %v", e.Driver, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is a rendered notification email
type Message struct {
	From     string
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
	ViewURL  string
}

// Composer renders greetings into notification messages
type Composer struct {
	PublicURL string
	From      string
}

// ViewURL returns the link to the detail page of a greeting
func (c Composer) ViewURL(id string) string {
	return strings.TrimRight(c.PublicURL, "/") + "/view?id=" + url.QueryEscape(id)
}

// Compose renders the notification for g
func (c Composer) Compose(g model.Greeting, action Action) (Message, error) {
	msg := Message{
		From:    c.From,
		To:      g.SenderEmail,
		ToName:  g.SenderName,
		Subject: fmt.Sprintf("Your Greeting Card for %s has been %s!", g.RecipientName, action),
		ViewURL: c.ViewURL(g.ID),
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n", g.SenderName)
	fmt.Fprintf(&text, "Your greeting card has been successfully %s!\n\n", action)
	fmt.Fprintf(&text, "Recipient: %s\n", g.RecipientName)
	fmt.Fprintf(&text, "Occasion: %s\n\n", g.Occasion)
	fmt.Fprintf(&text, "View your greeting card at:\n%s\n", msg.ViewURL)
	msg.TextBody = text.String()

	var html bytes.Buffer
	err := htmlBody.Execute(&html, map[string]any{
		"Title":     strings.ToUpper(string(action[:1])) + string(action[1:]),
		"Action":    string(action),
		"Sender":    g.SenderName,
		"Recipient": g.RecipientName,
		"Occasion":  string(g.Occasion),
		"Date":      g.CreatedAt.Format("2006-01-02"),
		"ViewURL":   msg.ViewURL,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render html body: %w", err)
	}
	msg.HTMLBody = html.String()

	return msg, nil
}

var htmlBody = template.Must(template.New("notification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #7C3AED;">Greeting Card {{.Title}}!</h2>
  <p>Hello {{.Sender}},</p>
  <p>Your greeting card has been successfully {{.Action}}!</p>
  <div style="background: #764ba2; padding: 20px; border-radius: 10px; color: white; margin: 20px 0;">
    <h3 style="margin: 0 0 10px 0;">Card Details</h3>
    <p style="margin: 5px 0;"><strong>Recipient:</strong> {{.Recipient}}</p>
    <p style="margin: 5px 0;"><strong>Occasion:</strong> {{.Occasion}}</p>
    <p style="margin: 5px 0;"><strong>Date:</strong> {{.Date}}</p>
  </div>
  <p>View your greeting card at: <a href="{{.ViewURL}}">Click here</a></p>
  <p style="color: #6B7280; font-size: 12px; margin-top: 30px;">This is an automated message from the Greeting Card System.</p>
</div>
`))

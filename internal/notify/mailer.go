package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notify: recipient is empty")
	}
	html := msg.HTML
	if html == "" {
		html = fmt.Sprintf("<pre>%s</pre>", msg.PlainText)
	}
	email := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.PlainText,
		html,
	)
	res, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", res.StatusCode, res.Body)
	}
	return nil
}

// Noop discards mail; used when SENDGRID_API_KEY is empty.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }

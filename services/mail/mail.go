package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Message is one outbound email.
type Message struct {
	To          []string
	Subject     string
	TextContent string
	HTMLContent string
	ReplyTo     string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a SendGrid mailer when a key is configured, otherwise a console mailer.
func New(apiKey, appName, from string) Mailer {
	if strings.TrimSpace(apiKey) == "" {
		log.Warn("SENDGRID_API_KEY not set, emails are written to the log")
		return NewConsoleMailer(appName, from)
	}
	return NewSendGridMailer(apiKey, appName, from)
}

type sendGridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendGridMailer(key, appName, from string) Mailer {
	return &sendGridMailer{
		key:        key,
		from:       sgmail.NewEmail(appName, from),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *sendGridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.ReplyTo != "" {
		v3.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	v3.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return v3
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	req := sendgrid.GetRequest(m.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	log.WithFields(log.Fields{"subject": msg.Subject, "recipients": len(msg.To)}).Info("email sent")
	return nil
}

// ConsoleMailer logs messages instead of sending them and keeps a copy of each.
type ConsoleMailer struct {
	from       string
	subjPrefix string

	mu   sync.Mutex
	sent []Message
}

func NewConsoleMailer(appName, from string) *ConsoleMailer {
	return &ConsoleMailer{from: from, subjPrefix: "[" + appName + "] "}
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	log.WithFields(log.Fields{
		"from":    m.from,
		"to":      strings.Join(msg.To, ", "),
		"subject": m.subjPrefix + msg.Subject,
	}).Info(msg.TextContent)

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns the messages handed to the mailer so far.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

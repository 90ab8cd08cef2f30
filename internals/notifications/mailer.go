package notifications

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To      []mail.Address
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

/* ============ SendGrid ============ */

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridMailer(key, appName, fromName, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *SendgridMailer) build(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.build(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

/* ============ Console ============ */

// ConsoleMailer logs messages instead of sending them and keeps a copy of each.
type ConsoleMailer struct {
	from  mail.Address
	quiet bool

	mu   sync.Mutex
	sent []Message
}

func NewConsoleMailer(fromName, fromEmail string, quiet bool) *ConsoleMailer {
	return &ConsoleMailer{from: mail.Address{Name: fromName, Address: fromEmail}, quiet: quiet}
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	if !m.quiet {
		to := make([]string, 0, len(msg.To))
		for _, a := range msg.To {
			to = append(to, a.String())
		}
		var b strings.Builder
		fmt.Fprintf(&b, "From: %s\r\n", m.from.String())
		fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
		fmt.Fprintf(&b, "Subject: %s\r\n\r\n", msg.Subject)
		b.WriteString(msg.Text)
		log.Printf("[MAIL]\n%s", b.String())
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

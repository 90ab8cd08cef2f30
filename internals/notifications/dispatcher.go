package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/reporting"
)

var ErrNoRecipient = errors.New("no guardian email on file")

// RecipientResolver finds who should hear about a student's billing.
type RecipientResolver interface {
	GuardianOf(ctx context.Context, studentID uuid.UUID) (Recipient, error)
}

// Dispatcher renders and mails notifications on background goroutines.
type Dispatcher struct {
	mailer     Mailer
	recipients RecipientResolver
	appName    string
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewDispatcher(mailer Mailer, appName string) *Dispatcher {
	return &Dispatcher{mailer: mailer, appName: appName, timeout: 30 * time.Second}
}

// SetRecipients is separate from the constructor because the resolver (admissions)
// itself needs a Notifier.
func (d *Dispatcher) SetRecipients(r RecipientResolver) {
	d.recipients = r
}

// Wait blocks until in-flight notifications are done.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) InvoiceIssued(_ context.Context, n InvoiceIssued) {
	d.dispatch("invoice_issued", "Invoice "+n.InvoiceNo, n.StudentID, nil, n)
}

func (d *Dispatcher) PaymentReceived(_ context.Context, n PaymentReceived) {
	d.dispatch("payment_received", "Payment received for "+n.InvoiceNo, n.StudentID, nil, n)
}

func (d *Dispatcher) AdmissionDecided(_ context.Context, n AdmissionDecided) {
	subject := "Admission decision for " + n.ChildName
	guardian := n.Guardian
	d.dispatch("admission_decided", subject, uuid.Nil, &guardian, n)
}

func (d *Dispatcher) InvoiceOverdue(_ context.Context, n InvoiceOverdue) {
	d.dispatch("invoice_overdue", "Overdue: invoice "+n.InvoiceNo, n.StudentID, nil, n)
}

// dispatch never uses the caller's context: request contexts end before the mail goes out.
func (d *Dispatcher) dispatch(tmpl, subject string, studentID uuid.UUID, to *Recipient, data any) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				reporting.Recovered(ctx, "notifications."+tmpl, r)
			}
		}()

		if err := d.send(ctx, tmpl, subject, studentID, to, data); err != nil {
			if errors.Is(err, ErrNoRecipient) {
				log.Printf("[WARN] notification %s skipped: %v", tmpl, err)
				return
			}
			reporting.Error(ctx, err, map[string]interface{}{"template": tmpl})
		}
	}()
}

func (d *Dispatcher) send(ctx context.Context, tmpl, subject string, studentID uuid.UUID, to *Recipient, data any) error {
	var rcpt Recipient
	switch {
	case to != nil:
		rcpt = *to
	case d.recipients != nil:
		r, err := d.recipients.GuardianOf(ctx, studentID)
		if err != nil {
			return fmt.Errorf("resolve recipient for student %s: %w", studentID, err)
		}
		rcpt = r
	}
	if strings.TrimSpace(rcpt.Email) == "" {
		return ErrNoRecipient
	}

	text, html, err := render(tmpl, templateData{AppName: d.appName, Recipient: rcpt, Data: data})
	if err != nil {
		return err
	}
	msg := Message{
		To:      []mail.Address{{Name: rcpt.Name, Address: rcpt.Email}},
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", tmpl, err)
	}
	return nil
}

package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardians map[uuid.UUID]Recipient

func (g guardians) GuardianOf(_ context.Context, id uuid.UUID) (Recipient, error) {
	r, ok := g[id]
	if !ok {
		return Recipient{}, errors.New("unknown student")
	}
	return r, nil
}

func TestDispatcher_InvoiceIssued(t *testing.T) {
	student := uuid.New()
	mailer := NewConsoleMailer("Bursar", "bursar@example.com", true)
	d := NewDispatcher(mailer, "SchoolFee")
	d.SetRecipients(guardians{student: {Name: "Amina", Email: "amina@example.com"}})

	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	d.InvoiceIssued(context.Background(), InvoiceIssued{
		InvoiceNo: "INV-1",
		StudentID: student,
		Total:     decimal.RequireFromString("1250.5"),
		DueDate:   &due,
		Items: []Line{
			{Label: "Tuition", Amount: decimal.NewFromInt(1000)},
			{Label: "Bus", Amount: decimal.RequireFromString("250.5"), IsOptional: true},
		},
	})
	d.Wait()

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "amina@example.com", sent[0].To[0].Address)
	assert.Equal(t, "Invoice INV-1", sent[0].Subject)
	assert.Contains(t, sent[0].Text, "Bus [optional]: 250.50")
	assert.Contains(t, sent[0].Text, "Total: 1250.50")
	assert.Contains(t, sent[0].Text, "Due: 2025-02-01")
	assert.Contains(t, sent[0].HTML, "<strong>INV-1</strong>")
}

func TestDispatcher_AdmissionDecidedUsesGuardianDirectly(t *testing.T) {
	mailer := NewConsoleMailer("Bursar", "bursar@example.com", true)
	d := NewDispatcher(mailer, "SchoolFee")

	d.AdmissionDecided(context.Background(), AdmissionDecided{
		ChildName: "Kofi",
		Guardian:  Recipient{Name: "Ama", Email: "ama@example.com"},
		Approved:  false,
		Remarks:   "Class is full",
	})
	d.Wait()

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "was not approved")
	assert.Contains(t, sent[0].Text, "Remarks: Class is full")
}

func TestDispatcher_SkipsUnknownRecipient(t *testing.T) {
	mailer := NewConsoleMailer("Bursar", "bursar@example.com", true)
	d := NewDispatcher(mailer, "SchoolFee")
	d.SetRecipients(guardians{})

	d.PaymentReceived(context.Background(), PaymentReceived{InvoiceNo: "INV-2", StudentID: uuid.New()})
	d.InvoiceOverdue(context.Background(), InvoiceOverdue{InvoiceNo: "INV-3"})
	d.Wait()

	assert.Empty(t, mailer.Sent())
}

func TestRender_AllTemplates(t *testing.T) {
	data := templateData{AppName: "SchoolFee", Recipient: Recipient{Name: "X"}}
	cases := map[string]any{
		"invoice_issued":    InvoiceIssued{InvoiceNo: "A"},
		"payment_received":  PaymentReceived{InvoiceNo: "A", Method: "cash"},
		"admission_decided": AdmissionDecided{ChildName: "C", Approved: true, StudentNo: "STU2025000001"},
		"invoice_overdue":   InvoiceOverdue{InvoiceNo: "A", DueDate: time.Now()},
	}
	for name, d := range cases {
		data.Data = d
		text, html, err := render(name, data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, text, name)
		assert.NotEmpty(t, html, name)
	}
}

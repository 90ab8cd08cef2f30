// Package notifications tells guardians about billing and admission events by email.
// Every call returns immediately; delivery problems are logged, never returned.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Recipient struct {
	Name  string
	Email string
}

type InvoiceIssued struct {
	InvoiceID uuid.UUID
	InvoiceNo string
	StudentID uuid.UUID
	Total     decimal.Decimal
	DueDate   *time.Time
	Items     []Line
}

type Line struct {
	Label      string
	Amount     decimal.Decimal
	IsOptional bool
}

type PaymentReceived struct {
	InvoiceID uuid.UUID
	InvoiceNo string
	StudentID uuid.UUID
	Amount    decimal.Decimal
	Method    string
	Reference string
	Paid      decimal.Decimal
	Balance   decimal.Decimal
	Status    string
}

type AdmissionDecided struct {
	AdmissionID uuid.UUID
	ChildName   string
	Guardian    Recipient
	Approved    bool
	Remarks     string
	StudentNo   string
}

type InvoiceOverdue struct {
	InvoiceID uuid.UUID
	InvoiceNo string
	StudentID uuid.UUID
	Balance   decimal.Decimal
	DueDate   time.Time
}

type Notifier interface {
	InvoiceIssued(ctx context.Context, n InvoiceIssued)
	PaymentReceived(ctx context.Context, n PaymentReceived)
	AdmissionDecided(ctx context.Context, n AdmissionDecided)
	InvoiceOverdue(ctx context.Context, n InvoiceOverdue)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) InvoiceIssued(context.Context, InvoiceIssued)       {}
func (Nop) PaymentReceived(context.Context, PaymentReceived)   {}
func (Nop) AdmissionDecided(context.Context, AdmissionDecided) {}
func (Nop) InvoiceOverdue(context.Context, InvoiceOverdue)     {}

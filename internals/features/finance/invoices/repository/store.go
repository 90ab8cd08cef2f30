package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/invoices/model"
)

type InvoiceFilter struct {
	StudentID      *uuid.UUID
	TermID         *uuid.UUID
	Status         *model.InvoiceStatus
	Kind           *model.InvoiceKind
	WorkflowStatus *model.WorkflowStatus
	Search         string // invoice_no prefix
	Order          string
	Limit          int
	Offset         int
}

type Store interface {
	// Create inserts the invoice together with its Items.
	Create(ctx context.Context, m *model.Invoice) error
	Get(ctx context.Context, id uuid.UUID) (model.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, int64, error)

	// Decide moves a pending enrollment invoice to approved/rejected. It reports false
	// when the invoice was not pending any more.
	Decide(ctx context.Context, id uuid.UUID, to model.WorkflowStatus, by string, at time.Time) (bool, error)

	// Overdue lists unsettled invoices whose due date is before asOf and that were not
	// reminded since remindedBefore.
	Overdue(ctx context.Context, asOf, remindedBefore time.Time, limit int) ([]model.Invoice, error)
	MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

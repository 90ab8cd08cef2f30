package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
)

type PaymentFilter struct {
	InvoiceID *uuid.UUID
	Method    *model.PaymentMethod
	From      *time.Time
	To        *time.Time
	Order     string
	Limit     int
	Offset    int
}

type Store interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error)
	// LockInvoice reads the invoice row and holds it until the transaction ends.
	LockInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error)
	// SaveInvoiceTotals writes paid/balance/status only.
	SaveInvoiceTotals(ctx context.Context, inv invoiceModel.Invoice) error

	Create(ctx context.Context, m *model.Payment) error
	ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]model.Payment, int64, error)
	Get(ctx context.Context, id uuid.UUID) (model.Payment, error)
	ReferenceUsed(ctx context.Context, invoiceID uuid.UUID, ref string) (bool, error)
	GetByGatewayOrder(ctx context.Context, orderID string) (model.Payment, error)

	CreateCheckout(ctx context.Context, m *model.Checkout) error
	GetCheckout(ctx context.Context, orderID string) (model.Checkout, error)

	LogEvent(ctx context.Context, m *model.GatewayEvent) error
	FinishEvent(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, paymentID *uuid.UUID, errMsg *string, at time.Time) error

	Transaction(ctx context.Context, fn func(Store) error) error
}

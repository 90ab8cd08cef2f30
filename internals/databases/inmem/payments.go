package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/features/finance/payments/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type paymentStore struct{ view }

func NewPaymentStore(db *DB) repository.Store {
	return &paymentStore{view{db: db}}
}

func (s *paymentStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.tx(func(v view) error { return fn(&paymentStore{v}) })
}

func (s *paymentStore) GetInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error) {
	defer s.rlock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return invoiceModel.Invoice{}, dberr.ErrNotFound
	}
	return inv, nil
}

// LockInvoice relies on the write lock held by Transaction.
func (s *paymentStore) LockInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error) {
	defer s.rlock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return invoiceModel.Invoice{}, dberr.ErrNotFound
	}
	return inv, nil
}

func (s *paymentStore) SaveInvoiceTotals(ctx context.Context, inv invoiceModel.Invoice) error {
	defer s.lock()()
	cur, ok := s.db.t.invoices[inv.InvoiceID]
	if !ok {
		return dberr.ErrNotFound
	}
	cur.InvoicePaidAmount = inv.InvoicePaidAmount
	cur.InvoiceBalance = inv.InvoiceBalance
	cur.InvoiceStatus = inv.InvoiceStatus
	cur.InvoiceUpdatedAt = s.db.now()
	s.db.t.invoices[inv.InvoiceID] = cur
	return nil
}

func (s *paymentStore) referenceUsed(invoiceID uuid.UUID, ref string) bool {
	for _, p := range s.db.t.payments {
		if p.PaymentInvoiceID == invoiceID && p.PaymentMethod.NeedsReference() &&
			p.PaymentReferenceNo != nil && *p.PaymentReferenceNo == ref {
			return true
		}
	}
	return false
}

func (s *paymentStore) Create(ctx context.Context, m *model.Payment) error {
	defer s.lock()()
	if m.PaymentReferenceNo != nil && m.PaymentMethod.NeedsReference() && s.referenceUsed(m.PaymentInvoiceID, *m.PaymentReferenceNo) {
		return dberr.ErrDuplicate
	}
	if m.PaymentGatewayOrderID != nil {
		for _, p := range s.db.t.payments {
			if p.PaymentGatewayOrderID != nil && *p.PaymentGatewayOrderID == *m.PaymentGatewayOrderID {
				return dberr.ErrDuplicate
			}
		}
	}
	m.PaymentID = newID(m.PaymentID)
	m.PaymentCreatedAt = s.db.now()
	s.db.t.payments[m.PaymentID] = *m
	return nil
}

func sortPayments(rows []model.Payment, asc bool) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.PaymentReceivedAt.Equal(b.PaymentReceivedAt) {
			return a.PaymentReceivedAt.Before(b.PaymentReceivedAt) == asc
		}
		return a.PaymentCreatedAt.Before(b.PaymentCreatedAt) == asc
	})
}

func (s *paymentStore) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	defer s.rlock()()
	rows := make([]model.Payment, 0)
	for _, p := range s.db.t.payments {
		if p.PaymentInvoiceID == invoiceID {
			rows = append(rows, p)
		}
	}
	sortPayments(rows, true)
	return rows, nil
}

func (s *paymentStore) List(ctx context.Context, f repository.PaymentFilter) ([]model.Payment, int64, error) {
	defer s.rlock()()
	rows := make([]model.Payment, 0)
	for _, p := range s.db.t.payments {
		if f.InvoiceID != nil && p.PaymentInvoiceID != *f.InvoiceID {
			continue
		}
		if f.Method != nil && p.PaymentMethod != *f.Method {
			continue
		}
		if f.From != nil && p.PaymentReceivedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !p.PaymentReceivedAt.Before(*f.To) {
			continue
		}
		rows = append(rows, p)
	}
	sortPayments(rows, false)
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

func (s *paymentStore) Get(ctx context.Context, id uuid.UUID) (model.Payment, error) {
	defer s.rlock()()
	p, ok := s.db.t.payments[id]
	if !ok {
		return model.Payment{}, dberr.ErrNotFound
	}
	return p, nil
}

func (s *paymentStore) ReferenceUsed(ctx context.Context, invoiceID uuid.UUID, ref string) (bool, error) {
	defer s.rlock()()
	return s.referenceUsed(invoiceID, ref), nil
}

func (s *paymentStore) GetByGatewayOrder(ctx context.Context, orderID string) (model.Payment, error) {
	defer s.rlock()()
	for _, p := range s.db.t.payments {
		if p.PaymentGatewayOrderID != nil && *p.PaymentGatewayOrderID == orderID {
			return p, nil
		}
	}
	return model.Payment{}, dberr.ErrNotFound
}

/* ============ gateway ============ */

func (s *paymentStore) CreateCheckout(ctx context.Context, m *model.Checkout) error {
	defer s.lock()()
	if _, ok := s.db.t.checkouts[m.CheckoutOrderID]; ok {
		return dberr.ErrDuplicate
	}
	m.CheckoutID = newID(m.CheckoutID)
	m.CheckoutCreatedAt = s.db.now()
	s.db.t.checkouts[m.CheckoutOrderID] = *m
	return nil
}

func (s *paymentStore) GetCheckout(ctx context.Context, orderID string) (model.Checkout, error) {
	defer s.rlock()()
	co, ok := s.db.t.checkouts[orderID]
	if !ok {
		return model.Checkout{}, dberr.ErrNotFound
	}
	return co, nil
}

func (s *paymentStore) LogEvent(ctx context.Context, m *model.GatewayEvent) error {
	defer s.lock()()
	m.GatewayEventID = newID(m.GatewayEventID)
	m.GatewayEventReceivedAt = s.db.now()
	s.db.t.gatewayEvents[m.GatewayEventID] = *m
	return nil
}

func (s *paymentStore) FinishEvent(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, paymentID *uuid.UUID, errMsg *string, at time.Time) error {
	defer s.lock()()
	ev, ok := s.db.t.gatewayEvents[id]
	if !ok {
		return dberr.ErrNotFound
	}
	ev.GatewayEventStatus = status
	ev.GatewayEventPaymentID = paymentID
	ev.GatewayEventError = errMsg
	ev.GatewayEventProcessedAt = &at
	s.db.t.gatewayEvents[id] = ev
	return nil
}

// GatewayEvents lists logged callbacks for an order, oldest first. Test helper.
func (db *DB) GatewayEvents(orderID string) []model.GatewayEvent {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]model.GatewayEvent, 0)
	for _, ev := range db.t.gatewayEvents {
		if ev.GatewayEventOrderID == orderID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GatewayEventReceivedAt.Before(out[j].GatewayEventReceivedAt) })
	return out
}

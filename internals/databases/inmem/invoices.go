package inmem

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/invoices/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type invoiceStore struct{ view }

func NewInvoiceStore(db *DB) repository.Store {
	return &invoiceStore{view{db: db}}
}

// withItems attaches the invoice's lines ordered by position. Caller holds the lock.
func (v view) withItems(inv model.Invoice) model.Invoice {
	items := make([]model.InvoiceItem, 0)
	for _, it := range v.db.t.invoiceItems {
		if it.InvoiceItemInvoiceID == inv.InvoiceID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].InvoiceItemPosition < items[j].InvoiceItemPosition })
	inv.Items = items
	return inv
}

func (s *invoiceStore) Create(ctx context.Context, m *model.Invoice) error {
	defer s.lock()()
	m.InvoiceID = newID(m.InvoiceID)
	for _, other := range s.db.t.invoices {
		if other.InvoiceNo == m.InvoiceNo {
			return dberr.ErrDuplicate
		}
	}
	now := s.db.now()
	m.InvoiceCreatedAt, m.InvoiceUpdatedAt = now, now
	for i := range m.Items {
		m.Items[i].InvoiceItemID = newID(m.Items[i].InvoiceItemID)
		m.Items[i].InvoiceItemInvoiceID = m.InvoiceID
		s.db.t.invoiceItems[m.Items[i].InvoiceItemID] = m.Items[i]
	}
	stored := *m
	stored.Items = nil
	s.db.t.invoices[m.InvoiceID] = stored
	return nil
}

func (s *invoiceStore) Get(ctx context.Context, id uuid.UUID) (model.Invoice, error) {
	defer s.rlock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return model.Invoice{}, dberr.ErrNotFound
	}
	return s.withItems(inv), nil
}

func (s *invoiceStore) List(ctx context.Context, f repository.InvoiceFilter) ([]model.Invoice, int64, error) {
	defer s.rlock()()
	rows := make([]model.Invoice, 0)
	for _, inv := range s.db.t.invoices {
		if f.StudentID != nil && inv.InvoiceStudentID != *f.StudentID {
			continue
		}
		if f.TermID != nil && inv.InvoiceTermID != *f.TermID {
			continue
		}
		if f.Status != nil && inv.InvoiceStatus != *f.Status {
			continue
		}
		if f.Kind != nil && inv.InvoiceKind != *f.Kind {
			continue
		}
		if f.WorkflowStatus != nil && (inv.InvoiceWorkflowStatus == nil || *inv.InvoiceWorkflowStatus != *f.WorkflowStatus) {
			continue
		}
		if kw := strings.TrimSpace(f.Search); kw != "" && !strings.HasPrefix(strings.ToLower(inv.InvoiceNo), strings.ToLower(kw)) {
			continue
		}
		rows = append(rows, inv)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].InvoiceCreatedAt.After(rows[j].InvoiceCreatedAt) })
	total := int64(len(rows))
	rows = window(rows, f.Limit, f.Offset)
	for i := range rows {
		rows[i] = s.withItems(rows[i])
	}
	return rows, total, nil
}

func (s *invoiceStore) Decide(ctx context.Context, id uuid.UUID, to model.WorkflowStatus, by string, at time.Time) (bool, error) {
	defer s.lock()()
	inv, ok := s.db.t.invoices[id]
	if !ok || !inv.IsPending() {
		return false, nil
	}
	inv.InvoiceWorkflowStatus = &to
	inv.InvoiceDecidedBy = &by
	inv.InvoiceDecidedAt = &at
	inv.InvoiceUpdatedAt = s.db.now()
	s.db.t.invoices[id] = inv
	return true, nil
}

func (s *invoiceStore) Overdue(ctx context.Context, asOf, remindedBefore time.Time, limit int) ([]model.Invoice, error) {
	defer s.rlock()()
	rows := make([]model.Invoice, 0)
	for _, inv := range s.db.t.invoices {
		if inv.InvoiceStatus == model.InvoiceStatusPaid || inv.InvoiceDueDate == nil || !inv.InvoiceDueDate.Before(asOf) {
			continue
		}
		if inv.InvoiceWorkflowStatus != nil && *inv.InvoiceWorkflowStatus == model.WorkflowRejected {
			continue
		}
		if inv.InvoiceLastRemindedAt != nil && !inv.InvoiceLastRemindedAt.Before(remindedBefore) {
			continue
		}
		rows = append(rows, inv)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].InvoiceDueDate.Before(*rows[j].InvoiceDueDate) })
	return window(rows, limit, 0), nil
}

func (s *invoiceStore) MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	defer s.lock()()
	for _, id := range ids {
		if inv, ok := s.db.t.invoices[id]; ok {
			inv.InvoiceLastRemindedAt = &at
			s.db.t.invoices[id] = inv
		}
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/helpers/dberr"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) GetInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error) {
	var inv invoiceModel.Invoice
	err := s.db.WithContext(ctx).First(&inv, "invoice_id = ?", id).Error
	return inv, dberr.Map(err)
}

func (s *gormStore) LockInvoice(ctx context.Context, id uuid.UUID) (invoiceModel.Invoice, error) {
	var inv invoiceModel.Invoice
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "invoice_id = ?", id).Error
	return inv, dberr.Map(err)
}

func (s *gormStore) SaveInvoiceTotals(ctx context.Context, inv invoiceModel.Invoice) error {
	res := s.db.WithContext(ctx).
		Model(&invoiceModel.Invoice{}).
		Where("invoice_id = ?", inv.InvoiceID).
		Updates(map[string]any{
			"invoice_paid_amount": inv.InvoicePaidAmount,
			"invoice_balance":     inv.InvoiceBalance,
			"invoice_status":      inv.InvoiceStatus,
			"invoice_updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (s *gormStore) Create(ctx context.Context, m *model.Payment) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	out := make([]model.Payment, 0)
	err := s.db.WithContext(ctx).
		Where("payment_invoice_id = ?", invoiceID).
		Order("payment_received_at ASC, payment_created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) List(ctx context.Context, f PaymentFilter) ([]model.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Payment{})
	if f.InvoiceID != nil {
		q = q.Where("payment_invoice_id = ?", *f.InvoiceID)
	}
	if f.Method != nil {
		q = q.Where("payment_method = ?", *f.Method)
	}
	if f.From != nil {
		q = q.Where("payment_received_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_received_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := f.Order
	if order == "" {
		order = "payment_received_at DESC"
	}
	q = q.Order(order)
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []model.Payment
	err := q.Find(&out).Error
	return out, total, err
}

func (s *gormStore) Get(ctx context.Context, id uuid.UUID) (model.Payment, error) {
	var m model.Payment
	err := s.db.WithContext(ctx).First(&m, "payment_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ReferenceUsed(ctx context.Context, invoiceID uuid.UUID, ref string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_invoice_id = ? AND payment_reference_no = ? AND payment_method <> ?", invoiceID, ref, model.PaymentMethodCash).
		Count(&n).Error
	return n > 0, err
}

func (s *gormStore) GetByGatewayOrder(ctx context.Context, orderID string) (model.Payment, error) {
	var m model.Payment
	err := s.db.WithContext(ctx).First(&m, "payment_gateway_order_id = ?", orderID).Error
	return m, dberr.Map(err)
}

/* ============ gateway ============ */

func (s *gormStore) CreateCheckout(ctx context.Context, m *model.Checkout) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetCheckout(ctx context.Context, orderID string) (model.Checkout, error) {
	var m model.Checkout
	err := s.db.WithContext(ctx).First(&m, "checkout_order_id = ?", orderID).Error
	return m, dberr.Map(err)
}

func (s *gormStore) LogEvent(ctx context.Context, m *model.GatewayEvent) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) FinishEvent(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, paymentID *uuid.UUID, errMsg *string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.GatewayEvent{}).
		Where("gateway_event_id = ?", id).
		Updates(map[string]any{
			"gateway_event_status":       status,
			"gateway_event_payment_id":   paymentID,
			"gateway_event_error":        errMsg,
			"gateway_event_processed_at": at,
		}).Error
}

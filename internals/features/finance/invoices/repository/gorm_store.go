package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/helpers/dberr"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("invoice_item_position ASC")
}

func (s *gormStore) Create(ctx context.Context, m *model.Invoice) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) Get(ctx context.Context, id uuid.UUID) (model.Invoice, error) {
	var m model.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&m, "invoice_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Invoice{})
	if f.StudentID != nil {
		q = q.Where("invoice_student_id = ?", *f.StudentID)
	}
	if f.TermID != nil {
		q = q.Where("invoice_term_id = ?", *f.TermID)
	}
	if f.Status != nil {
		q = q.Where("invoice_status = ?", *f.Status)
	}
	if f.Kind != nil {
		q = q.Where("invoice_kind = ?", *f.Kind)
	}
	if f.WorkflowStatus != nil {
		q = q.Where("invoice_workflow_status = ?", *f.WorkflowStatus)
	}
	if kw := strings.TrimSpace(f.Search); kw != "" {
		q = q.Where("invoice_no ILIKE ?", kw+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Order != "" {
		q = q.Order(f.Order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.Invoice
	if err := q.Preload("Items", orderedItems).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *gormStore) Decide(ctx context.Context, id uuid.UUID, to model.WorkflowStatus, by string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_id = ? AND invoice_workflow_status = ?", id, model.WorkflowPending).
		Updates(map[string]any{
			"invoice_workflow_status": to,
			"invoice_decided_by":      by,
			"invoice_decided_at":      at,
		})
	if res.Error != nil {
		return false, dberr.Map(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) Overdue(ctx context.Context, asOf, remindedBefore time.Time, limit int) ([]model.Invoice, error) {
	q := s.db.WithContext(ctx).
		Where("invoice_status <> ?", model.InvoiceStatusPaid).
		Where("invoice_due_date IS NOT NULL AND invoice_due_date < ?", asOf).
		Where("invoice_workflow_status IS NULL OR invoice_workflow_status <> ?", model.WorkflowRejected).
		Where("invoice_last_reminded_at IS NULL OR invoice_last_reminded_at < ?", remindedBefore).
		Order("invoice_due_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.Invoice
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_id IN ?", ids).
		Update("invoice_last_reminded_at", at).Error
}

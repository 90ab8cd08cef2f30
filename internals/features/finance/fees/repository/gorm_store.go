package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/fees/model"
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

func page(q *gorm.DB, order string, limit, offset int) *gorm.DB {
	if order != "" {
		q = q.Order(order)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	return q
}

/* ============ groups ============ */

func (s *gormStore) CreateGroup(ctx context.Context, m *model.FeeGroup) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) SaveGroup(ctx context.Context, m *model.FeeGroup) error {
	return dberr.Map(s.db.WithContext(ctx).Save(m).Error)
}

func (s *gormStore) GetGroup(ctx context.Context, id uuid.UUID) (model.FeeGroup, error) {
	var m model.FeeGroup
	err := s.db.WithContext(ctx).First(&m, "fee_group_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListGroups(ctx context.Context, f GroupFilter) ([]model.FeeGroup, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.FeeGroup{})
	if f.OnlyActive {
		q = q.Where("fee_group_is_active = ?", true)
	}
	if kw := strings.TrimSpace(f.Search); kw != "" {
		q = q.Where("fee_group_name ILIKE ?", "%"+kw+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := f.Order
	if order == "" {
		order = "fee_group_display_order ASC, fee_group_name ASC"
	}
	var out []model.FeeGroup
	err := page(q, order, f.Limit, f.Offset).Find(&out).Error
	return out, total, err
}

/* ============ items ============ */

func (s *gormStore) CreateItem(ctx context.Context, m *model.FeeItem) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) SaveItem(ctx context.Context, m *model.FeeItem) error {
	return dberr.Map(s.db.WithContext(ctx).Omit("Group").Save(m).Error)
}

func (s *gormStore) GetItem(ctx context.Context, id uuid.UUID) (model.FeeItem, error) {
	var m model.FeeItem
	err := s.db.WithContext(ctx).Preload("Group").First(&m, "fee_item_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListItems(ctx context.Context, f ItemFilter) ([]model.FeeItem, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.FeeItem{})
	if f.GroupID != nil {
		q = q.Where("fee_item_group_id = ?", *f.GroupID)
	}
	if f.IsOptional != nil {
		q = q.Where("fee_item_is_optional = ?", *f.IsOptional)
	}
	if f.OnlyActive {
		q = q.Where("fee_item_is_active = ?", true)
	}
	if kw := strings.TrimSpace(f.Search); kw != "" {
		q = q.Where("fee_item_name ILIKE ?", "%"+kw+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := f.Order
	if order == "" {
		order = "fee_item_name ASC"
	}
	var out []model.FeeItem
	err := page(q, order, f.Limit, f.Offset).Find(&out).Error
	return out, total, err
}

/* ============ rules ============ */

func (s *gormStore) CreateRule(ctx context.Context, m *model.FeeItemRule) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) SaveRule(ctx context.Context, m *model.FeeItemRule) error {
	return dberr.Map(s.db.WithContext(ctx).Save(m).Error)
}

func (s *gormStore) GetRule(ctx context.Context, id uuid.UUID) (model.FeeItemRule, error) {
	var m model.FeeItemRule
	err := s.db.WithContext(ctx).First(&m, "fee_item_rule_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.FeeItemRule{}, "fee_item_rule_id = ?", id)
	if res.Error != nil {
		return dberr.Map(res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (s *gormStore) ListRules(ctx context.Context, f RuleFilter) ([]model.FeeItemRule, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.FeeItemRule{})
	if f.FeeItemID != nil {
		q = q.Where("fee_item_rule_fee_item_id = ?", *f.FeeItemID)
	}
	if f.ClassID != nil {
		q = q.Where("fee_item_rule_class_id = ?", *f.ClassID)
	}
	if f.TermID != nil {
		q = q.Where("fee_item_rule_term_id = ?", *f.TermID)
	}
	if f.OnlyActive {
		q = q.Where("fee_item_rule_is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := f.Order
	if order == "" {
		order = "fee_item_rule_created_at DESC"
	}
	var out []model.FeeItemRule
	err := page(q, order, f.Limit, f.Offset).Find(&out).Error
	return out, total, err
}

func (s *gormStore) ApplicableRules(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) ([]model.FeeItemRule, error) {
	q := s.db.WithContext(ctx).
		Where("fee_item_rule_fee_item_id = ? AND fee_item_rule_class_id = ?", feeItemID, classID).
		Where("fee_item_rule_is_active = ?", true)
	if termID != nil {
		q = q.Where("(fee_item_rule_term_id = ? OR fee_item_rule_term_id IS NULL)", *termID)
	} else {
		q = q.Where("fee_item_rule_term_id IS NULL")
	}

	// postgres sorts NULL first on DESC; order on the null test instead
	var out []model.FeeItemRule
	err := q.Order("(fee_item_rule_term_id IS NULL) ASC").
		Order("fee_item_rule_updated_at DESC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) RuleExists(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.FeeItemRule{}).
		Where("fee_item_rule_fee_item_id = ? AND fee_item_rule_class_id = ?", feeItemID, classID).
		Where("fee_item_rule_is_active = ?", true)
	if termID != nil {
		q = q.Where("fee_item_rule_term_id = ?", *termID)
	} else {
		q = q.Where("fee_item_rule_term_id IS NULL")
	}
	if excludeID != nil {
		q = q.Where("fee_item_rule_id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

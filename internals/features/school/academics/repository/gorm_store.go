package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/helpers/dberr"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateClass(ctx context.Context, m *model.Class) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetClass(ctx context.Context, id uuid.UUID) (model.Class, error) {
	var m model.Class
	err := s.db.WithContext(ctx).First(&m, "class_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListClasses(ctx context.Context, onlyActive bool) ([]model.Class, error) {
	q := s.db.WithContext(ctx).Model(&model.Class{})
	if onlyActive {
		q = q.Where("class_is_active = ?", true)
	}
	out := make([]model.Class, 0)
	err := q.Order("class_level ASC, class_name ASC").Find(&out).Error
	return out, err
}

func (s *gormStore) CreateSection(ctx context.Context, m *model.Section) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetSection(ctx context.Context, id uuid.UUID) (model.Section, error) {
	var m model.Section
	err := s.db.WithContext(ctx).First(&m, "section_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListSections(ctx context.Context, classID uuid.UUID) ([]model.Section, error) {
	out := make([]model.Section, 0)
	err := s.db.WithContext(ctx).
		Where("section_class_id = ?", classID).
		Order("section_name ASC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) CreateTerm(ctx context.Context, m *model.AcademicTerm) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) SaveTerm(ctx context.Context, m *model.AcademicTerm) error {
	return dberr.Map(s.db.WithContext(ctx).Save(m).Error)
}

func (s *gormStore) GetTerm(ctx context.Context, id uuid.UUID) (model.AcademicTerm, error) {
	var m model.AcademicTerm
	err := s.db.WithContext(ctx).First(&m, "academic_term_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListTerms(ctx context.Context, f TermFilter) ([]model.AcademicTerm, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.AcademicTerm{})
	if f.Year != nil {
		q = q.Where("academic_term_year = ?", *f.Year)
	}
	if f.OnlyActive {
		q = q.Where("academic_term_is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("academic_term_start_date DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []model.AcademicTerm
	err := q.Find(&out).Error
	return out, total, err
}

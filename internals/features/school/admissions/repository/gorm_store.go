package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/admissions/model"
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

/* ============ children / admissions ============ */

func (s *gormStore) CreateChild(ctx context.Context, m *model.Child) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetChild(ctx context.Context, id uuid.UUID) (model.Child, error) {
	var m model.Child
	err := s.db.WithContext(ctx).First(&m, "child_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) CreateAdmission(ctx context.Context, m *model.Admission) error {
	return dberr.Map(s.db.WithContext(ctx).Omit("Child").Create(m).Error)
}

func (s *gormStore) GetAdmission(ctx context.Context, id uuid.UUID) (model.Admission, error) {
	var m model.Admission
	err := s.db.WithContext(ctx).Preload("Child").First(&m, "admission_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListAdmissions(ctx context.Context, f AdmissionFilter) ([]model.Admission, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Admission{})
	if f.Status != nil {
		q = q.Where("admission_status = ?", *f.Status)
	}
	if kw := strings.TrimSpace(f.Search); kw != "" {
		q = q.Joins("JOIN children ON children.child_id = admissions.admission_child_id").
			Where("children.child_full_name ILIKE ?", "%"+kw+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Preload("Child").Order("admission_created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []model.Admission
	err := q.Find(&out).Error
	return out, total, err
}

func statusUpdates(to model.AdmissionStatus, remarks *string, by string, at time.Time) map[string]any {
	return map[string]any{
		"admission_status":       to,
		"admission_remarks":      remarks,
		"admission_processed_by": by,
		"admission_processed_at": at,
		"admission_updated_at":   at,
	}
}

func (s *gormStore) UpdateStatus(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Admission{}).
		Where("admission_id = ?", id).
		Updates(statusUpdates(to, remarks, by, at))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (s *gormStore) Decide(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Admission{}).
		Where("admission_id = ? AND admission_status = ?", id, model.AdmissionPending).
		Updates(statusUpdates(to, remarks, by, at))
	return res.RowsAffected == 1, res.Error
}

func (s *gormStore) LinkStudent(ctx context.Context, admissionID, studentID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&model.Admission{}).
		Where("admission_id = ?", admissionID).
		Update("admission_student_id", studentID).Error
}

/* ============ students ============ */

func (s *gormStore) NextStudentSeq(ctx context.Context, year int) (int, error) {
	var seq int
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO student_sequences (seq_year, seq_last) VALUES (?, 1)
		ON CONFLICT (seq_year) DO UPDATE SET seq_last = student_sequences.seq_last + 1
		RETURNING seq_last`, year).Scan(&seq).Error
	return seq, err
}

func (s *gormStore) Reopen(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Admission{}).
		Where("admission_id = ? AND admission_status = ?", id, model.AdmissionApproved).
		Updates(map[string]any{
			"admission_status":       model.AdmissionPending,
			"admission_remarks":      nil,
			"admission_processed_by": nil,
			"admission_processed_at": nil,
			"admission_student_id":   nil,
			"admission_updated_at":   time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (s *gormStore) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).
		Where("term_enrollment_student_id = ?", id).
		Delete(&model.TermEnrollment{}).Error; err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("student_id = ?", id).Delete(&model.Student{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateStudent(ctx context.Context, m *model.Student) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetStudent(ctx context.Context, id uuid.UUID) (model.Student, error) {
	var m model.Student
	err := s.db.WithContext(ctx).First(&m, "student_id = ?", id).Error
	return m, dberr.Map(err)
}

/* ============ term enrollments ============ */

func (s *gormStore) CreateEnrollment(ctx context.Context, m *model.TermEnrollment) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) GetEnrollmentByInvoice(ctx context.Context, invoiceID uuid.UUID) (model.TermEnrollment, error) {
	var m model.TermEnrollment
	err := s.db.WithContext(ctx).First(&m, "term_enrollment_invoice_id = ?", invoiceID).Error
	return m, dberr.Map(err)
}

func (s *gormStore) ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]model.TermEnrollment, error) {
	out := make([]model.TermEnrollment, 0)
	err := s.db.WithContext(ctx).
		Where("term_enrollment_student_id = ?", studentID).
		Order("term_enrollment_created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) SetEnrollmentInvoice(ctx context.Context, id, invoiceID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&model.TermEnrollment{}).
		Where("term_enrollment_id = ?", id).
		Update("term_enrollment_invoice_id", invoiceID).Error
}

func (s *gormStore) SetEnrollmentStatus(ctx context.Context, id uuid.UUID, to model.EnrollmentStatus) error {
	return s.db.WithContext(ctx).
		Model(&model.TermEnrollment{}).
		Where("term_enrollment_id = ?", id).
		Update("term_enrollment_status", to).Error
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/admissions/model"
)

type AdmissionFilter struct {
	Status *model.AdmissionStatus
	Search string // child name
	Limit  int
	Offset int
}

type Store interface {
	CreateChild(ctx context.Context, m *model.Child) error
	GetChild(ctx context.Context, id uuid.UUID) (model.Child, error)

	CreateAdmission(ctx context.Context, m *model.Admission) error
	// Get loads the admission with its Child.
	GetAdmission(ctx context.Context, id uuid.UUID) (model.Admission, error)
	ListAdmissions(ctx context.Context, f AdmissionFilter) ([]model.Admission, int64, error)

	// UpdateStatus overwrites status, remarks and processor whatever the current status is.
	UpdateStatus(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) error
	// Decide is UpdateStatus guarded by status = 'pending'; false when nothing changed.
	Decide(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) (bool, error)
	LinkStudent(ctx context.Context, admissionID, studentID uuid.UUID) error
	// Reopen puts an approved admission back to pending and clears the decision.
	Reopen(ctx context.Context, id uuid.UUID) (bool, error)

	// NextStudentSeq hands out 1, 2, 3... per calendar year.
	NextStudentSeq(ctx context.Context, year int) (int, error)
	CreateStudent(ctx context.Context, m *model.Student) error
	GetStudent(ctx context.Context, id uuid.UUID) (model.Student, error)
	// DeleteStudent removes the student and its term enrollments.
	DeleteStudent(ctx context.Context, id uuid.UUID) error

	CreateEnrollment(ctx context.Context, m *model.TermEnrollment) error
	GetEnrollmentByInvoice(ctx context.Context, invoiceID uuid.UUID) (model.TermEnrollment, error)
	ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]model.TermEnrollment, error)
	SetEnrollmentInvoice(ctx context.Context, id, invoiceID uuid.UUID) error
	SetEnrollmentStatus(ctx context.Context, id uuid.UUID, to model.EnrollmentStatus) error

	Transaction(ctx context.Context, fn func(Store) error) error
}

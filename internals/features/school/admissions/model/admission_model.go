// file: internals/features/school/admissions/model/admission_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionApproved AdmissionStatus = "approved"
	AdmissionRejected AdmissionStatus = "rejected"
)

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentEnrolled EnrollmentStatus = "enrolled"
)

type Child struct {
	ChildID            uuid.UUID  `json:"child_id" gorm:"column:child_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ChildFullName      string     `json:"child_full_name" gorm:"column:child_full_name;type:varchar(160);not null"`
	ChildDateOfBirth   *time.Time `json:"child_date_of_birth,omitempty" gorm:"column:child_date_of_birth;type:date"`
	ChildGuardianName  string     `json:"child_guardian_name" gorm:"column:child_guardian_name;type:varchar(160);not null"`
	ChildGuardianEmail string     `json:"child_guardian_email" gorm:"column:child_guardian_email;type:varchar(160);not null"`
	ChildGuardianPhone *string    `json:"child_guardian_phone,omitempty" gorm:"column:child_guardian_phone;type:varchar(30)"`
	ChildCreatedAt     time.Time  `json:"child_created_at" gorm:"column:child_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (Child) TableName() string { return "children" }

type Admission struct {
	AdmissionID               uuid.UUID       `json:"admission_id" gorm:"column:admission_id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdmissionChildID          uuid.UUID       `json:"admission_child_id" gorm:"column:admission_child_id;type:uuid;not null;index"`
	AdmissionPreferredClassID *uuid.UUID      `json:"admission_preferred_class_id,omitempty" gorm:"column:admission_preferred_class_id;type:uuid"`
	AdmissionStatus           AdmissionStatus `json:"admission_status" gorm:"column:admission_status;type:varchar(20);not null;default:'pending';index"`
	AdmissionRemarks          *string         `json:"admission_remarks,omitempty" gorm:"column:admission_remarks;type:text"`
	AdmissionProcessedBy      *string         `json:"admission_processed_by,omitempty" gorm:"column:admission_processed_by;type:varchar(120)"`
	AdmissionProcessedAt      *time.Time      `json:"admission_processed_at,omitempty" gorm:"column:admission_processed_at;type:timestamptz"`
	AdmissionStudentID        *uuid.UUID      `json:"admission_student_id,omitempty" gorm:"column:admission_student_id;type:uuid"`
	AdmissionCreatedAt        time.Time       `json:"admission_created_at" gorm:"column:admission_created_at;type:timestamptz;not null;autoCreateTime"`
	AdmissionUpdatedAt        time.Time       `json:"admission_updated_at" gorm:"column:admission_updated_at;type:timestamptz;not null;autoUpdateTime"`

	Child *Child `json:"child,omitempty" gorm:"foreignKey:AdmissionChildID;references:ChildID"`
}

func (Admission) TableName() string { return "admissions" }

type Student struct {
	StudentID          uuid.UUID  `json:"student_id" gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentNo          string     `json:"student_no" gorm:"column:student_no;type:varchar(20);not null;uniqueIndex:uq_students_no"`
	StudentChildID     uuid.UUID  `json:"student_child_id" gorm:"column:student_child_id;type:uuid;not null"`
	StudentClassID     uuid.UUID  `json:"student_class_id" gorm:"column:student_class_id;type:uuid;not null"`
	StudentSectionID   *uuid.UUID `json:"student_section_id,omitempty" gorm:"column:student_section_id;type:uuid"`
	StudentAdmissionID uuid.UUID  `json:"student_admission_id" gorm:"column:student_admission_id;type:uuid;not null;uniqueIndex:uq_students_admission"`
	StudentCreatedAt   time.Time  `json:"student_created_at" gorm:"column:student_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (Student) TableName() string { return "students" }

type TermEnrollment struct {
	TermEnrollmentID        uuid.UUID        `json:"term_enrollment_id" gorm:"column:term_enrollment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	TermEnrollmentStudentID uuid.UUID        `json:"term_enrollment_student_id" gorm:"column:term_enrollment_student_id;type:uuid;not null;uniqueIndex:uq_term_enrollments,priority:1"`
	TermEnrollmentTermID    uuid.UUID        `json:"term_enrollment_term_id" gorm:"column:term_enrollment_term_id;type:uuid;not null;uniqueIndex:uq_term_enrollments,priority:2"`
	TermEnrollmentInvoiceID *uuid.UUID       `json:"term_enrollment_invoice_id,omitempty" gorm:"column:term_enrollment_invoice_id;type:uuid;index"`
	TermEnrollmentStatus    EnrollmentStatus `json:"term_enrollment_status" gorm:"column:term_enrollment_status;type:varchar(20);not null;default:'pending'"`
	TermEnrollmentCreatedAt time.Time        `json:"term_enrollment_created_at" gorm:"column:term_enrollment_created_at;type:timestamptz;not null;autoCreateTime"`
	TermEnrollmentUpdatedAt time.Time        `json:"term_enrollment_updated_at" gorm:"column:term_enrollment_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (TermEnrollment) TableName() string { return "term_enrollments" }

// StudentNo formats STU<year><6-digit sequence>.
func StudentNo(year, seq int) string {
	return fmt.Sprintf("STU%04d%06d", year, seq)
}

// StudentSequence is the per-year counter behind student numbers.
type StudentSequence struct {
	SeqYear int `gorm:"column:seq_year;primaryKey;autoIncrement:false"`
	SeqLast int `gorm:"column:seq_last;not null;default:0"`
}

func (StudentSequence) TableName() string { return "student_sequences" }

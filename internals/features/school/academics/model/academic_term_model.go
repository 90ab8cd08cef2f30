// file: internals/features/school/academics/model/academic_term_model.go
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTermDates = errors.New("academic_term_end_date must be >= academic_term_start_date")

type AcademicTerm struct {
	AcademicTermID uuid.UUID `json:"academic_term_id" gorm:"column:academic_term_id;type:uuid;default:gen_random_uuid();primaryKey"`
	// "Term 1" | "Term 2" | "Term 3"
	AcademicTermName string `json:"academic_term_name" gorm:"column:academic_term_name;type:varchar(60);not null;uniqueIndex:uq_terms_year_name,priority:2"`
	AcademicTermYear int    `json:"academic_term_year" gorm:"column:academic_term_year;not null;uniqueIndex:uq_terms_year_name,priority:1"`

	AcademicTermStartDate time.Time `json:"academic_term_start_date" gorm:"column:academic_term_start_date;type:date;not null"`
	AcademicTermEndDate   time.Time `json:"academic_term_end_date" gorm:"column:academic_term_end_date;type:date;not null"`
	AcademicTermIsActive  bool      `json:"academic_term_is_active" gorm:"column:academic_term_is_active;not null;default:true"`

	AcademicTermCreatedAt time.Time      `json:"academic_term_created_at" gorm:"column:academic_term_created_at;type:timestamptz;not null;autoCreateTime"`
	AcademicTermUpdatedAt time.Time      `json:"academic_term_updated_at" gorm:"column:academic_term_updated_at;type:timestamptz;not null;autoUpdateTime"`
	AcademicTermDeletedAt gorm.DeletedAt `json:"-" gorm:"column:academic_term_deleted_at;type:timestamptz;index"`
}

func (AcademicTerm) TableName() string { return "academic_terms" }

// Normalize trims the name and checks the date range. Also runs as a gorm hook.
func (m *AcademicTerm) Normalize() error {
	m.AcademicTermName = strings.TrimSpace(m.AcademicTermName)
	if m.AcademicTermEndDate.Before(m.AcademicTermStartDate) {
		return ErrTermDates
	}
	return nil
}

func (m *AcademicTerm) BeforeSave(tx *gorm.DB) error {
	return m.Normalize()
}

// Contains reports whether day falls inside [start, end].
func (m AcademicTerm) Contains(day time.Time) bool {
	return !day.Before(m.AcademicTermStartDate) && !day.After(m.AcademicTermEndDate)
}

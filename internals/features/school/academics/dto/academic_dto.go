package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/academics/model"
)

const dateLayout = "2006-01-02"

type CreateClassDTO struct {
	ClassName  string `json:"class_name" validate:"required,max=80"`
	ClassLevel int    `json:"class_level" validate:"gte=0,lte=20"`
}

func (d CreateClassDTO) ToModel() model.Class {
	return model.Class{ClassName: d.ClassName, ClassLevel: d.ClassLevel, ClassIsActive: true}
}

type CreateSectionDTO struct {
	SectionName     string `json:"section_name" validate:"required,max=40"`
	SectionCapacity *int   `json:"section_capacity,omitempty" validate:"omitempty,gt=0"`
}

func (d CreateSectionDTO) ToModel(classID uuid.UUID) model.Section {
	return model.Section{SectionClassID: classID, SectionName: d.SectionName, SectionCapacity: d.SectionCapacity}
}

type CreateTermDTO struct {
	AcademicTermName      string `json:"academic_term_name" validate:"required,max=60"`
	AcademicTermYear      int    `json:"academic_term_year" validate:"required,gte=2000,lte=2100"`
	AcademicTermStartDate string `json:"academic_term_start_date" validate:"required,datetime=2006-01-02"`
	AcademicTermEndDate   string `json:"academic_term_end_date" validate:"required,datetime=2006-01-02"`
	AcademicTermIsActive  *bool  `json:"academic_term_is_active,omitempty"`
}

func (d CreateTermDTO) ToModel() (model.AcademicTerm, error) {
	start, err := time.Parse(dateLayout, d.AcademicTermStartDate)
	if err != nil {
		return model.AcademicTerm{}, err
	}
	end, err := time.Parse(dateLayout, d.AcademicTermEndDate)
	if err != nil {
		return model.AcademicTerm{}, err
	}
	active := true
	if d.AcademicTermIsActive != nil {
		active = *d.AcademicTermIsActive
	}
	return model.AcademicTerm{
		AcademicTermName:      d.AcademicTermName,
		AcademicTermYear:      d.AcademicTermYear,
		AcademicTermStartDate: start,
		AcademicTermEndDate:   end,
		AcademicTermIsActive:  active,
	}, nil
}

type UpdateTermDTO struct {
	AcademicTermName     *string `json:"academic_term_name,omitempty" validate:"omitempty,max=60"`
	AcademicTermEndDate  *string `json:"academic_term_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AcademicTermIsActive *bool   `json:"academic_term_is_active,omitempty"`
}

// Apply; the end date was validated by the datetime tag.
func (d UpdateTermDTO) Apply(m *model.AcademicTerm) {
	if d.AcademicTermName != nil {
		m.AcademicTermName = *d.AcademicTermName
	}
	if d.AcademicTermEndDate != nil {
		if end, err := time.Parse(dateLayout, *d.AcademicTermEndDate); err == nil {
			m.AcademicTermEndDate = end
		}
	}
	if d.AcademicTermIsActive != nil {
		m.AcademicTermIsActive = *d.AcademicTermIsActive
	}
}

type TermResponse struct {
	AcademicTermID        uuid.UUID `json:"academic_term_id"`
	AcademicTermName      string    `json:"academic_term_name"`
	AcademicTermYear      int       `json:"academic_term_year"`
	AcademicTermStartDate string    `json:"academic_term_start_date"`
	AcademicTermEndDate   string    `json:"academic_term_end_date"`
	AcademicTermIsActive  bool      `json:"academic_term_is_active"`
}

func ToTermResponse(m model.AcademicTerm) TermResponse {
	return TermResponse{
		AcademicTermID:        m.AcademicTermID,
		AcademicTermName:      m.AcademicTermName,
		AcademicTermYear:      m.AcademicTermYear,
		AcademicTermStartDate: m.AcademicTermStartDate.Format(dateLayout),
		AcademicTermEndDate:   m.AcademicTermEndDate.Format(dateLayout),
		AcademicTermIsActive:  m.AcademicTermIsActive,
	}
}

func ToTermResponses(rows []model.AcademicTerm) []TermResponse {
	out := make([]TermResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToTermResponse(r))
	}
	return out
}

// file: internals/features/finance/installments/dto/installment_plan_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/installments/model"
	"schoolfee_backend/internals/features/finance/installments/service"
)

type StepDTO struct {
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0,lte=100"`
	Interval   string          `json:"interval" validate:"required,max=40"`
}

type InstallmentPlanCreateDTO struct {
	InstallmentPlanName        string    `json:"installment_plan_name" validate:"required,min=2,max=120"`
	InstallmentPlanDescription *string   `json:"installment_plan_description,omitempty"`
	InstallmentPlanIsActive    *bool     `json:"installment_plan_is_active,omitempty"`
	InstallmentPlanSteps       []StepDTO `json:"installment_plan_steps" validate:"required,min=1,dive"`
}

type InstallmentPlanUpdateDTO struct {
	InstallmentPlanName        *string    `json:"installment_plan_name,omitempty" validate:"omitempty,min=2,max=120"`
	InstallmentPlanDescription *string    `json:"installment_plan_description,omitempty"`
	InstallmentPlanIsActive    *bool      `json:"installment_plan_is_active,omitempty"`
	InstallmentPlanSteps       *[]StepDTO `json:"installment_plan_steps,omitempty" validate:"omitempty,min=1,dive"`
}

// ScheduleRequestDTO: anchor_date (YYYY-MM-DD) pins due dates; omitted → today.
type ScheduleRequestDTO struct {
	Total      decimal.Decimal `json:"total" validate:"gte=0"`
	AnchorDate *string         `json:"anchor_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (in ScheduleRequestDTO) Anchor() (*time.Time, error) {
	if in.AnchorDate == nil || strings.TrimSpace(*in.AnchorDate) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*in.AnchorDate))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type InstallmentPlanResponse struct {
	InstallmentPlanID           uuid.UUID               `json:"installment_plan_id"`
	InstallmentPlanName         string                  `json:"installment_plan_name"`
	InstallmentPlanDescription  *string                 `json:"installment_plan_description,omitempty"`
	InstallmentPlanIsActive     bool                    `json:"installment_plan_is_active"`
	InstallmentPlanSteps        []model.InstallmentStep `json:"installment_plan_steps"`
	InstallmentPlanPercentTotal decimal.Decimal         `json:"installment_plan_percent_total"`
	InstallmentPlanCreatedAt    time.Time               `json:"installment_plan_created_at"`
	InstallmentPlanUpdatedAt    time.Time               `json:"installment_plan_updated_at"`
}

type ScheduleResponse struct {
	InstallmentPlanID uuid.UUID               `json:"installment_plan_id"`
	Total             decimal.Decimal         `json:"total"`
	ScheduledTotal    decimal.Decimal         `json:"scheduled_total"`
	Entries           []service.ScheduleEntry `json:"entries"`
}

func toSteps(in []StepDTO) []model.InstallmentStep {
	out := make([]model.InstallmentStep, 0, len(in))
	for _, s := range in {
		out = append(out, model.InstallmentStep{Percentage: s.Percentage, Interval: s.Interval})
	}
	return out
}

func (in InstallmentPlanCreateDTO) ToModel() model.InstallmentPlan {
	active := true
	if in.InstallmentPlanIsActive != nil {
		active = *in.InstallmentPlanIsActive
	}
	m := model.InstallmentPlan{
		InstallmentPlanName:        strings.TrimSpace(in.InstallmentPlanName),
		InstallmentPlanDescription: in.InstallmentPlanDescription,
		InstallmentPlanIsActive:    active,
	}
	m.SetSteps(toSteps(in.InstallmentPlanSteps))
	return m
}

func (in InstallmentPlanUpdateDTO) Apply(m *model.InstallmentPlan) {
	if in.InstallmentPlanName != nil {
		m.InstallmentPlanName = strings.TrimSpace(*in.InstallmentPlanName)
	}
	if in.InstallmentPlanDescription != nil {
		m.InstallmentPlanDescription = in.InstallmentPlanDescription
	}
	if in.InstallmentPlanIsActive != nil {
		m.InstallmentPlanIsActive = *in.InstallmentPlanIsActive
	}
	if in.InstallmentPlanSteps != nil {
		m.SetSteps(toSteps(*in.InstallmentPlanSteps))
	}
}

func ToInstallmentPlanResponse(m model.InstallmentPlan) InstallmentPlanResponse {
	steps := m.Steps()
	if steps == nil {
		steps = []model.InstallmentStep{}
	}
	return InstallmentPlanResponse{
		InstallmentPlanID:           m.InstallmentPlanID,
		InstallmentPlanName:         m.InstallmentPlanName,
		InstallmentPlanDescription:  m.InstallmentPlanDescription,
		InstallmentPlanIsActive:     m.InstallmentPlanIsActive,
		InstallmentPlanSteps:        steps,
		InstallmentPlanPercentTotal: m.PercentTotal(),
		InstallmentPlanCreatedAt:    m.InstallmentPlanCreatedAt,
		InstallmentPlanUpdatedAt:    m.InstallmentPlanUpdatedAt,
	}
}

func ToInstallmentPlanResponses(rows []model.InstallmentPlan) []InstallmentPlanResponse {
	out := make([]InstallmentPlanResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToInstallmentPlanResponse(r))
	}
	return out
}

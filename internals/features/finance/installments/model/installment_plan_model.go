// file: internals/features/finance/installments/model/installment_plan_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Interval tags understood by the calculator.
const (
	IntervalTermStart = "term_start"
	IntervalMidTerm   = "mid_term"
	IntervalEndTerm   = "end_term"
	IntervalMonth1    = "month_1"
	IntervalMonth2    = "month_2"
	IntervalMonth3    = "month_3"
)

// InstallmentStep is one slice of a plan: pay Percentage of the total at Interval.
type InstallmentStep struct {
	Percentage decimal.Decimal `json:"percentage"`
	Interval   string          `json:"interval"`
}

type InstallmentPlan struct {
	InstallmentPlanID          uuid.UUID `json:"installment_plan_id" gorm:"column:installment_plan_id;type:uuid;default:gen_random_uuid();primaryKey"`
	InstallmentPlanName        string    `json:"installment_plan_name" gorm:"column:installment_plan_name;type:varchar(120);not null"`
	InstallmentPlanDescription *string   `json:"installment_plan_description,omitempty" gorm:"column:installment_plan_description;type:text"`
	InstallmentPlanIsActive    bool      `json:"installment_plan_is_active" gorm:"column:installment_plan_is_active;not null;default:true"`

	// ordered; stored as one JSONB array of {percentage, interval}
	InstallmentPlanSteps datatypes.JSONType[[]InstallmentStep] `json:"installment_plan_steps" gorm:"column:installment_plan_steps;type:jsonb;not null"`

	InstallmentPlanCreatedAt time.Time      `json:"installment_plan_created_at" gorm:"column:installment_plan_created_at;type:timestamptz;not null;autoCreateTime"`
	InstallmentPlanUpdatedAt time.Time      `json:"installment_plan_updated_at" gorm:"column:installment_plan_updated_at;type:timestamptz;not null;autoUpdateTime"`
	InstallmentPlanDeletedAt gorm.DeletedAt `json:"installment_plan_deleted_at,omitempty" gorm:"column:installment_plan_deleted_at;type:timestamptz;index"`
}

func (InstallmentPlan) TableName() string { return "installment_plans" }

func (p InstallmentPlan) Steps() []InstallmentStep {
	return p.InstallmentPlanSteps.Data()
}

func (p *InstallmentPlan) SetSteps(steps []InstallmentStep) {
	p.InstallmentPlanSteps = datatypes.NewJSONType(steps)
}

// PercentTotal sums the step percentages. Plans are not required to total 100.
func (p InstallmentPlan) PercentTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range p.Steps() {
		sum = sum.Add(s.Percentage)
	}
	return sum
}

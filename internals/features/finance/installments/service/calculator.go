package service

import (
	"time"

	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/installments/model"
)

var hundred = decimal.NewFromInt(100)

// ScheduleEntry is one computed installment.
type ScheduleEntry struct {
	Position   int             `json:"position"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	Interval   string          `json:"interval"`
	DueDate    time.Time       `json:"due_date"`
}

// DueOffset moves base by the interval tag. Unknown tags stay at base.
func DueOffset(base time.Time, interval string) time.Time {
	switch interval {
	case model.IntervalTermStart:
		return base
	case model.IntervalMidTerm:
		return base.AddDate(0, 0, 6*7)
	case model.IntervalEndTerm:
		return base.AddDate(0, 0, 12*7)
	case model.IntervalMonth1:
		return base.AddDate(0, 1, 0)
	case model.IntervalMonth2:
		return base.AddDate(0, 2, 0)
	case model.IntervalMonth3:
		return base.AddDate(0, 3, 0)
	}
	return base
}

// InstallmentAmount is total × pct / 100 rounded half away from zero to cents.
func InstallmentAmount(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(hundred).Round(2)
}

// Calculator turns a plan and a total into dated installments.
// Each amount is rounded on its own; the last step does not absorb the remainder,
// so the entries may not add up to total exactly.
type Calculator struct {
	Now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{Now: time.Now}
}

func (c *Calculator) Schedule(steps []model.InstallmentStep, total decimal.Decimal, anchor *time.Time) []ScheduleEntry {
	base := c.Now()
	if anchor != nil {
		base = *anchor
	}
	out := make([]ScheduleEntry, 0, len(steps))
	for i, st := range steps {
		out = append(out, ScheduleEntry{
			Position:   i + 1,
			Percentage: st.Percentage,
			Amount:     InstallmentAmount(total, st.Percentage),
			Interval:   st.Interval,
			DueDate:    DueOffset(base, st.Interval),
		})
	}
	return out
}

// ScheduleTotal sums the computed amounts.
func ScheduleTotal(entries []ScheduleEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

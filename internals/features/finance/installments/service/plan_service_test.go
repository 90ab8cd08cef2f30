package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	"schoolfee_backend/internals/features/finance/installments/model"
	"schoolfee_backend/internals/features/finance/installments/service"
)

func newPlan(name string, active bool, st ...model.InstallmentStep) model.InstallmentPlan {
	p := model.InstallmentPlan{InstallmentPlanName: name, InstallmentPlanIsActive: active}
	p.SetSteps(st)
	return p
}

func step(pct, interval string) model.InstallmentStep {
	return model.InstallmentStep{Percentage: decimal.RequireFromString(pct), Interval: interval}
}

func TestPlanService_CreateAndSchedule(t *testing.T) {
	ctx := context.Background()
	svc := service.NewService(inmem.NewInstallmentStore(inmem.New()))
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	svc.Calc.Now = func() time.Time { return now }

	p := newPlan("Three terms", true, step("40", " Term_Start "), step("30", "mid_term"), step("30", "end_term"))
	require.NoError(t, svc.Create(ctx, &p))
	assert.Equal(t, "term_start", p.Steps()[0].Interval)
	assert.True(t, p.PercentTotal().Equal(decimal.NewFromInt(100)))

	entries, err := svc.ComputeSchedule(ctx, p.InstallmentPlanID, decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "600", entries[0].Amount.String())
	assert.Equal(t, "450", entries[1].Amount.String())
	assert.True(t, now.AddDate(0, 0, 84).Equal(entries[2].DueDate))
}

func TestPlanService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewService(inmem.NewInstallmentStore(inmem.New()))

	empty := newPlan("Empty", true)
	assert.ErrorIs(t, svc.Create(ctx, &empty), service.ErrNoSteps)

	over := newPlan("Over", true, step("120", "term_start"))
	assert.ErrorIs(t, svc.Create(ctx, &over), service.ErrPercentageRange)

	neg := newPlan("Neg", true, step("-1", "term_start"))
	assert.ErrorIs(t, svc.Create(ctx, &neg), service.ErrPercentageRange)

	loose := newPlan("Loose", true, step("50", "term_start"), step("30", "weekly"))
	assert.NoError(t, svc.Create(ctx, &loose), "sum != 100 and unknown tags are tolerated")
	assert.Equal(t, "80", loose.PercentTotal().String())
}

func TestPlanService_ScheduleErrors(t *testing.T) {
	ctx := context.Background()
	svc := service.NewService(inmem.NewInstallmentStore(inmem.New()))

	_, err := svc.ComputeSchedule(ctx, uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, service.ErrPlanNotFound)

	p := newPlan("Paused", false, step("100", "term_start"))
	require.NoError(t, svc.Create(ctx, &p))
	_, err = svc.ComputeSchedule(ctx, p.InstallmentPlanID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, service.ErrPlanInactive)

	updated, err := svc.Update(ctx, p.InstallmentPlanID, func(m *model.InstallmentPlan) { m.InstallmentPlanIsActive = true })
	require.NoError(t, err)
	assert.True(t, updated.InstallmentPlanIsActive)

	_, err = svc.ComputeSchedule(ctx, p.InstallmentPlanID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, service.ErrNegativeTotal)

	require.NoError(t, svc.Delete(ctx, p.InstallmentPlanID))
	assert.ErrorIs(t, svc.Delete(ctx, p.InstallmentPlanID), service.ErrPlanNotFound)
}

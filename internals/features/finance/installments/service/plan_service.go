package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/installments/model"
	"schoolfee_backend/internals/features/finance/installments/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

var (
	ErrPlanNotFound    = errors.New("installment plan not found")
	ErrPlanInactive    = errors.New("installment plan is inactive")
	ErrNoSteps         = errors.New("installment plan needs at least one step")
	ErrPercentageRange = errors.New("installment percentage must be between 0 and 100")
	ErrNegativeTotal   = errors.New("total must not be negative")
)

var knownIntervals = map[string]bool{
	model.IntervalTermStart: true,
	model.IntervalMidTerm:   true,
	model.IntervalEndTerm:   true,
	model.IntervalMonth1:    true,
	model.IntervalMonth2:    true,
	model.IntervalMonth3:    true,
}

// ValidatePlan checks each step. The percentage sum is not enforced and unknown
// interval tags are accepted (they fall due at the anchor date).
func ValidatePlan(steps []model.InstallmentStep) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	for i, s := range steps {
		if s.Percentage.IsNegative() || s.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("step %d: %w", i+1, ErrPercentageRange)
		}
	}
	return nil
}

type Service struct {
	store repository.Store
	Calc  *Calculator
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, Calc: NewCalculator()}
}

func normalizeSteps(steps []model.InstallmentStep) []model.InstallmentStep {
	out := make([]model.InstallmentStep, len(steps))
	for i, s := range steps {
		out[i] = model.InstallmentStep{Percentage: s.Percentage, Interval: strings.ToLower(strings.TrimSpace(s.Interval))}
	}
	return out
}

func warnPlan(p model.InstallmentPlan) {
	if total := p.PercentTotal(); !total.Equal(hundred) {
		log.Printf("[WARN] installment plan %q percentages total %s, not 100", p.InstallmentPlanName, total.String())
	}
	for _, st := range p.Steps() {
		if !knownIntervals[st.Interval] {
			log.Printf("[WARN] installment plan %q: unknown interval %q falls due at the anchor date", p.InstallmentPlanName, st.Interval)
		}
	}
}

func (s *Service) Create(ctx context.Context, m *model.InstallmentPlan) error {
	steps := normalizeSteps(m.Steps())
	if err := ValidatePlan(steps); err != nil {
		return err
	}
	m.SetSteps(steps)
	m.InstallmentPlanName = strings.TrimSpace(m.InstallmentPlanName)
	warnPlan(*m)
	return s.store.Create(ctx, m)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, apply func(*model.InstallmentPlan)) (model.InstallmentPlan, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return m, err
	}
	apply(&m)
	steps := normalizeSteps(m.Steps())
	if err := ValidatePlan(steps); err != nil {
		return m, err
	}
	m.SetSteps(steps)
	warnPlan(m)
	if err := s.store.Save(ctx, &m); err != nil {
		return m, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.InstallmentPlan, error) {
	m, err := s.store.Get(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return m, ErrPlanNotFound
	}
	return m, err
}

func (s *Service) List(ctx context.Context, f repository.PlanFilter) ([]model.InstallmentPlan, int64, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// ComputeSchedule dates installments from the calculator clock.
func (s *Service) ComputeSchedule(ctx context.Context, planID uuid.UUID, total decimal.Decimal) ([]ScheduleEntry, error) {
	return s.ComputeScheduleAt(ctx, planID, total, nil)
}

// ComputeScheduleAt dates installments from anchor, or from the clock when anchor is nil.
func (s *Service) ComputeScheduleAt(ctx context.Context, planID uuid.UUID, total decimal.Decimal, anchor *time.Time) ([]ScheduleEntry, error) {
	if total.IsNegative() {
		return nil, ErrNegativeTotal
	}
	p, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.InstallmentPlanIsActive {
		return nil, ErrPlanInactive
	}
	return s.Calc.Schedule(p.Steps(), total, anchor), nil
}

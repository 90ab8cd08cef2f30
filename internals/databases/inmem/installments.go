package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/installments/model"
	"schoolfee_backend/internals/features/finance/installments/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type planStore struct{ view }

func NewInstallmentStore(db *DB) repository.Store {
	return &planStore{view{db: db}}
}

func (s *planStore) Create(ctx context.Context, m *model.InstallmentPlan) error {
	defer s.lock()()
	m.InstallmentPlanID = newID(m.InstallmentPlanID)
	now := s.db.now()
	m.InstallmentPlanCreatedAt, m.InstallmentPlanUpdatedAt = now, now
	s.db.t.plans[m.InstallmentPlanID] = *m
	return nil
}

func (s *planStore) Save(ctx context.Context, m *model.InstallmentPlan) error {
	defer s.lock()()
	if _, ok := s.db.t.plans[m.InstallmentPlanID]; !ok {
		return dberr.ErrNotFound
	}
	m.InstallmentPlanUpdatedAt = s.db.now()
	s.db.t.plans[m.InstallmentPlanID] = *m
	return nil
}

func (s *planStore) Get(ctx context.Context, id uuid.UUID) (model.InstallmentPlan, error) {
	defer s.rlock()()
	p, ok := s.db.t.plans[id]
	if !ok {
		return model.InstallmentPlan{}, dberr.ErrNotFound
	}
	return p, nil
}

func (s *planStore) List(ctx context.Context, f repository.PlanFilter) ([]model.InstallmentPlan, int64, error) {
	defer s.rlock()()
	rows := make([]model.InstallmentPlan, 0, len(s.db.t.plans))
	for _, p := range s.db.t.plans {
		if f.OnlyActive && !p.InstallmentPlanIsActive {
			continue
		}
		if f.Search != "" && !containsFold(p.InstallmentPlanName, f.Search) {
			continue
		}
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].InstallmentPlanName < rows[j].InstallmentPlanName })
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

func (s *planStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.db.t.plans[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(s.db.t.plans, id)
	return nil
}

package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/fees/model"
	"schoolfee_backend/internals/features/finance/fees/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type feeStore struct{ view }

func NewFeeStore(db *DB) repository.Store {
	return &feeStore{view{db: db}}
}

func (s *feeStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.tx(func(v view) error { return fn(&feeStore{v}) })
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

/* ============ groups ============ */

func (s *feeStore) groupNameTaken(name string, except uuid.UUID) bool {
	for _, g := range s.db.t.feeGroups {
		if g.FeeGroupID != except && strings.EqualFold(g.FeeGroupName, name) {
			return true
		}
	}
	return false
}

func (s *feeStore) CreateGroup(ctx context.Context, m *model.FeeGroup) error {
	defer s.lock()()
	if s.groupNameTaken(m.FeeGroupName, uuid.Nil) {
		return dberr.ErrDuplicate
	}
	m.FeeGroupID = newID(m.FeeGroupID)
	now := s.db.now()
	m.FeeGroupCreatedAt, m.FeeGroupUpdatedAt = now, now
	s.db.t.feeGroups[m.FeeGroupID] = *m
	return nil
}

func (s *feeStore) SaveGroup(ctx context.Context, m *model.FeeGroup) error {
	defer s.lock()()
	if _, ok := s.db.t.feeGroups[m.FeeGroupID]; !ok {
		return dberr.ErrNotFound
	}
	if s.groupNameTaken(m.FeeGroupName, m.FeeGroupID) {
		return dberr.ErrDuplicate
	}
	m.FeeGroupUpdatedAt = s.db.now()
	s.db.t.feeGroups[m.FeeGroupID] = *m
	return nil
}

func (s *feeStore) GetGroup(ctx context.Context, id uuid.UUID) (model.FeeGroup, error) {
	defer s.rlock()()
	g, ok := s.db.t.feeGroups[id]
	if !ok {
		return model.FeeGroup{}, dberr.ErrNotFound
	}
	return g, nil
}

func (s *feeStore) ListGroups(ctx context.Context, f repository.GroupFilter) ([]model.FeeGroup, int64, error) {
	defer s.rlock()()
	rows := make([]model.FeeGroup, 0, len(s.db.t.feeGroups))
	for _, g := range s.db.t.feeGroups {
		if f.OnlyActive && !g.FeeGroupIsActive {
			continue
		}
		if f.Search != "" && !containsFold(g.FeeGroupName, f.Search) {
			continue
		}
		rows = append(rows, g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FeeGroupDisplayOrder != rows[j].FeeGroupDisplayOrder {
			return rows[i].FeeGroupDisplayOrder < rows[j].FeeGroupDisplayOrder
		}
		return rows[i].FeeGroupName < rows[j].FeeGroupName
	})
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

/* ============ items ============ */

func (s *feeStore) CreateItem(ctx context.Context, m *model.FeeItem) error {
	defer s.lock()()
	if _, ok := s.db.t.feeGroups[m.FeeItemGroupID]; !ok {
		return dberr.ErrNotFound
	}
	m.FeeItemID = newID(m.FeeItemID)
	now := s.db.now()
	m.FeeItemCreatedAt, m.FeeItemUpdatedAt = now, now
	stored := *m
	stored.Group = nil
	s.db.t.feeItems[m.FeeItemID] = stored
	return nil
}

func (s *feeStore) SaveItem(ctx context.Context, m *model.FeeItem) error {
	defer s.lock()()
	if _, ok := s.db.t.feeItems[m.FeeItemID]; !ok {
		return dberr.ErrNotFound
	}
	m.FeeItemUpdatedAt = s.db.now()
	stored := *m
	stored.Group = nil
	s.db.t.feeItems[m.FeeItemID] = stored
	return nil
}

func (s *feeStore) GetItem(ctx context.Context, id uuid.UUID) (model.FeeItem, error) {
	defer s.rlock()()
	it, ok := s.db.t.feeItems[id]
	if !ok {
		return model.FeeItem{}, dberr.ErrNotFound
	}
	if g, ok := s.db.t.feeGroups[it.FeeItemGroupID]; ok {
		it.Group = &g
	}
	return it, nil
}

func (s *feeStore) ListItems(ctx context.Context, f repository.ItemFilter) ([]model.FeeItem, int64, error) {
	defer s.rlock()()
	rows := make([]model.FeeItem, 0, len(s.db.t.feeItems))
	for _, it := range s.db.t.feeItems {
		if f.GroupID != nil && it.FeeItemGroupID != *f.GroupID {
			continue
		}
		if f.IsOptional != nil && it.FeeItemIsOptional != *f.IsOptional {
			continue
		}
		if f.OnlyActive && !it.FeeItemIsActive {
			continue
		}
		if f.Search != "" && !containsFold(it.FeeItemName, f.Search) {
			continue
		}
		rows = append(rows, it)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FeeItemName != rows[j].FeeItemName {
			return rows[i].FeeItemName < rows[j].FeeItemName
		}
		return rows[i].FeeItemCreatedAt.Before(rows[j].FeeItemCreatedAt)
	})
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

/* ============ rules ============ */

// activeScopeTaken mirrors the partial unique index on active (item, class, term).
func (s *feeStore) activeScopeTaken(m model.FeeItemRule) bool {
	if !m.FeeItemRuleIsActive {
		return false
	}
	for _, r := range s.db.t.feeRules {
		if r.FeeItemRuleID != m.FeeItemRuleID && r.FeeItemRuleIsActive && r.SameScope(m) {
			return true
		}
	}
	return false
}

func (s *feeStore) CreateRule(ctx context.Context, m *model.FeeItemRule) error {
	defer s.lock()()
	m.FeeItemRuleID = newID(m.FeeItemRuleID)
	if s.activeScopeTaken(*m) {
		return dberr.ErrDuplicate
	}
	now := s.db.now()
	m.FeeItemRuleCreatedAt, m.FeeItemRuleUpdatedAt = now, now
	s.db.t.feeRules[m.FeeItemRuleID] = *m
	return nil
}

func (s *feeStore) SaveRule(ctx context.Context, m *model.FeeItemRule) error {
	defer s.lock()()
	if _, ok := s.db.t.feeRules[m.FeeItemRuleID]; !ok {
		return dberr.ErrNotFound
	}
	if s.activeScopeTaken(*m) {
		return dberr.ErrDuplicate
	}
	m.FeeItemRuleUpdatedAt = s.db.now()
	s.db.t.feeRules[m.FeeItemRuleID] = *m
	return nil
}

func (s *feeStore) GetRule(ctx context.Context, id uuid.UUID) (model.FeeItemRule, error) {
	defer s.rlock()()
	r, ok := s.db.t.feeRules[id]
	if !ok {
		return model.FeeItemRule{}, dberr.ErrNotFound
	}
	return r, nil
}

func (s *feeStore) ListRules(ctx context.Context, f repository.RuleFilter) ([]model.FeeItemRule, int64, error) {
	defer s.rlock()()
	rows := make([]model.FeeItemRule, 0, len(s.db.t.feeRules))
	for _, r := range s.db.t.feeRules {
		if f.FeeItemID != nil && r.FeeItemRuleFeeItemID != *f.FeeItemID {
			continue
		}
		if f.ClassID != nil && r.FeeItemRuleClassID != *f.ClassID {
			continue
		}
		if f.TermID != nil && (r.FeeItemRuleTermID == nil || *r.FeeItemRuleTermID != *f.TermID) {
			continue
		}
		if f.OnlyActive && !r.FeeItemRuleIsActive {
			continue
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].FeeItemRuleUpdatedAt.After(rows[j].FeeItemRuleUpdatedAt) })
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

func (s *feeStore) DeleteRule(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.db.t.feeRules[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(s.db.t.feeRules, id)
	return nil
}

func (s *feeStore) ApplicableRules(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) ([]model.FeeItemRule, error) {
	defer s.rlock()()
	out := make([]model.FeeItemRule, 0, 2)
	for _, r := range s.db.t.feeRules {
		if !r.FeeItemRuleIsActive || r.FeeItemRuleFeeItemID != feeItemID || r.FeeItemRuleClassID != classID {
			continue
		}
		if r.FeeItemRuleTermID == nil || (termID != nil && *r.FeeItemRuleTermID == *termID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].FeeItemRuleTermID != nil, out[j].FeeItemRuleTermID != nil
		if ti != tj {
			return ti
		}
		return out[i].FeeItemRuleUpdatedAt.After(out[j].FeeItemRuleUpdatedAt)
	})
	return out, nil
}

func (s *feeStore) RuleExists(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	defer s.rlock()()
	probe := model.FeeItemRule{FeeItemRuleFeeItemID: feeItemID, FeeItemRuleClassID: classID, FeeItemRuleTermID: termID}
	for _, r := range s.db.t.feeRules {
		if excludeID != nil && r.FeeItemRuleID == *excludeID {
			continue
		}
		if r.FeeItemRuleIsActive && r.SameScope(probe) {
			return true, nil
		}
	}
	return false, nil
}

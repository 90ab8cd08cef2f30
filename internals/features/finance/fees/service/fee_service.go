package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/fees/model"
	"schoolfee_backend/internals/features/finance/fees/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

var (
	ErrGroupNotFound    = errors.New("fee group not found")
	ErrItemNotFound     = errors.New("fee item not found")
	ErrRuleNotFound     = errors.New("fee item rule not found")
	ErrDuplicateGroup   = errors.New("a fee group with this name already exists")
	ErrDuplicateRule    = errors.New("an active rule already exists for this fee item, class and term")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidFrequency = errors.New("frequency must be one of termly, annual, monthly, once")
	ErrClassNotFound    = errors.New("class not found")
	ErrTermNotFound     = errors.New("academic term not found")
)

// ReferenceChecker verifies class/term ids against the academics data. Optional.
type ReferenceChecker interface {
	ClassExists(ctx context.Context, id uuid.UUID) (bool, error)
	TermExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	store    repository.Store
	refs     ReferenceChecker
	Resolver *Resolver
}

func NewService(store repository.Store, refs ReferenceChecker) *Service {
	return &Service{store: store, refs: refs, Resolver: NewResolver(store)}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return sentinel
	}
	return err
}

/* =======================================================
   Groups
======================================================= */

func (s *Service) CreateGroup(ctx context.Context, m *model.FeeGroup) error {
	m.FeeGroupName = strings.TrimSpace(m.FeeGroupName)
	if err := s.store.CreateGroup(ctx, m); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return ErrDuplicateGroup
		}
		return err
	}
	return nil
}

func (s *Service) UpdateGroup(ctx context.Context, id uuid.UUID, apply func(*model.FeeGroup)) (model.FeeGroup, error) {
	m, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return m, notFound(err, ErrGroupNotFound)
	}
	apply(&m)
	if err := s.store.SaveGroup(ctx, &m); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return m, ErrDuplicateGroup
		}
		return m, err
	}
	return m, nil
}

func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (model.FeeGroup, error) {
	m, err := s.store.GetGroup(ctx, id)
	return m, notFound(err, ErrGroupNotFound)
}

func (s *Service) ListGroups(ctx context.Context, f repository.GroupFilter) ([]model.FeeGroup, int64, error) {
	return s.store.ListGroups(ctx, f)
}

/* =======================================================
   Items
======================================================= */

func (s *Service) CreateItem(ctx context.Context, m *model.FeeItem) error {
	if m.FeeItemFrequency == "" {
		m.FeeItemFrequency = model.FeeFrequencyTermly
	}
	if !m.FeeItemFrequency.Valid() {
		return ErrInvalidFrequency
	}
	if _, err := s.store.GetGroup(ctx, m.FeeItemGroupID); err != nil {
		return notFound(err, ErrGroupNotFound)
	}
	m.FeeItemName = strings.TrimSpace(m.FeeItemName)
	return s.store.CreateItem(ctx, m)
}

func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, apply func(*model.FeeItem)) (model.FeeItem, error) {
	m, err := s.store.GetItem(ctx, id)
	if err != nil {
		return m, notFound(err, ErrItemNotFound)
	}
	prevGroup := m.FeeItemGroupID
	apply(&m)
	if !m.FeeItemFrequency.Valid() {
		return m, ErrInvalidFrequency
	}
	if m.FeeItemGroupID != prevGroup {
		if _, err := s.store.GetGroup(ctx, m.FeeItemGroupID); err != nil {
			return m, notFound(err, ErrGroupNotFound)
		}
		m.Group = nil
	}
	if err := s.store.SaveItem(ctx, &m); err != nil {
		return m, err
	}
	return m, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (model.FeeItem, error) {
	m, err := s.store.GetItem(ctx, id)
	return m, notFound(err, ErrItemNotFound)
}

func (s *Service) ListItems(ctx context.Context, f repository.ItemFilter) ([]model.FeeItem, int64, error) {
	return s.store.ListItems(ctx, f)
}

/* =======================================================
   Rules
======================================================= */

func (s *Service) checkRefs(ctx context.Context, classID uuid.UUID, termID *uuid.UUID) error {
	if s.refs == nil {
		return nil
	}
	ok, err := s.refs.ClassExists(ctx, classID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClassNotFound
	}
	if termID != nil {
		ok, err := s.refs.TermExists(ctx, *termID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTermNotFound
		}
	}
	return nil
}

// CreateRule inserts a rule; the existence check and insert share one transaction and the
// store's unique index catches whatever a concurrent request slips past the check.
func (s *Service) CreateRule(ctx context.Context, m *model.FeeItemRule) error {
	if m.FeeItemRuleAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if _, err := s.store.GetItem(ctx, m.FeeItemRuleFeeItemID); err != nil {
		return notFound(err, ErrItemNotFound)
	}
	if err := s.checkRefs(ctx, m.FeeItemRuleClassID, m.FeeItemRuleTermID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if m.FeeItemRuleIsActive {
			exists, err := tx.RuleExists(ctx, m.FeeItemRuleFeeItemID, m.FeeItemRuleClassID, m.FeeItemRuleTermID, nil)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateRule
			}
		}
		return tx.CreateRule(ctx, m)
	})
	if errors.Is(err, dberr.ErrDuplicate) {
		return ErrDuplicateRule
	}
	return err
}

// UpdateRule checks class/term references before opening the transaction; apply must be
// safe to call twice.
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, apply func(*model.FeeItemRule)) (model.FeeItemRule, error) {
	var out model.FeeItemRule
	probe, err := s.store.GetRule(ctx, id)
	if err != nil {
		return out, notFound(err, ErrRuleNotFound)
	}
	apply(&probe)
	if err := s.checkRefs(ctx, probe.FeeItemRuleClassID, probe.FeeItemRuleTermID); err != nil {
		return out, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		m, err := tx.GetRule(ctx, id)
		if err != nil {
			return notFound(err, ErrRuleNotFound)
		}
		apply(&m)
		if m.FeeItemRuleAmount.IsNegative() {
			return ErrNegativeAmount
		}
		if m.FeeItemRuleIsActive {
			exists, err := tx.RuleExists(ctx, m.FeeItemRuleFeeItemID, m.FeeItemRuleClassID, m.FeeItemRuleTermID, &m.FeeItemRuleID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateRule
			}
		}
		if err := tx.SaveRule(ctx, &m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if errors.Is(err, dberr.ErrDuplicate) {
		return out, ErrDuplicateRule
	}
	return out, err
}

func (s *Service) DeactivateRule(ctx context.Context, id uuid.UUID) (model.FeeItemRule, error) {
	return s.UpdateRule(ctx, id, func(m *model.FeeItemRule) { m.FeeItemRuleIsActive = false })
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return notFound(err, ErrRuleNotFound)
	}
	return nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (model.FeeItemRule, error) {
	m, err := s.store.GetRule(ctx, id)
	return m, notFound(err, ErrRuleNotFound)
}

func (s *Service) ListRules(ctx context.Context, f repository.RuleFilter) ([]model.FeeItemRule, int64, error) {
	return s.store.ListRules(ctx, f)
}

// ActiveItems lists active fee items split by the optional flag; used by invoice composition.
func (s *Service) ActiveItems(ctx context.Context, optional bool) ([]model.FeeItem, error) {
	items, _, err := s.store.ListItems(ctx, repository.ItemFilter{
		IsOptional: &optional,
		OnlyActive: true,
		Order:      "fee_item_name ASC",
	})
	if err != nil {
		return nil, fmt.Errorf("list fee items: %w", err)
	}
	return items, nil
}

// Resolve prices one item; see Resolver.
func (s *Service) Resolve(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) (Resolution, error) {
	return s.Resolver.Resolve(ctx, feeItemID, classID, termID)
}

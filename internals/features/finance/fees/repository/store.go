package repository

import (
	"context"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/fees/model"
)

type GroupFilter struct {
	OnlyActive bool
	Search     string
	Order      string
	Limit      int
	Offset     int
}

type ItemFilter struct {
	GroupID    *uuid.UUID
	IsOptional *bool
	OnlyActive bool
	Search     string
	Order      string
	Limit      int
	Offset     int
}

type RuleFilter struct {
	FeeItemID  *uuid.UUID
	ClassID    *uuid.UUID
	TermID     *uuid.UUID
	OnlyActive bool
	Order      string
	Limit      int
	Offset     int
}

// Store persists fee groups, items and rules. Limit 0 means no limit.
type Store interface {
	CreateGroup(ctx context.Context, m *model.FeeGroup) error
	SaveGroup(ctx context.Context, m *model.FeeGroup) error
	GetGroup(ctx context.Context, id uuid.UUID) (model.FeeGroup, error)
	ListGroups(ctx context.Context, f GroupFilter) ([]model.FeeGroup, int64, error)

	CreateItem(ctx context.Context, m *model.FeeItem) error
	SaveItem(ctx context.Context, m *model.FeeItem) error
	GetItem(ctx context.Context, id uuid.UUID) (model.FeeItem, error)
	ListItems(ctx context.Context, f ItemFilter) ([]model.FeeItem, int64, error)

	CreateRule(ctx context.Context, m *model.FeeItemRule) error
	SaveRule(ctx context.Context, m *model.FeeItemRule) error
	GetRule(ctx context.Context, id uuid.UUID) (model.FeeItemRule, error)
	ListRules(ctx context.Context, f RuleFilter) ([]model.FeeItemRule, int64, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error

	// ApplicableRules returns active rules of (item, class) whose term is termID or NULL,
	// term-specific rules first. A nil termID only matches NULL-term rules.
	ApplicableRules(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) ([]model.FeeItemRule, error)
	// RuleExists checks for another active rule on the exact (item, class, term) tuple.
	RuleExists(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID, excludeID *uuid.UUID) (bool, error)

	Transaction(ctx context.Context, fn func(Store) error) error
}

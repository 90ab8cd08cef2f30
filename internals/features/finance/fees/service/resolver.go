package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/fees/model"
)

// RuleLookup is the read side the resolver needs.
type RuleLookup interface {
	ApplicableRules(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) ([]model.FeeItemRule, error)
	RuleExists(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID, excludeID *uuid.UUID) (bool, error)
}

// Resolution is the outcome of pricing one fee item for a class and term.
type Resolution struct {
	Amount       decimal.Decimal `json:"amount"`
	RuleID       *uuid.UUID      `json:"rule_id,omitempty"`
	TermSpecific bool            `json:"term_specific"`
	Found        bool            `json:"found"`
}

// Resolver prices fee items: term-specific rule > class-wide rule > zero.
type Resolver struct {
	rules RuleLookup
}

func NewResolver(rules RuleLookup) *Resolver {
	return &Resolver{rules: rules}
}

func (r *Resolver) Resolve(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) (Resolution, error) {
	rules, err := r.rules.ApplicableRules(ctx, feeItemID, classID, termID)
	if err != nil {
		return Resolution{}, err
	}
	if len(rules) == 0 {
		return Resolution{Amount: decimal.Zero}, nil
	}
	best := rules[0]
	// stores are expected to sort term-specific first; do not rely on it
	for _, rule := range rules {
		if rule.FeeItemRuleTermID != nil {
			best = rule
			break
		}
	}
	id := best.FeeItemRuleID
	return Resolution{
		Amount:       best.FeeItemRuleAmount,
		RuleID:       &id,
		TermSpecific: best.FeeItemRuleTermID != nil,
		Found:        true,
	}, nil
}

// ResolveAmount returns the applicable amount, or zero when no rule matches.
func (r *Resolver) ResolveAmount(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) (decimal.Decimal, error) {
	res, err := r.Resolve(ctx, feeItemID, classID, termID)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Amount, nil
}

// RuleExists is the advisory pre-insert check exposed to callers and the UI.
func (r *Resolver) RuleExists(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) (bool, error) {
	return r.rules.RuleExists(ctx, feeItemID, classID, termID, nil)
}

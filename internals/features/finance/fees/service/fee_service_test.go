package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	"schoolfee_backend/internals/features/finance/fees/model"
	"schoolfee_backend/internals/features/finance/fees/service"
)

type fixture struct {
	svc   *service.Service
	item  model.FeeItem
	class uuid.UUID
	term1 uuid.UUID
	term2 uuid.UUID
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	svc := service.NewService(inmem.NewFeeStore(inmem.New()), nil)

	g := model.FeeGroup{FeeGroupName: "Tuition", FeeGroupIsActive: true}
	require.NoError(t, svc.CreateGroup(ctx, &g))
	it := model.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: "Grade 1 Tuition", FeeItemIsActive: true}
	require.NoError(t, svc.CreateItem(ctx, &it))
	assert.Equal(t, model.FeeFrequencyTermly, it.FeeItemFrequency)

	return fixture{svc: svc, item: it, class: uuid.New(), term1: uuid.New(), term2: uuid.New()}
}

func (f fixture) rule(t *testing.T, term *uuid.UUID, amount string) model.FeeItemRule {
	t.Helper()
	r := model.FeeItemRule{
		FeeItemRuleFeeItemID: f.item.FeeItemID,
		FeeItemRuleClassID:   f.class,
		FeeItemRuleTermID:    term,
		FeeItemRuleAmount:    decimal.RequireFromString(amount),
		FeeItemRuleIsActive:  true,
	}
	require.NoError(t, f.svc.CreateRule(context.Background(), &r))
	return r
}

func TestResolve_TermRuleTakesPrecedence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.rule(t, &f.term1, "5000")
	f.rule(t, nil, "4500")

	res, err := f.svc.Resolver.Resolve(ctx, f.item.FeeItemID, f.class, &f.term1)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.TermSpecific)
	assert.Equal(t, a.FeeItemRuleID, *res.RuleID)
	assert.True(t, decimal.NewFromInt(5000).Equal(res.Amount))

	amt, err := f.svc.Resolver.ResolveAmount(ctx, f.item.FeeItemID, f.class, &f.term2)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4500).Equal(amt), "other term falls back to the class-wide rule")
}

func TestResolve_NoRuleIsZero(t *testing.T) {
	f := setup(t)
	res, err := f.svc.Resolver.Resolve(context.Background(), f.item.FeeItemID, f.class, &f.term1)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.RuleID)
	assert.True(t, res.Amount.IsZero())
}

func TestResolve_NilTermOnlySeesClassWideRule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.rule(t, &f.term1, "5000")

	amt, err := f.svc.Resolver.ResolveAmount(ctx, f.item.FeeItemID, f.class, nil)
	require.NoError(t, err)
	assert.True(t, amt.IsZero())

	f.rule(t, nil, "4200")
	amt, err = f.svc.Resolver.ResolveAmount(ctx, f.item.FeeItemID, f.class, nil)
	require.NoError(t, err)
	assert.Equal(t, "4200", amt.String())
}

func TestResolve_IgnoresInactiveRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.rule(t, &f.term1, "5000")
	_, err := f.svc.DeactivateRule(ctx, r.FeeItemRuleID)
	require.NoError(t, err)

	res, err := f.svc.Resolver.Resolve(ctx, f.item.FeeItemID, f.class, &f.term1)
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestCreateRule_DuplicateScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.rule(t, &f.term1, "5000")
	f.rule(t, nil, "4500")

	dup := model.FeeItemRule{
		FeeItemRuleFeeItemID: f.item.FeeItemID,
		FeeItemRuleClassID:   f.class,
		FeeItemRuleTermID:    &f.term1,
		FeeItemRuleAmount:    decimal.NewFromInt(1),
		FeeItemRuleIsActive:  true,
	}
	assert.ErrorIs(t, f.svc.CreateRule(ctx, &dup), service.ErrDuplicateRule)

	wide := dup
	wide.FeeItemRuleTermID = nil
	assert.ErrorIs(t, f.svc.CreateRule(ctx, &wide), service.ErrDuplicateRule)

	inactive := dup
	inactive.FeeItemRuleID = uuid.Nil
	inactive.FeeItemRuleIsActive = false
	assert.NoError(t, f.svc.CreateRule(ctx, &inactive), "inactive rules do not occupy the scope")

	exists, err := f.svc.Resolver.RuleExists(ctx, f.item.FeeItemID, f.class, &f.term2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateRule_ReactivateIntoTakenScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	old := f.rule(t, &f.term1, "5000")
	_, err := f.svc.DeactivateRule(ctx, old.FeeItemRuleID)
	require.NoError(t, err)
	f.rule(t, &f.term1, "5500")

	_, err = f.svc.UpdateRule(ctx, old.FeeItemRuleID, func(m *model.FeeItemRule) { m.FeeItemRuleIsActive = true })
	assert.ErrorIs(t, err, service.ErrDuplicateRule)

	got, err := f.svc.GetRule(ctx, old.FeeItemRuleID)
	require.NoError(t, err)
	assert.False(t, got.FeeItemRuleIsActive, "failed update must not persist")
}

func TestCreateRule_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	neg := model.FeeItemRule{FeeItemRuleFeeItemID: f.item.FeeItemID, FeeItemRuleClassID: f.class, FeeItemRuleAmount: decimal.NewFromInt(-1), FeeItemRuleIsActive: true}
	assert.ErrorIs(t, f.svc.CreateRule(ctx, &neg), service.ErrNegativeAmount)

	orphan := model.FeeItemRule{FeeItemRuleFeeItemID: uuid.New(), FeeItemRuleClassID: f.class, FeeItemRuleIsActive: true}
	assert.ErrorIs(t, f.svc.CreateRule(ctx, &orphan), service.ErrItemNotFound)
}

type refs struct{ classes, terms map[uuid.UUID]bool }

func (r refs) ClassExists(_ context.Context, id uuid.UUID) (bool, error) { return r.classes[id], nil }
func (r refs) TermExists(_ context.Context, id uuid.UUID) (bool, error)  { return r.terms[id], nil }

func TestCreateRule_ChecksReferences(t *testing.T) {
	ctx := context.Background()
	class, term := uuid.New(), uuid.New()
	svc := service.NewService(inmem.NewFeeStore(inmem.New()), refs{
		classes: map[uuid.UUID]bool{class: true},
		terms:   map[uuid.UUID]bool{term: true},
	})
	g := model.FeeGroup{FeeGroupName: "PTA", FeeGroupIsActive: true}
	require.NoError(t, svc.CreateGroup(ctx, &g))
	it := model.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: "PTA Levy", FeeItemIsActive: true}
	require.NoError(t, svc.CreateItem(ctx, &it))

	r := model.FeeItemRule{FeeItemRuleFeeItemID: it.FeeItemID, FeeItemRuleClassID: uuid.New(), FeeItemRuleIsActive: true}
	assert.ErrorIs(t, svc.CreateRule(ctx, &r), service.ErrClassNotFound)

	unknownTerm := uuid.New()
	r.FeeItemRuleClassID = class
	r.FeeItemRuleTermID = &unknownTerm
	assert.ErrorIs(t, svc.CreateRule(ctx, &r), service.ErrTermNotFound)

	r.FeeItemRuleTermID = &term
	assert.NoError(t, svc.CreateRule(ctx, &r))
}

func TestCatalogue_GroupsAndItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dup := model.FeeGroup{FeeGroupName: "tuition"}
	assert.ErrorIs(t, f.svc.CreateGroup(ctx, &dup), service.ErrDuplicateGroup)

	bad := model.FeeItem{FeeItemGroupID: uuid.New(), FeeItemName: "Bus"}
	assert.ErrorIs(t, f.svc.CreateItem(ctx, &bad), service.ErrGroupNotFound)

	opt := model.FeeItem{FeeItemGroupID: f.item.FeeItemGroupID, FeeItemName: "Bus", FeeItemIsOptional: true, FeeItemIsActive: true}
	require.NoError(t, f.svc.CreateItem(ctx, &opt))

	optional, err := f.svc.ActiveItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, optional, 1)
	assert.Equal(t, "Bus", optional[0].FeeItemName)

	_, err = f.svc.UpdateItem(ctx, opt.FeeItemID, func(m *model.FeeItem) { m.FeeItemFrequency = "weekly" })
	assert.ErrorIs(t, err, service.ErrInvalidFrequency)

	got, err := f.svc.GetItem(ctx, f.item.FeeItemID)
	require.NoError(t, err)
	require.NotNil(t, got.Group)
	assert.Equal(t, "Tuition", got.Group.FeeGroupName)
}

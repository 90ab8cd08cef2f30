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
	feeModel "schoolfee_backend/internals/features/finance/fees/model"
	feeService "schoolfee_backend/internals/features/finance/fees/service"
	"schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/features/school/academics/service"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestClassesAndSections(t *testing.T) {
	ctx := context.Background()
	svc := service.NewService(inmem.NewAcademicStore(inmem.New()))

	g1 := model.Class{ClassName: " Grade 1 ", ClassLevel: 1, ClassIsActive: true}
	require.NoError(t, svc.CreateClass(ctx, &g1))
	assert.Equal(t, "Grade 1", g1.ClassName)
	assert.ErrorIs(t, svc.CreateClass(ctx, &model.Class{ClassName: "grade 1"}), service.ErrDuplicateClass)

	g2 := model.Class{ClassName: "Grade 2", ClassLevel: 2, ClassIsActive: true}
	require.NoError(t, svc.CreateClass(ctx, &g2))

	a := model.Section{SectionClassID: g1.ClassID, SectionName: "A"}
	require.NoError(t, svc.CreateSection(ctx, &a))
	assert.ErrorIs(t, svc.CreateSection(ctx, &model.Section{SectionClassID: g1.ClassID, SectionName: "a"}), service.ErrDuplicateSection)
	assert.ErrorIs(t, svc.CreateSection(ctx, &model.Section{SectionClassID: uuid.New(), SectionName: "B"}), service.ErrClassNotFound)

	_, err := svc.SectionOf(ctx, g1.ClassID, a.SectionID)
	assert.NoError(t, err)
	_, err = svc.SectionOf(ctx, g2.ClassID, a.SectionID)
	assert.ErrorIs(t, err, service.ErrSectionClass)

	classes, err := svc.ListClasses(ctx, true)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Grade 1", classes[0].ClassName)
}

func TestTerms(t *testing.T) {
	ctx := context.Background()
	svc := service.NewService(inmem.NewAcademicStore(inmem.New()))

	bad := model.AcademicTerm{AcademicTermName: "Term 1", AcademicTermYear: 2025, AcademicTermStartDate: day("2025-04-01"), AcademicTermEndDate: day("2025-01-01")}
	assert.ErrorIs(t, svc.CreateTerm(ctx, &bad), model.ErrTermDates)

	t1 := model.AcademicTerm{AcademicTermName: "Term 1", AcademicTermYear: 2025, AcademicTermStartDate: day("2025-01-06"), AcademicTermEndDate: day("2025-04-04"), AcademicTermIsActive: true}
	require.NoError(t, svc.CreateTerm(ctx, &t1))
	dup := t1
	dup.AcademicTermID = uuid.Nil
	assert.ErrorIs(t, svc.CreateTerm(ctx, &dup), service.ErrDuplicateTerm)
	assert.True(t, t1.Contains(day("2025-04-04")))
	assert.False(t, t1.Contains(day("2025-04-05")))

	updated, err := svc.UpdateTerm(ctx, t1.AcademicTermID, func(m *model.AcademicTerm) { m.AcademicTermIsActive = false })
	require.NoError(t, err)
	assert.False(t, updated.AcademicTermIsActive)

	_, err = svc.UpdateTerm(ctx, t1.AcademicTermID, func(m *model.AcademicTerm) { m.AcademicTermEndDate = day("2024-12-31") })
	assert.ErrorIs(t, err, model.ErrTermDates)
}

func TestFeeRulesCheckAcademicReferences(t *testing.T) {
	ctx := context.Background()
	db := inmem.New()
	acad := service.NewService(inmem.NewAcademicStore(db))
	fees := feeService.NewService(inmem.NewFeeStore(db), acad)

	class := model.Class{ClassName: "Grade 3", ClassIsActive: true}
	require.NoError(t, acad.CreateClass(ctx, &class))
	term := model.AcademicTerm{AcademicTermName: "Term 1", AcademicTermYear: 2025, AcademicTermStartDate: day("2025-01-06"), AcademicTermEndDate: day("2025-04-04")}
	require.NoError(t, acad.CreateTerm(ctx, &term))

	g := feeModel.FeeGroup{FeeGroupName: "Tuition", FeeGroupIsActive: true}
	require.NoError(t, fees.CreateGroup(ctx, &g))
	it := feeModel.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: "Tuition", FeeItemIsActive: true}
	require.NoError(t, fees.CreateItem(ctx, &it))

	rule := func(classID uuid.UUID, termID *uuid.UUID) *feeModel.FeeItemRule {
		return &feeModel.FeeItemRule{FeeItemRuleFeeItemID: it.FeeItemID, FeeItemRuleClassID: classID, FeeItemRuleTermID: termID, FeeItemRuleAmount: decimal.NewFromInt(100), FeeItemRuleIsActive: true}
	}
	termID := term.AcademicTermID
	require.NoError(t, fees.CreateRule(ctx, rule(class.ClassID, &termID)))
	assert.ErrorIs(t, fees.CreateRule(ctx, rule(uuid.New(), nil)), feeService.ErrClassNotFound)
	missing := uuid.New()
	assert.ErrorIs(t, fees.CreateRule(ctx, rule(class.ClassID, &missing)), feeService.ErrTermNotFound)
}

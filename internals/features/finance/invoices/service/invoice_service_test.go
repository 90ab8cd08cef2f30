package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	feeModel "schoolfee_backend/internals/features/finance/fees/model"
	feeService "schoolfee_backend/internals/features/finance/fees/service"
	planModel "schoolfee_backend/internals/features/finance/installments/model"
	planService "schoolfee_backend/internals/features/finance/installments/service"
	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/invoices/repository"
	"schoolfee_backend/internals/features/finance/invoices/service"
	"schoolfee_backend/internals/notifications"
)

type recorder struct {
	notifications.Nop
	mu      sync.Mutex
	issued  []notifications.InvoiceIssued
	overdue []notifications.InvoiceOverdue
}

func (r *recorder) InvoiceIssued(_ context.Context, n notifications.InvoiceIssued) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, n)
}

func (r *recorder) InvoiceOverdue(_ context.Context, n notifications.InvoiceOverdue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overdue = append(r.overdue, n)
}

type approvals struct{ got []uuid.UUID }

func (a *approvals) InvoiceApproved(_ context.Context, inv model.Invoice) error {
	a.got = append(a.got, inv.InvoiceID)
	return nil
}

type env struct {
	svc      *service.Service
	fees     *feeService.Service
	plans    *planService.Service
	notes    *recorder
	class    uuid.UUID
	term     uuid.UUID
	tuition  feeModel.FeeItem
	bus      feeModel.FeeItem
	uniform  feeModel.FeeItem
	noRuleMd feeModel.FeeItem
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	db := inmem.New()
	fees := feeService.NewService(inmem.NewFeeStore(db), nil)
	plans := planService.NewService(inmem.NewInstallmentStore(db))
	notes := &recorder{}
	svc := service.NewService(inmem.NewInvoiceStore(db), fees, plans, notes)

	e := env{svc: svc, fees: fees, plans: plans, notes: notes, class: uuid.New(), term: uuid.New()}

	g := feeModel.FeeGroup{FeeGroupName: "School fees", FeeGroupIsActive: true}
	require.NoError(t, fees.CreateGroup(ctx, &g))
	item := func(name string, optional bool) feeModel.FeeItem {
		it := feeModel.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: name, FeeItemIsOptional: optional, FeeItemIsActive: true}
		require.NoError(t, fees.CreateItem(ctx, &it))
		return it
	}
	rule := func(it feeModel.FeeItem, amount string) {
		r := feeModel.FeeItemRule{
			FeeItemRuleFeeItemID: it.FeeItemID,
			FeeItemRuleClassID:   e.class,
			FeeItemRuleAmount:    money(amount),
			FeeItemRuleIsActive:  true,
		}
		require.NoError(t, fees.CreateRule(ctx, &r))
	}

	e.tuition = item("Tuition", false)
	e.noRuleMd = item("Lab", false)
	e.bus = item("Bus", true)
	e.uniform = item("Uniform", true)
	rule(e.tuition, "4500")
	rule(e.bus, "800")
	return e
}

func TestCompose_MandatoryAndOptionalLines(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	inv, err := e.svc.Compose(ctx, service.ComposeInput{
		StudentID:          uuid.New(),
		ClassID:            e.class,
		TermID:             e.term,
		OptionalFeeItemIDs: []uuid.UUID{e.bus.FeeItemID, e.bus.FeeItemID, e.uniform.FeeItemID},
	})
	require.NoError(t, err)

	require.Len(t, inv.Items, 3, "mandatory item without a rule is skipped, duplicate optional ids collapse")
	assert.Equal(t, "Tuition", inv.Items[0].InvoiceItemLabel)
	assert.False(t, inv.Items[0].InvoiceItemIsOptional)
	assert.Equal(t, "Bus", inv.Items[1].InvoiceItemLabel)
	assert.True(t, inv.Items[1].InvoiceItemIsOptional)
	assert.True(t, inv.Items[2].InvoiceItemAmount.IsZero(), "optional item without a rule is billed at zero")

	assert.True(t, money("5300").Equal(inv.InvoiceTotalAmount))
	assert.True(t, money("5300").Equal(inv.InvoiceBalance))
	assert.True(t, inv.InvoicePaidAmount.IsZero())
	assert.Equal(t, model.InvoiceStatusUnpaid, inv.InvoiceStatus)
	assert.Equal(t, model.InvoiceKindRegular, inv.InvoiceKind)
	assert.Nil(t, inv.InvoiceWorkflowStatus)
	assert.Regexp(t, `^INV-\d{8}-[0-9A-F]{8}$`, inv.InvoiceNo)

	got, err := e.svc.Get(ctx, inv.InvoiceID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, 1, got.Items[0].InvoiceItemPosition)
	assert.Equal(t, 3, got.Items[2].InvoiceItemPosition)

	require.Len(t, e.notes.issued, 1)
	assert.Equal(t, inv.InvoiceNo, e.notes.issued[0].InvoiceNo)
	assert.Len(t, e.notes.issued[0].Items, 3)
}

func TestCompose_RejectsBadOptionalItem(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	base := service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term}

	in := base
	in.OptionalFeeItemIDs = []uuid.UUID{e.tuition.FeeItemID}
	_, err := e.svc.Compose(ctx, in)
	assert.ErrorIs(t, err, service.ErrInvalidOptionalItem, "mandatory item cannot be picked as optional")

	in.OptionalFeeItemIDs = []uuid.UUID{uuid.New()}
	_, err = e.svc.Compose(ctx, in)
	assert.ErrorIs(t, err, service.ErrInvalidOptionalItem)

	_, err = e.fees.UpdateItem(ctx, e.uniform.FeeItemID, func(it *feeModel.FeeItem) { it.FeeItemIsActive = false })
	require.NoError(t, err)
	in.OptionalFeeItemIDs = []uuid.UUID{e.uniform.FeeItemID}
	_, err = e.svc.Compose(ctx, in)
	assert.ErrorIs(t, err, service.ErrInvalidOptionalItem)

	_, total, err := e.svc.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "failed compositions store nothing")
	assert.Empty(t, e.notes.issued)
}

func TestCompose_UnknownClassIsZeroTotalAndPaid(t *testing.T) {
	e := setup(t)
	inv, err := e.svc.Compose(context.Background(), service.ComposeInput{StudentID: uuid.New(), ClassID: uuid.New(), TermID: e.term})
	require.NoError(t, err)
	assert.Empty(t, inv.Items)
	assert.True(t, inv.InvoiceTotalAmount.IsZero())
	assert.Equal(t, model.InvoiceStatusPaid, inv.InvoiceStatus)
}

func TestCreateManual(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.CreateManual(ctx, service.ManualInput{StudentID: uuid.New(), TermID: e.term})
	assert.ErrorIs(t, err, service.ErrNoItems)

	_, err = e.svc.CreateManual(ctx, service.ManualInput{
		StudentID: uuid.New(), TermID: e.term,
		Items: []service.ManualItem{{Label: "Refund", Amount: money("-1")}},
	})
	assert.ErrorIs(t, err, service.ErrNegativeItemAmount)

	_, err = e.svc.CreateManual(ctx, service.ManualInput{
		StudentID: uuid.New(), TermID: e.term, Kind: "bogus",
		Items: []service.ManualItem{{Label: "Books", Amount: money("10")}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidKind)

	inv, err := e.svc.CreateManual(ctx, service.ManualInput{
		StudentID: uuid.New(), TermID: e.term,
		Items: []service.ManualItem{
			{Label: " Books ", Amount: money("120.505")},
			{Label: "Trip", Amount: money("79.50"), IsOptional: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Books", inv.Items[0].InvoiceItemLabel)
	assert.Equal(t, "200.01", inv.InvoiceTotalAmount.StringFixed(2))
}

func TestCompose_InstallmentPlanSetsDueDate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	e.svc.Now = func() time.Time { return now }

	p := planModel.InstallmentPlan{InstallmentPlanName: "Monthly", InstallmentPlanIsActive: true}
	p.SetSteps([]planModel.InstallmentStep{
		{Percentage: money("50"), Interval: "monthly"},
		{Percentage: money("50"), Interval: "monthly"},
	})
	require.NoError(t, e.plans.Create(ctx, &p))

	planID := p.InstallmentPlanID
	inv, err := e.svc.Compose(ctx, service.ComposeInput{
		StudentID: uuid.New(), ClassID: e.class, TermID: e.term, InstallmentPlanID: &planID,
	})
	require.NoError(t, err)
	require.NotNil(t, inv.InvoiceDueDate)
	assert.True(t, now.AddDate(0, 1, 0).Equal(*inv.InvoiceDueDate))

	entries, err := e.svc.Schedule(ctx, inv.InvoiceID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, planService.ScheduleTotal(entries).Equal(money("4500")))

	plain, err := e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term})
	require.NoError(t, err)
	_, err = e.svc.Schedule(ctx, plain.InvoiceID)
	assert.ErrorIs(t, err, service.ErrNoInstallmentPlan)

	missing := uuid.New()
	_, err = e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term, InstallmentPlanID: &missing})
	assert.ErrorIs(t, err, planService.ErrPlanNotFound)
}

func TestEnrollmentWorkflow(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	hook := &approvals{}
	e.svc.SetEnrollmentHook(hook)

	inv, err := e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term, Kind: model.InvoiceKindEnrollment})
	require.NoError(t, err)
	require.NotNil(t, inv.InvoiceWorkflowStatus)
	assert.Equal(t, model.WorkflowPending, *inv.InvoiceWorkflowStatus)

	approved, err := e.svc.Approve(ctx, inv.InvoiceID, "bursar-1")
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowApproved, *approved.InvoiceWorkflowStatus)
	assert.Equal(t, "bursar-1", *approved.InvoiceDecidedBy)
	assert.NotNil(t, approved.InvoiceDecidedAt)
	assert.Equal(t, []uuid.UUID{inv.InvoiceID}, hook.got)

	_, err = e.svc.Reject(ctx, inv.InvoiceID, "bursar-2")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = e.svc.Approve(ctx, inv.InvoiceID, "bursar-2")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	assert.Len(t, hook.got, 1)

	regular, err := e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term})
	require.NoError(t, err)
	_, err = e.svc.Approve(ctx, regular.InvoiceID, "bursar-1")
	assert.ErrorIs(t, err, service.ErrNotEnrollmentInvoice)

	_, err = e.svc.Reject(ctx, uuid.New(), "bursar-1")
	assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
}

func TestRemindOverdue_ThrottledPerInterval(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	late, err := e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term, DueDate: &due})
	require.NoError(t, err)
	later := due.AddDate(0, 2, 0)
	_, err = e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: e.class, TermID: e.term, DueDate: &later})
	require.NoError(t, err)
	_, err = e.svc.Compose(ctx, service.ComposeInput{StudentID: uuid.New(), ClassID: uuid.New(), TermID: e.term, DueDate: &due})
	require.NoError(t, err) // zero total, already paid

	asOf := due.AddDate(0, 0, 3)
	n, err := e.svc.RemindOverdue(ctx, asOf, 24*time.Hour, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, e.notes.overdue, 1)
	assert.Equal(t, late.InvoiceNo, e.notes.overdue[0].InvoiceNo)
	assert.True(t, money("4500").Equal(e.notes.overdue[0].Balance))

	n, err = e.svc.RemindOverdue(ctx, asOf.Add(time.Hour), 24*time.Hour, 50)
	require.NoError(t, err)
	assert.Zero(t, n, "reminded within the interval")

	n, err = e.svc.RemindOverdue(ctx, asOf.Add(25*time.Hour), 24*time.Hour, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

package service_test

import (
	"context"
	"errors"
	"regexp"
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
	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	invoiceService "schoolfee_backend/internals/features/finance/invoices/service"
	academicModel "schoolfee_backend/internals/features/school/academics/model"
	academicService "schoolfee_backend/internals/features/school/academics/service"
	"schoolfee_backend/internals/features/school/admissions/model"
	"schoolfee_backend/internals/features/school/admissions/repository"
	"schoolfee_backend/internals/features/school/admissions/service"
	"schoolfee_backend/internals/notifications"
)

type decisions struct {
	notifications.Nop
	mu  sync.Mutex
	got []notifications.AdmissionDecided
}

func (d *decisions) AdmissionDecided(_ context.Context, n notifications.AdmissionDecided) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, n)
}

type env struct {
	svc      *service.Service
	store    repository.Store
	invoices *invoiceService.Service
	notes    *decisions
	class    academicModel.Class
	section  academicModel.Section
	term     academicModel.AcademicTerm
	bus      feeModel.FeeItem
}

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	db := inmem.New()

	academics := academicService.NewService(inmem.NewAcademicStore(db))
	fees := feeService.NewService(inmem.NewFeeStore(db), academics)
	invoices := invoiceService.NewService(inmem.NewInvoiceStore(db), fees, nil, nil)
	store := inmem.NewAdmissionStore(db)
	notes := &decisions{}
	svc := service.NewService(store, academics, invoices, notes)
	invoices.SetEnrollmentHook(svc)
	svc.Now = func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }

	e := env{svc: svc, store: store, invoices: invoices, notes: notes}
	e.class = academicModel.Class{ClassName: "Grade 1", ClassLevel: 1, ClassIsActive: true}
	require.NoError(t, academics.CreateClass(ctx, &e.class))
	e.section = academicModel.Section{SectionClassID: e.class.ClassID, SectionName: "A"}
	require.NoError(t, academics.CreateSection(ctx, &e.section))
	e.term = academicModel.AcademicTerm{
		AcademicTermName:      "Term 1",
		AcademicTermYear:      2025,
		AcademicTermStartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		AcademicTermEndDate:   time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
		AcademicTermIsActive:  true,
	}
	require.NoError(t, academics.CreateTerm(ctx, &e.term))

	g := feeModel.FeeGroup{FeeGroupName: "School fees", FeeGroupIsActive: true}
	require.NoError(t, fees.CreateGroup(ctx, &g))
	tuition := feeModel.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: "Tuition", FeeItemIsActive: true}
	require.NoError(t, fees.CreateItem(ctx, &tuition))
	e.bus = feeModel.FeeItem{FeeItemGroupID: g.FeeGroupID, FeeItemName: "Bus", FeeItemIsOptional: true, FeeItemIsActive: true}
	require.NoError(t, fees.CreateItem(ctx, &e.bus))
	for it, amount := range map[uuid.UUID]string{tuition.FeeItemID: "4500", e.bus.FeeItemID: "800"} {
		r := feeModel.FeeItemRule{
			FeeItemRuleFeeItemID: it,
			FeeItemRuleClassID:   e.class.ClassID,
			FeeItemRuleAmount:    decimal.RequireFromString(amount),
			FeeItemRuleIsActive:  true,
		}
		require.NoError(t, fees.CreateRule(ctx, &r))
	}
	return e
}

func (e env) submit(t *testing.T, name string) model.Admission {
	t.Helper()
	m, err := e.svc.Submit(context.Background(), service.SubmitInput{
		Child: model.Child{
			ChildFullName:      " " + name + " ",
			ChildGuardianName:  "Parent of " + name,
			ChildGuardianEmail: " Parent@Example.com ",
		},
		PreferredClassID: &e.class.ClassID,
	})
	require.NoError(t, err)
	return m
}

func (e env) approveInput(withInvoice bool) service.ApproveInput {
	return service.ApproveInput{
		ClassID:     e.class.ClassID,
		SectionID:   &e.section.SectionID,
		TermID:      e.term.AcademicTermID,
		Processor:   "bursar-1",
		WithInvoice: withInvoice,
	}
}

func TestSubmit(t *testing.T) {
	e := setup(t)
	m := e.submit(t, "Amina")

	assert.Equal(t, model.AdmissionPending, m.AdmissionStatus)
	require.NotNil(t, m.Child)
	assert.Equal(t, "Amina", m.Child.ChildFullName)
	assert.Equal(t, "parent@example.com", m.Child.ChildGuardianEmail)

	got, err := e.svc.Get(context.Background(), m.AdmissionID)
	require.NoError(t, err)
	require.NotNil(t, got.Child)
	assert.Equal(t, m.AdmissionChildID, got.Child.ChildID)

	_, err = e.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrAdmissionNotFound)
}

func TestApprove_WithoutInvoiceEnrolls(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	first := e.submit(t, "Amina")
	second := e.submit(t, "Baraka")

	res, err := e.svc.Approve(ctx, first.AdmissionID, e.approveInput(false))
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionApproved, res.Admission.AdmissionStatus)
	require.NotNil(t, res.Admission.AdmissionProcessedBy)
	assert.Equal(t, "bursar-1", *res.Admission.AdmissionProcessedBy)
	require.NotNil(t, res.Admission.AdmissionStudentID)
	assert.Equal(t, res.Student.StudentID, *res.Admission.AdmissionStudentID)
	assert.Equal(t, "STU2025000001", res.Student.StudentNo)
	assert.Equal(t, model.EnrollmentEnrolled, res.Enrollment.TermEnrollmentStatus)
	assert.Nil(t, res.Invoice)

	res2, err := e.svc.Approve(ctx, second.AdmissionID, e.approveInput(false))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^STU\d{4}\d{6}$`), res2.Student.StudentNo)
	assert.Equal(t, "STU2025000002", res2.Student.StudentNo)

	require.Len(t, e.notes.got, 2)
	assert.True(t, e.notes.got[0].Approved)
	assert.Equal(t, "STU2025000001", e.notes.got[0].StudentNo)
	assert.Equal(t, "parent@example.com", e.notes.got[0].Guardian.Email)

	r, err := e.svc.GuardianOf(ctx, res.Student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "Parent of Amina", r.Name)
}

func TestApprove_WithInvoiceWaitsForInvoiceApproval(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	in := e.approveInput(true)
	in.OptionalItems = []uuid.UUID{e.bus.FeeItemID}
	res, err := e.svc.Approve(ctx, m.AdmissionID, in)
	require.NoError(t, err)

	require.NotNil(t, res.Invoice)
	assert.Equal(t, invoiceModel.InvoiceKindEnrollment, res.Invoice.InvoiceKind)
	require.NotNil(t, res.Invoice.InvoiceWorkflowStatus)
	assert.Equal(t, invoiceModel.WorkflowPending, *res.Invoice.InvoiceWorkflowStatus)
	assert.Equal(t, "5300.00", res.Invoice.InvoiceTotalAmount.StringFixed(2))
	assert.Equal(t, res.Student.StudentID, res.Invoice.InvoiceStudentID)
	assert.Equal(t, model.EnrollmentPending, res.Enrollment.TermEnrollmentStatus)

	_, err = e.invoices.Approve(ctx, res.Invoice.InvoiceID, "admin-1")
	require.NoError(t, err)

	_, enr, err := e.svc.GetStudent(ctx, res.Student.StudentID)
	require.NoError(t, err)
	require.Len(t, enr, 1)
	assert.Equal(t, model.EnrollmentEnrolled, enr[0].TermEnrollmentStatus)
	require.NotNil(t, enr[0].TermEnrollmentInvoiceID)
	assert.Equal(t, res.Invoice.InvoiceID, *enr[0].TermEnrollmentInvoiceID)
}

func TestApprove_BadOptionalItemWritesNothing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	in := e.approveInput(true)
	in.OptionalItems = []uuid.UUID{uuid.New()}
	_, err := e.svc.Approve(ctx, m.AdmissionID, in)
	assert.ErrorIs(t, err, invoiceService.ErrInvalidOptionalItem)

	got, err := e.svc.Get(ctx, m.AdmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionPending, got.AdmissionStatus)
	assert.Nil(t, got.AdmissionStudentID)
}

// failingComposer prices lines normally but cannot persist the invoice until healed.
type failingComposer struct {
	*invoiceService.Service
	broken bool
}

func (f *failingComposer) Compose(ctx context.Context, in invoiceService.ComposeInput) (invoiceModel.Invoice, error) {
	if f.broken {
		return invoiceModel.Invoice{}, errors.New("db: connection reset")
	}
	return f.Service.Compose(ctx, in)
}

func TestApprove_InvoiceFailureUndoesApproval(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	composer := &failingComposer{Service: e.invoices, broken: true}
	svc := service.NewService(e.store, nil, composer, e.notes)
	svc.Now = e.svc.Now
	m := e.submit(t, "Amina")

	_, err := svc.Approve(ctx, m.AdmissionID, e.approveInput(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	got, err := svc.Get(ctx, m.AdmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionPending, got.AdmissionStatus)
	assert.Nil(t, got.AdmissionStudentID)
	assert.Nil(t, got.AdmissionProcessedBy)
	assert.Empty(t, e.notes.got, "no decision mail for an undone approval")

	composer.broken = false
	res, err := svc.Approve(ctx, m.AdmissionID, e.approveInput(true))
	require.NoError(t, err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, model.AdmissionApproved, res.Admission.AdmissionStatus)
	assert.Equal(t, model.EnrollmentPending, res.Enrollment.TermEnrollmentStatus)

	_, enr, err := svc.GetStudent(ctx, res.Student.StudentID)
	require.NoError(t, err)
	require.Len(t, enr, 1)
	assert.Equal(t, res.Invoice.InvoiceID, *enr[0].TermEnrollmentInvoiceID)
}

func TestApprove_ChecksPlacement(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	in := e.approveInput(false)
	in.ClassID = uuid.New()
	_, err := e.svc.Approve(ctx, m.AdmissionID, in)
	assert.ErrorIs(t, err, service.ErrClassNotFound)

	in = e.approveInput(false)
	in.TermID = uuid.New()
	_, err = e.svc.Approve(ctx, m.AdmissionID, in)
	assert.ErrorIs(t, err, service.ErrTermNotFound)

	in = e.approveInput(false)
	other := uuid.New()
	in.SectionID = &other
	_, err = e.svc.Approve(ctx, m.AdmissionID, in)
	assert.ErrorIs(t, err, academicService.ErrSectionNotFound)
}

func TestReject(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	_, err := e.svc.Reject(ctx, m.AdmissionID, "   ", "bursar-1")
	assert.ErrorIs(t, err, service.ErrRemarksRequired)

	got, err := e.svc.Reject(ctx, m.AdmissionID, "class is full", "bursar-1")
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionRejected, got.AdmissionStatus)
	require.NotNil(t, got.AdmissionRemarks)
	assert.Equal(t, "class is full", *got.AdmissionRemarks)

	require.Len(t, e.notes.got, 1)
	assert.False(t, e.notes.got[0].Approved)
	assert.Equal(t, "class is full", e.notes.got[0].Remarks)
}

func TestSecondDecisionIsRejectedButRepositoryOverwrites(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	_, err := e.svc.Approve(ctx, m.AdmissionID, e.approveInput(false))
	require.NoError(t, err)

	_, err = e.svc.Reject(ctx, m.AdmissionID, "changed our mind", "bursar-2")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = e.svc.Approve(ctx, m.AdmissionID, e.approveInput(false))
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	got, err := e.svc.Get(ctx, m.AdmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionApproved, got.AdmissionStatus)

	// the data layer itself does not guard the transition
	remarks := "overwritten"
	require.NoError(t, e.store.UpdateStatus(ctx, m.AdmissionID, model.AdmissionRejected, &remarks, "script", time.Now()))
	got, err = e.svc.Get(ctx, m.AdmissionID)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionRejected, got.AdmissionStatus)
}

func TestConcurrentApprovalsCreateOneStudent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	m := e.submit(t, "Amina")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Approve(ctx, m.AdmissionID, e.approveInput(false))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)

	list, total, err := e.svc.List(ctx, repository.AdmissionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
}

func TestList_FiltersByStatusAndName(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	a := e.submit(t, "Amina Hassan")
	e.submit(t, "Baraka Otieno")
	_, err := e.svc.Reject(ctx, a.AdmissionID, "incomplete documents", "bursar-1")
	require.NoError(t, err)

	pending := model.AdmissionPending
	rows, total, err := e.svc.List(ctx, repository.AdmissionFilter{Status: &pending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Baraka Otieno", rows[0].Child.ChildFullName)

	rows, _, err = e.svc.List(ctx, repository.AdmissionFilter{Search: "amina"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.AdmissionID, rows[0].AdmissionID)
}

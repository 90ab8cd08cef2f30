// Package inmem keeps every store in process memory. Used by tests and local demos.
package inmem

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	academics "schoolfee_backend/internals/features/school/academics/model"
	admissions "schoolfee_backend/internals/features/school/admissions/model"
	fees "schoolfee_backend/internals/features/finance/fees/model"
	installments "schoolfee_backend/internals/features/finance/installments/model"
	invoices "schoolfee_backend/internals/features/finance/invoices/model"
	payments "schoolfee_backend/internals/features/finance/payments/model"
)

type tables struct {
	feeGroups map[uuid.UUID]fees.FeeGroup
	feeItems  map[uuid.UUID]fees.FeeItem
	feeRules  map[uuid.UUID]fees.FeeItemRule

	plans map[uuid.UUID]installments.InstallmentPlan

	invoices     map[uuid.UUID]invoices.Invoice
	invoiceItems map[uuid.UUID]invoices.InvoiceItem

	payments      map[uuid.UUID]payments.Payment
	gatewayEvents map[uuid.UUID]payments.GatewayEvent
	checkouts     map[string]payments.Checkout

	children    map[uuid.UUID]admissions.Child
	admissions  map[uuid.UUID]admissions.Admission
	students    map[uuid.UUID]admissions.Student
	enrollments map[uuid.UUID]admissions.TermEnrollment
	studentSeq  map[int]int

	classes  map[uuid.UUID]academics.Class
	sections map[uuid.UUID]academics.Section
	terms    map[uuid.UUID]academics.AcademicTerm
}

func (t tables) clone() tables {
	return tables{
		feeGroups:     maps.Clone(t.feeGroups),
		feeItems:      maps.Clone(t.feeItems),
		feeRules:      maps.Clone(t.feeRules),
		plans:         maps.Clone(t.plans),
		invoices:      maps.Clone(t.invoices),
		invoiceItems:  maps.Clone(t.invoiceItems),
		payments:      maps.Clone(t.payments),
		gatewayEvents: maps.Clone(t.gatewayEvents),
		checkouts:     maps.Clone(t.checkouts),
		children:      maps.Clone(t.children),
		admissions:    maps.Clone(t.admissions),
		students:      maps.Clone(t.students),
		enrollments:   maps.Clone(t.enrollments),
		studentSeq:    maps.Clone(t.studentSeq),
		classes:       maps.Clone(t.classes),
		sections:      maps.Clone(t.sections),
		terms:         maps.Clone(t.terms),
	}
}

// DB is the shared backing state. A Transaction holds the write lock for its whole
// callback and restores the snapshot when the callback fails.
type DB struct {
	mu   sync.RWMutex
	t    tables
	last time.Time
}

func New() *DB {
	return &DB{t: tables{
		feeGroups:     map[uuid.UUID]fees.FeeGroup{},
		feeItems:      map[uuid.UUID]fees.FeeItem{},
		feeRules:      map[uuid.UUID]fees.FeeItemRule{},
		plans:         map[uuid.UUID]installments.InstallmentPlan{},
		invoices:      map[uuid.UUID]invoices.Invoice{},
		invoiceItems:  map[uuid.UUID]invoices.InvoiceItem{},
		payments:      map[uuid.UUID]payments.Payment{},
		gatewayEvents: map[uuid.UUID]payments.GatewayEvent{},
		checkouts:     map[string]payments.Checkout{},
		children:      map[uuid.UUID]admissions.Child{},
		admissions:    map[uuid.UUID]admissions.Admission{},
		students:      map[uuid.UUID]admissions.Student{},
		enrollments:   map[uuid.UUID]admissions.TermEnrollment{},
		studentSeq:    map[int]int{},
		classes:       map[uuid.UUID]academics.Class{},
		sections:      map[uuid.UUID]academics.Section{},
		terms:         map[uuid.UUID]academics.AcademicTerm{},
	}}
}

// now is strictly increasing so "latest updated" ordering stays deterministic. Caller holds mu.
func (db *DB) now() time.Time {
	n := time.Now()
	if !n.After(db.last) {
		n = db.last.Add(time.Microsecond)
	}
	db.last = n
	return n
}

// view is embedded by every store; inTx means the caller already holds the write lock.
type view struct {
	db   *DB
	inTx bool
}

func (v view) rlock() func() {
	if v.inTx {
		return func() {}
	}
	v.db.mu.RLock()
	return v.db.mu.RUnlock
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.db.mu.Lock()
	return v.db.mu.Unlock
}

func (v view) tx(fn func(view) error) error {
	if v.inTx {
		return fn(v)
	}
	v.db.mu.Lock()
	defer v.db.mu.Unlock()

	snap := v.db.t.clone()
	if err := fn(view{db: v.db, inTx: true}); err != nil {
		v.db.t = snap
		return err
	}
	return nil
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// window applies offset/limit to an already ordered slice. limit 0 = all.
func window[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

package routes

import (
	"log"

	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/databases/inmem"
	feeRepo "schoolfee_backend/internals/features/finance/fees/repository"
	feeService "schoolfee_backend/internals/features/finance/fees/service"
	planRepo "schoolfee_backend/internals/features/finance/installments/repository"
	planService "schoolfee_backend/internals/features/finance/installments/service"
	invoiceRepo "schoolfee_backend/internals/features/finance/invoices/repository"
	invoiceService "schoolfee_backend/internals/features/finance/invoices/service"
	paymentRepo "schoolfee_backend/internals/features/finance/payments/repository"
	paymentService "schoolfee_backend/internals/features/finance/payments/service"
	academicRepo "schoolfee_backend/internals/features/school/academics/repository"
	academicService "schoolfee_backend/internals/features/school/academics/service"
	admissionRepo "schoolfee_backend/internals/features/school/admissions/repository"
	admissionService "schoolfee_backend/internals/features/school/admissions/service"
	"schoolfee_backend/internals/notifications"
)

type Stores struct {
	Academics  academicRepo.Store
	Fees       feeRepo.Store
	Plans      planRepo.Store
	Invoices   invoiceRepo.Store
	Payments   paymentRepo.Store
	Admissions admissionRepo.Store
}

func GormStores(db *gorm.DB) Stores {
	return Stores{
		Academics:  academicRepo.NewGormStore(db),
		Fees:       feeRepo.NewGormStore(db),
		Plans:      planRepo.NewGormStore(db),
		Invoices:   invoiceRepo.NewGormStore(db),
		Payments:   paymentRepo.NewGormStore(db),
		Admissions: admissionRepo.NewGormStore(db),
	}
}

// MemoryStores backs every module with one in-process database (DB_DRIVER=memory).
func MemoryStores(db *inmem.DB) Stores {
	return Stores{
		Academics:  inmem.NewAcademicStore(db),
		Fees:       inmem.NewFeeStore(db),
		Plans:      inmem.NewInstallmentStore(db),
		Invoices:   inmem.NewInvoiceStore(db),
		Payments:   inmem.NewPaymentStore(db),
		Admissions: inmem.NewAdmissionStore(db),
	}
}

type Services struct {
	Academics  *academicService.Service
	Fees       *feeService.Service
	Plans      *planService.Service
	Invoices   *invoiceService.Service
	Payments   *paymentService.Service
	Admissions *admissionService.Service
}

// NewServices wires the modules together. Admissions doubles as the invoices enrollment
// hook and, when the notifier is a Dispatcher, as its guardian resolver.
func NewServices(st Stores, cfg configs.Config, notifier notifications.Notifier) Services {
	var s Services
	s.Academics = academicService.NewService(st.Academics)
	s.Fees = feeService.NewService(st.Fees, s.Academics)
	s.Plans = planService.NewService(st.Plans)
	s.Invoices = invoiceService.NewService(st.Invoices, s.Fees, s.Plans, notifier)
	s.Payments = paymentService.NewService(st.Payments, notifier, paymentService.ParsePolicy(cfg.OverpaymentPolicy))
	s.Admissions = admissionService.NewService(st.Admissions, s.Academics, s.Invoices, notifier)

	s.Invoices.SetEnrollmentHook(s.Admissions)
	if d, ok := notifier.(*notifications.Dispatcher); ok {
		d.SetRecipients(s.Admissions)
	}
	if cfg.MidtransServerKey != "" {
		s.Payments.SetGateway(paymentService.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransUseProd))
		log.Printf("[INFO] midtrans checkout enabled (production=%v)", cfg.MidtransUseProd)
	}
	return s
}

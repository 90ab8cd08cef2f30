package details

import (
	"github.com/gofiber/fiber/v2"

	feeRoute "schoolfee_backend/internals/features/finance/fees/route"
	feeService "schoolfee_backend/internals/features/finance/fees/service"
	planRoute "schoolfee_backend/internals/features/finance/installments/route"
	planService "schoolfee_backend/internals/features/finance/installments/service"
	invoiceRoute "schoolfee_backend/internals/features/finance/invoices/route"
	invoiceService "schoolfee_backend/internals/features/finance/invoices/service"
	paymentRoute "schoolfee_backend/internals/features/finance/payments/route"
	paymentService "schoolfee_backend/internals/features/finance/payments/service"
)

type FinanceServices struct {
	Fees     *feeService.Service
	Plans    *planService.Service
	Invoices *invoiceService.Service
	Payments *paymentService.Service
}

func FinancePublicRoutes(r fiber.Router, s FinanceServices) {
	feeRoute.FeePublicRoutes(r, s.Fees)
	planRoute.InstallmentPublicRoutes(r, s.Plans)
	invoiceRoute.InvoicePublicRoutes(r, s.Invoices, s.Payments)
	paymentRoute.PaymentPublicRoutes(r, s.Payments)
}

func FinanceAdminRoutes(r fiber.Router, s FinanceServices) {
	feeRoute.FeeAdminRoutes(r, s.Fees)
	planRoute.InstallmentAdminRoutes(r, s.Plans)
	invoiceRoute.InvoiceAdminRoutes(r, s.Invoices, s.Payments)
	paymentRoute.PaymentAdminRoutes(r, s.Payments)
}

func FinanceWebhookRoutes(r fiber.Router, s FinanceServices) {
	paymentRoute.PaymentWebhookRoutes(r, s.Payments)
}

package controller_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	paymentRoute "schoolfee_backend/internals/features/finance/payments/route"
	"schoolfee_backend/internals/features/finance/payments/service"
	helperAuth "schoolfee_backend/internals/helpers/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newApp(t *testing.T, policy service.OverpaymentPolicy) (*fiber.App, uuid.UUID) {
	t.Helper()
	db := inmem.New()
	inv := invoiceModel.Invoice{
		InvoiceNo:          "INV-20250101-ABCDEF12",
		InvoiceStudentID:   uuid.New(),
		InvoiceTermID:      uuid.New(),
		InvoiceKind:        invoiceModel.InvoiceKindRegular,
		InvoiceTotalAmount: decimal.NewFromInt(500),
	}
	inv.ApplyPaid(decimal.Zero)
	require.NoError(t, inmem.NewInvoiceStore(db).Create(context.Background(), &inv))

	svc := service.NewService(inmem.NewPaymentStore(db), nil, policy)
	app := fiber.New()
	admin := app.Group("/api/a", func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocStaffSubject, "bursar-9")
		return c.Next()
	})
	paymentRoute.PaymentAdminRoutes(admin, svc)
	paymentRoute.PaymentPublicRoutes(app.Group("/api/public"), svc)
	paymentRoute.PaymentWebhookRoutes(app.Group("/api/webhooks"), svc)
	return app, inv.InvoiceID
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestRecordPaymentEndpoint(t *testing.T) {
	app, invoiceID := newApp(t, service.OverpaymentReject)
	path := "/api/a/invoices/" + invoiceID.String() + "/payments"

	code, env := do(t, app, http.MethodPost, path, `{"amount":"200","method":"bank_transfer","reference_no":"TRX-1"}`)
	require.Equal(t, fiber.StatusCreated, code)
	var res struct {
		Payment struct {
			ReceivedBy string `json:"payment_received_by"`
		} `json:"payment"`
		Invoice struct {
			Balance string `json:"invoice_balance"`
			Status  string `json:"invoice_status"`
		} `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "bursar-9", res.Payment.ReceivedBy)
	assert.Equal(t, "300", res.Invoice.Balance)
	assert.Equal(t, "partial", res.Invoice.Status)

	code, _ = do(t, app, http.MethodPost, path, `{"amount":"50","method":"bank_transfer","reference_no":"TRX-1"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, http.MethodPost, path, `{"amount":"301"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = do(t, app, http.MethodPost, path, `{"amount":"0"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = do(t, app, http.MethodPost, "/api/a/invoices/"+uuid.NewString()+"/payments", `{"amount":"1"}`)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, env = do(t, app, http.MethodGet, "/api/public/invoices/"+invoiceID.String()+"/payments", "")
	require.Equal(t, fiber.StatusOK, code)
	var rows []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 1)
}

func TestCheckoutAndWebhook_WithoutGateway(t *testing.T) {
	app, invoiceID := newApp(t, service.OverpaymentAllow)

	code, _ := do(t, app, http.MethodPost, "/api/public/invoices/"+invoiceID.String()+"/checkout", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)

	code, _ = do(t, app, http.MethodPost, "/api/webhooks/midtrans", `{"order_id":"x","status_code":"200","gross_amount":"1.00","signature_key":"00"}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
}

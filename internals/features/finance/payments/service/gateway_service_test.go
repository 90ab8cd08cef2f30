package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/features/finance/payments/service"
)

const serverKey = "SB-Mid-server-test"

type fakeGateway struct {
	requests []service.CheckoutRequest
	fail     error
	during   func()
}

func (g *fakeGateway) Provider() model.GatewayProvider { return model.GatewayProviderMidtrans }

func (g *fakeGateway) CreateTransaction(_ context.Context, req service.CheckoutRequest) (string, string, error) {
	if g.fail != nil {
		return "", "", g.fail
	}
	if g.during != nil {
		g.during()
	}
	g.requests = append(g.requests, req)
	return "tok-" + req.OrderID, "https://pay.example/" + req.OrderID, nil
}

func (g *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return service.VerifyMidtransSignature(serverKey, orderID, statusCode, grossAmount, signature)
}

func signed(orderID, status, gross string) service.Notification {
	return service.Notification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: status,
		TransactionID:     "trx-" + orderID,
		SignatureKey:      service.MidtransSignature(serverKey, orderID, "200", gross),
	}
}

func gatewaySetup(t *testing.T) (*service.Service, *fakeGateway, *inmem.DB, invoiceModel.Invoice) {
	t.Helper()
	db := inmem.New()
	svc := service.NewService(inmem.NewPaymentStore(db), nil, service.OverpaymentAllow)
	gw := &fakeGateway{}
	svc.SetGateway(gw)
	return svc, gw, db, seedInvoice(t, db, "4500.40")
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	svc, gw, _, inv := gatewaySetup(t)

	res, err := svc.Checkout(ctx, inv.InvoiceID, service.Customer{Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "4501", res.Amount.String(), "gateway amounts round up to whole units")
	assert.Contains(t, res.OrderID, inv.InvoiceNo)
	assert.Equal(t, "tok-"+res.OrderID, res.Token)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(4501), gw.requests[0].GrossAmount)

	_, err = svc.Checkout(ctx, uuid.New(), service.Customer{})
	assert.ErrorIs(t, err, service.ErrInvoiceNotFound)

	gw.fail = errors.New("snap down")
	_, err = svc.Checkout(ctx, inv.InvoiceID, service.Customer{})
	assert.Error(t, err)
}

func TestCheckout_Disabled(t *testing.T) {
	db := inmem.New()
	svc := service.NewService(inmem.NewPaymentStore(db), nil, service.OverpaymentAllow)
	_, err := svc.Checkout(context.Background(), seedInvoice(t, db, "10").InvoiceID, service.Customer{})
	assert.ErrorIs(t, err, service.ErrGatewayDisabled)
}

func TestHandleNotification_SettlementRecordsOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, db, inv := gatewaySetup(t)
	co, err := svc.Checkout(ctx, inv.InvoiceID, service.Customer{})
	require.NoError(t, err)

	out, err := svc.HandleNotification(ctx, signed(co.OrderID, "pending", "4501.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventIgnored, out.Status)

	out, err = svc.HandleNotification(ctx, signed(co.OrderID, "settlement", "4501.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventProcessed, out.Status)
	require.NotNil(t, out.PaymentID)

	again, err := svc.HandleNotification(ctx, signed(co.OrderID, "settlement", "4501.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventIgnored, again.Status)
	assert.Equal(t, *out.PaymentID, *again.PaymentID)

	rows, err := svc.ListForInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.PaymentMethodGateway, rows[0].PaymentMethod)
	assert.Equal(t, co.OrderID, *rows[0].PaymentGatewayOrderID)

	stored, err := inmem.NewInvoiceStore(db).Get(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, stored.InvoiceStatus)

	events := db.GatewayEvents(co.OrderID)
	require.Len(t, events, 3)
	assert.Equal(t, model.GatewayEventProcessed, events[1].GatewayEventStatus)
	assert.NotNil(t, events[1].GatewayEventProcessedAt)
}

func TestHandleNotification_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _, db, inv := gatewaySetup(t)
	co, err := svc.Checkout(ctx, inv.InvoiceID, service.Customer{})
	require.NoError(t, err)

	forged := signed(co.OrderID, "settlement", "4501.00")
	forged.GrossAmount = "1.00"
	_, err = svc.HandleNotification(ctx, forged, nil)
	assert.ErrorIs(t, err, service.ErrInvalidSignature)
	assert.Empty(t, db.GatewayEvents(co.OrderID), "unsigned callbacks are not logged")

	out, err := svc.HandleNotification(ctx, signed("unknown-order", "settlement", "10.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventIgnored, out.Status)
	assert.Equal(t, "unknown order", out.Reason)

	challenged := signed(co.OrderID, "capture", "4501.00")
	challenged.FraudStatus = "challenge"
	out, err = svc.HandleNotification(ctx, challenged, nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventIgnored, out.Status)

	rows, err := svc.ListForInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandleNotification_SettlementCappedUnderRejectPolicy(t *testing.T) {
	ctx := context.Background()
	db := inmem.New()
	svc := service.NewService(inmem.NewPaymentStore(db), nil, service.OverpaymentReject)
	svc.SetGateway(&fakeGateway{})
	inv := seedInvoice(t, db, "4500.40")

	co, err := svc.Checkout(ctx, inv.InvoiceID, service.Customer{})
	require.NoError(t, err)
	require.Equal(t, "4501", co.Amount.String())

	out, err := svc.HandleNotification(ctx, signed(co.OrderID, "settlement", "4501.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventProcessed, out.Status)
	assert.Equal(t, "surplus 0.60 not applied", out.Reason)

	rows, err := svc.ListForInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "4500.40", rows[0].PaymentAmount.StringFixed(2))

	stored, err := inmem.NewInvoiceStore(db).Get(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, stored.InvoiceStatus)
	assert.True(t, stored.InvoiceBalance.IsZero(), "no credit left behind by the whole-unit charge")

	// a settlement landing after the invoice was paid by other means is still recorded
	late := seedInvoice(t, db, "100")
	co2, err := svc.Checkout(ctx, late.InvoiceID, service.Customer{})
	require.NoError(t, err)
	_, _, err = svc.RecordPayment(ctx, pay(late.InvoiceID, "100"))
	require.NoError(t, err)
	out, err = svc.HandleNotification(ctx, signed(co2.OrderID, "settlement", "100.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayEventProcessed, out.Status)

	late, err = inmem.NewInvoiceStore(db).Get(ctx, late.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "-100.00", late.InvoiceBalance.StringFixed(2))
}

func TestCheckout_GatewayCallDoesNotHoldInvoice(t *testing.T) {
	ctx := context.Background()
	svc, gw, _, inv := gatewaySetup(t)

	paid := make(chan error, 1)
	gw.during = func() {
		go func() {
			_, _, err := svc.RecordPayment(ctx, pay(inv.InvoiceID, "100"))
			paid <- err
		}()
		select {
		case err := <-paid:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("payment blocked while the gateway was being called")
		}
	}

	co, err := svc.Checkout(ctx, inv.InvoiceID, service.Customer{})
	require.NoError(t, err)
	assert.Equal(t, "4501", co.Amount.String(), "amount comes from the balance read before the call")
}

func TestVerifyMidtransSignature(t *testing.T) {
	sig := service.MidtransSignature(serverKey, "o-1", "200", "10.00")
	assert.Len(t, sig, 128)
	assert.True(t, service.VerifyMidtransSignature(serverKey, "o-1", "200", "10.00", sig))
	assert.False(t, service.VerifyMidtransSignature("", "o-1", "200", "10.00", sig))
	assert.False(t, service.VerifyMidtransSignature(serverKey, "o-1", "201", "10.00", sig))
}

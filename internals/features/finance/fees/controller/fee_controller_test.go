package controller_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	feeRoute "schoolfee_backend/internals/features/finance/fees/route"
	"schoolfee_backend/internals/features/finance/fees/service"
)

type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Data      json.RawMessage     `json:"data"`
}

func newApp() *fiber.App {
	app := fiber.New()
	feeRoute.FeeAdminRoutes(app.Group("/api/a"), service.NewService(inmem.NewFeeStore(inmem.New()), nil))
	return app
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

func TestFeeRuleEndpoints(t *testing.T) {
	app := newApp()

	code, env := do(t, app, http.MethodPost, "/api/a/fee-groups", `{"fee_group_name":"Tuition"}`)
	require.Equal(t, fiber.StatusCreated, code)
	var group struct {
		ID uuid.UUID `json:"fee_group_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &group))

	code, env = do(t, app, http.MethodPost, "/api/a/fee-items",
		`{"fee_item_group_id":"`+group.ID.String()+`","fee_item_name":"Grade 1 Tuition"}`)
	require.Equal(t, fiber.StatusCreated, code)
	var item struct {
		ID uuid.UUID `json:"fee_item_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))

	class := uuid.NewString()
	rule := `{"fee_item_rule_fee_item_id":"` + item.ID.String() + `","fee_item_rule_class_id":"` + class + `","fee_item_rule_amount":4500}`

	code, _ = do(t, app, http.MethodPost, "/api/a/fee-rules", rule)
	assert.Equal(t, fiber.StatusCreated, code)

	code, env = do(t, app, http.MethodPost, "/api/a/fee-rules", rule)
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.ErrorCode)

	code, env = do(t, app, http.MethodGet, "/api/a/fee-rules/resolve?fee_item_id="+item.ID.String()+"&class_id="+class, "")
	require.Equal(t, fiber.StatusOK, code)
	var res struct {
		Amount string `json:"amount"`
		Found  bool   `json:"found"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Found)
	assert.Equal(t, "4500", res.Amount)
}

func TestFeeRuleEndpoints_Validation(t *testing.T) {
	app := newApp()

	code, env := do(t, app, http.MethodPost, "/api/a/fee-rules",
		`{"fee_item_rule_fee_item_id":"`+uuid.NewString()+`","fee_item_rule_class_id":"`+uuid.NewString()+`","fee_item_rule_amount":-5}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "fee_item_rule_amount")

	code, _ = do(t, app, http.MethodGet, "/api/a/fee-rules/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = do(t, app, http.MethodPost, "/api/a/fee-items", `{"fee_item_name":"Bus"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "fee_item_group_id")
}

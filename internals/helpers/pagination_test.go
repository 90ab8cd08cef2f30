package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, query string, opt Options) Params {
	t.Helper()
	var got Params
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParseFiber(c, "created_at", "desc", opt)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	require.NoError(t, err)
	return got
}

func TestParseFiber(t *testing.T) {
	p := parseWith(t, "", DefaultOpts)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, "created_at", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)

	p = parseWith(t, "?page=3&limit=10&sort_by=name&order=ASC", DefaultOpts)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, "asc", p.SortOrder)

	p = parseWith(t, "?per_page=10000", DefaultOpts)
	assert.Equal(t, 200, p.PerPage)

	p = parseWith(t, "?per_page=all&page=4", AdminOpts)
	assert.True(t, p.All)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 5_000, p.PerPage)

	p = parseWith(t, "?per_page=all", DefaultOpts)
	assert.False(t, p.All)
	assert.Equal(t, 25, p.PerPage)
}

func TestSafeOrderClause(t *testing.T) {
	allowed := map[string]string{"created_at": "invoice_created_at", "due": "invoice_due_date"}

	clause, err := Params{SortBy: "due", SortOrder: "asc"}.SafeOrderClause(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "invoice_due_date ASC", clause)

	clause, err = Params{SortBy: "1; drop table invoices", SortOrder: "asc"}.SafeOrderClause(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "invoice_created_at ASC", clause)

	_, err = Params{SortBy: "x"}.SafeOrderClause(allowed, "missing")
	assert.Error(t, err)
}

func TestBuildMeta(t *testing.T) {
	m := BuildMeta(45, Params{Page: 2, PerPage: 20})
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)
	require.NotNil(t, m.NextPage)
	assert.Equal(t, 3, *m.NextPage)

	m = BuildMeta(0, Params{Page: 1, PerPage: 20})
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasNext)
	assert.Nil(t, m.PrevPage)
}

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helperAuth "schoolfee_backend/internals/helpers/auth"
	"schoolfee_backend/internals/middlewares/auth"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func app() *fiber.App {
	a := fiber.New()
	g := a.Group("/api/a", auth.AuthJWT(auth.AuthJWTOpts{Secret: secret}), auth.StaffOnly())
	g.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(helperAuth.Actor(c))
	})
	return a
}

func call(t *testing.T, a *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/a/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestAuthJWT(t *testing.T) {
	a := app()
	exp := time.Now().Add(time.Hour).Unix()

	code, body := call(t, a, sign(t, jwt.MapClaims{"sub": "bursar-1", "role": "Bursar", "exp": exp}, secret))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "bursar-1", body)

	code, _ = call(t, a, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, a, sign(t, jwt.MapClaims{"sub": "bursar-1", "role": "bursar", "exp": exp}, "other-secret"))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, a, sign(t, jwt.MapClaims{"sub": "bursar-1", "role": "bursar", "exp": time.Now().Add(-time.Hour).Unix()}, secret))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, a, sign(t, jwt.MapClaims{"sub": "teacher-9", "role": "teacher", "exp": exp}, secret))
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, a, sign(t, jwt.MapClaims{"role": "admin", "exp": exp}, secret))
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

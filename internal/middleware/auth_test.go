package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newAuthApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(secret), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c).String() + " " + GetRole(c))
	})
	app.Get("/ops", Protected(secret), RequireOperator(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := newAuthApp("s3cret")
	token, err := GenerateToken(uuid.New(), models.RoleCitizen, "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	forged, _ := GenerateToken(uuid.New(), models.RoleOperator, "other")

	if got := request(t, app, "/me", token); got != http.StatusOK {
		t.Errorf("valid token status = %d", got)
	}
	if got := request(t, app, "/me", forged); got != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", got)
	}
	if got := request(t, app, "/me", ""); got != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", got)
	}
}

func TestRequireOperator(t *testing.T) {
	app := newAuthApp("s3cret")
	citizen, _ := GenerateToken(uuid.New(), models.RoleCitizen, "s3cret")
	operator, _ := GenerateToken(uuid.New(), models.RoleOperator, "s3cret")

	if got := request(t, app, "/ops", citizen); got != http.StatusForbidden {
		t.Errorf("citizen status = %d, want 403", got)
	}
	if got := request(t, app, "/ops", operator); got != http.StatusNoContent {
		t.Errorf("operator status = %d, want 204", got)
	}
}

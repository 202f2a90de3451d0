package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reachjvc/Daygame-coach-sub004/internal/config"
)

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Auth        bool   `json:"auth"`
	Description string `json:"description"`
}

var apiEndpoints = []endpointDoc{
	{Method: "POST", Path: "/api/auth/register", Auth: false, Description: "Create an account and receive a bearer token"},
	{Method: "POST", Path: "/api/auth/login", Auth: false, Description: "Exchange credentials for a bearer token"},
	{Method: "GET", Path: "/api/auth/me", Auth: true, Description: "Current account details"},
	{Method: "PUT", Path: "/api/v1/users/timezone", Auth: true, Description: "Set the account's IANA timezone"},
	{Method: "POST", Path: "/api/v1/sessions", Auth: true, Description: "Open a tracking session, optionally with an approach goal"},
	{Method: "GET", Path: "/api/v1/sessions", Auth: true, Description: "List own sessions, filterable by state (active/closed)"},
	{Method: "GET", Path: "/api/v1/sessions/:id", Auth: true, Description: "Session detail including its approaches"},
	{Method: "POST", Path: "/api/v1/sessions/:id/approaches", Auth: true, Description: "Append an approach with its outcome"},
	{Method: "POST", Path: "/api/v1/sessions/:id/finalize", Auth: true, Description: "Close the session and fold it into cumulative stats"},
	{Method: "GET", Path: "/api/v1/stats", Auth: true, Description: "Cumulative totals, weekly counters and streaks"},
	{Method: "GET", Path: "/api/v1/milestones", Auth: true, Description: "Milestones granted so far"},
	{Method: "GET", Path: "/api/ws", Auth: true, Description: "WebSocket pushing milestone_awarded events"},
}

// registerDocsRoutes exposes a machine-readable endpoint catalog in
// development environments only.
func registerDocsRoutes(app *fiber.App, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":      "daygame tracker API",
			"endpoints": apiEndpoints,
		})
	})
	return nil
}

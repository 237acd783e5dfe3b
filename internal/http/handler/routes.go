package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"civicdocs/internal/auth"
	"civicdocs/internal/http/middleware"
	"civicdocs/internal/service"
)

// RouteDeps carries everything RegisterRoutes wires into the app.
type RouteDeps struct {
	DB        *sql.DB
	Documents service.DocumentService
	Retention service.RetentionService
	Stats     service.StatsService
	Auth      *auth.Service
	// UploadTmpDir is where multipart uploads are spooled before validation.
	UploadTmpDir string
}

// RegisterRoutes attaches the HTTP routes to the provided Fiber app. Handlers
// stay thin; authorization beyond role gating lives in the service layer.
func RegisterRoutes(app *fiber.App, deps RouteDeps) {
	// Serve the OpenAPI spec and Swagger UI.
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.RequireAuth(deps.Auth))

	docs := api.Group("/documents")
	docs.Post("/upload", UploadDocument(deps.Documents, deps.UploadTmpDir))
	docs.Get("/:id/download", DownloadDocument(deps.Documents))
	docs.Post("/:id/verify", middleware.RequireRole(auth.RoleStaff, auth.RoleAdmin), VerifyDocument(deps.Documents))
	docs.Delete("/:id", DeleteDocument(deps.Documents))
	docs.Get("/:requestID", ListRequestDocuments(deps.Documents))

	admin := api.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	admin.Post("/documents/cleanup", AdminCleanup(deps.Retention))
	admin.Get("/statistics", AdminStatistics(deps.Stats))
}

package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"doctransfer/docs"
	"doctransfer/internal/events"
	"doctransfer/internal/http/middleware"
	"doctransfer/internal/identity"
	"doctransfer/internal/service"
)

// Deps holds everything the HTTP surface needs.
type Deps struct {
	DB          *sql.DB
	Documents   service.DocumentService
	Audit       service.AuditLog
	Directory   identity.Directory
	Resolver    middleware.TokenResolver
	Dispatcher  *events.Dispatcher
	EventsToken string
	Gatherer    prometheus.Gatherer
	Log         *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	app.Post("/events/s3", middleware.StaticToken(d.EventsToken), S3Events(d.Dispatcher))

	auth := middleware.Auth(d.Resolver, d.Directory, d.Log)

	app.Get("/docs", auth, ListDocuments(d.Documents))
	app.Post("/docs/:shareId", auth, UpdateDocument(d.Documents))

	// /share/users must be registered before /share/:shareId.
	app.Get("/share/users", auth, ListShareUsers(d.Directory))
	app.Get("/share/:shareId", auth, DownloadLink(d.Documents))
	app.Post("/share/:shareId", auth, ShareDocument(d.Documents))

	app.Post("/uploads", auth, CreateUploadLink(d.Documents))

	app.Get("/audit", auth, ListAudit(d.Audit))
	app.Get("/audit/export", auth, ExportAudit(d.Audit))
}

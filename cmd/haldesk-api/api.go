// Package main provides the haldesk workflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/haldesk/haldesk/pkg/conditions"
	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/metrics"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/registry"
	"github.com/haldesk/haldesk/pkg/web"
	"github.com/haldesk/haldesk/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
	promReg     *prometheus.Registry
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	promReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		promReg:     promReg,
	}
}

func (a *API) App() *fiber.App {
	orchestrator := workflow.NewOrchestrator(
		a.persistence,
		a.registry,
		conditions.NewEvaluator(a.logger),
		a.logger,
	).
		WithEventBus(a.eventBus).
		WithMetrics(metrics.New(a.promReg))

	if a.tracer != nil {
		orchestrator = orchestrator.WithTracer(a.tracer)
	}

	handlers := web.NewAPIHandlers(orchestrator, a.registry, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Haldesk Workflow API")
	})

	tickets := app.Group("/tickets")
	tickets.Get("/:id/transitions", handlers.AvailableTransitions)
	tickets.Post("/:id/transitions/:transitionId/execute", handlers.ExecuteTransition)
	tickets.Get("/:id/history", handlers.TicketHistory)

	types := app.Group("/workflow-types")
	types.Get("/:id/stats", handlers.TypeStats)
	types.Get("/:id/success-rate", handlers.SuccessRate)
	types.Get("/:id/export", handlers.ExportConfiguration)
	types.Post("/import", handlers.ImportConfiguration)
	types.Get("/:id/versions", handlers.ListVersions)
	types.Post("/:id/versions", handlers.SnapshotVersion)

	app.Post("/versions/:id/restore", handlers.RestoreVersion)

	actions := app.Group("/actions")
	actions.Get("/", handlers.AvailableActions)
	actions.Get("/:type/schema", handlers.ActionSchema)

	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{})))

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

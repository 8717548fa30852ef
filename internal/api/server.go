package api

import (
	"context"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/auth"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/lifecycle"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

// Service is the set of node operations the API exposes.
type Service interface {
	Provision(ctx context.Context) (*node.Info, error)
	Get(ctx context.Context, id int) (*node.Info, error)
	List(ctx context.Context) ([]*node.Info, error)
	Count(ctx context.Context) (int, error)
	Logs(ctx context.Context, id int) ([]string, error)
	Events(ctx context.Context, id int) ([]audit.Event, error)
	Health(ctx context.Context, id int) (*health.CheckResult, error)
	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Recreate(ctx context.Context, id int) error
	StartAll(ctx context.Context) ([]lifecycle.BulkResult, error)
	StopAll(ctx context.Context) ([]lifecycle.BulkResult, error)
	RecreateAll(ctx context.Context) ([]lifecycle.BulkResult, error)
	StartNames(ctx context.Context, names []string) []lifecycle.BulkResult
	StopNames(ctx context.Context, names []string) []lifecycle.BulkResult
	RequestDeletion(ctx context.Context, id int) (time.Time, error)
	ConfirmDeletion(ctx context.Context, id int) error
}

var _ Service = (*lifecycle.Orchestrator)(nil)

// Config holds server settings.
type Config struct {
	// Listen is the address to bind, e.g. ":3000"
	Listen string

	// RequestTimeout bounds every request's context; zero disables it
	RequestTimeout time.Duration

	// Signer verifies bearer tokens; nil disables authentication
	Signer *auth.Signer
}

// Server is the management API server.
type Server struct {
	app *fiber.App
	cfg Config
}

// NewServer builds the fiber app and registers every route.
func NewServer(svc Service, cfg Config) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "ruche",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(requestLogger())
	app.Use(compress.New())

	h := &handlers{svc: svc}
	app.Get("/healthz", h.liveness)

	app.Use(requestTimeout(cfg.RequestTimeout))
	if cfg.Signer != nil {
		app.Use(bearerAuth(cfg.Signer))
	} else {
		logging.Warn("API authentication disabled; set api.jwt_secret to enable it")
	}

	bee := app.Group("/bee")
	bee.Post("/", h.provision)
	bee.Get("/:id", h.get)
	bee.Get("/:id/logs", h.logs)
	bee.Get("/:id/events", h.events)
	bee.Get("/:id/health", h.health)
	bee.Post("/:id/start", h.start)
	bee.Post("/:id/stop", h.stop)
	bee.Post("/:id/recreate", h.recreate)
	bee.Delete("/:id/req", h.requestDeletion)
	bee.Delete("/:id", h.confirmDeletion)

	bees := app.Group("/bees")
	bees.Get("/", h.list)
	bees.Post("/start", h.startAll)
	bees.Post("/stop", h.stopAll)
	bees.Post("/recreate", h.recreateAll)

	return &Server{app: app, cfg: cfg}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown is called.
func (s *Server) Listen() error {
	logging.Info("management API listening", "addr", s.cfg.Listen)
	return s.app.Listen(s.cfg.Listen)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

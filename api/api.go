package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/verifier"
	"github.com/voxgateco/voxgate/web/ui"
)

// Server is the API server for enrolling and verifying speakers.
type Server struct {
	config   Config
	verifier *verifier.Verifier
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server.
// The verifier is injected to allow sharing with other components
// (e.g., the MCP server and the CLI when run in-process).
func NewServer(config Config, vrf *verifier.Verifier, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	s := &Server{
		config:   config,
		verifier: vrf,
		logger:   logger,
		app:      app,
	}

	app.Get("/", s.handleIndex)
	app.Get("/ping", s.handlePing)
	app.Post("/v1/speakers/enroll", s.handleEnroll)
	app.Post("/v1/speakers/verify", s.handleVerify)
	app.Get("/v1/speakers", s.handleListSpeakers)
	app.Delete("/v1/speakers", s.handleClear)

	return s
}

// MountMCP mounts an MCP handler under /mcp.
func (s *Server) MountMCP(handler http.Handler) {
	s.app.All("/mcp", adaptor.HTTPHandler(handler))
}

// handleIndex serves the embedded browser UI.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(ui.IndexHTML)
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

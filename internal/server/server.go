package server

import (
	"context"
	"errors"

	"lecture-rag/internal/models"
	"lecture-rag/internal/rag"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// QuestionAnswerer is the part of rag.Service the HTTP layer needs
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (models.Answer, error)
	Stats(ctx context.Context) models.Stats
	Ready(ctx context.Context) error
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
}

type Server struct {
	app      *fiber.App
	service  QuestionAnswerer
	validate *validator.Validate
	log      *zap.Logger
}

// New builds the HTTP application. allowOrigins is a comma-separated CORS list.
func New(service QuestionAnswerer, allowOrigins string, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "lecture-rag",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())

	s := &Server{
		app:      app,
		service:  service,
		validate: validator.New(),
		log:      log,
	}

	app.Get("/", s.index)
	app.Get("/health", s.health)

	api := app.Group("/api")
	api.Post("/ask", s.ask)
	api.Get("/stats", s.stats)

	return s
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run listens on port until the server is shut down
func (s *Server) Run(port string) error {
	s.log.Info("Server is running", zap.String("url", "http://localhost:"+port))
	return s.app.Listen(":" + port)
}

// Shutdown stops accepting connections and waits for open requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) ask(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Question is empty"})
	}

	answer, err := s.service.Ask(c.UserContext(), req.Question)
	if errors.Is(err, rag.ErrEmptyQuestion) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Question is empty"})
	}
	if err != nil {
		s.log.Error("Ask failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(answer)
}

func (s *Server) stats(c *fiber.Ctx) error {
	return c.JSON(s.service.Stats(c.UserContext()))
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx := c.UserContext()
	database := "ready"
	if err := s.service.Ready(ctx); err != nil {
		s.log.Warn("Index store unavailable", zap.Error(err))
		database = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": database,
		"chunks":   s.service.Stats(ctx).TotalChunks,
	})
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

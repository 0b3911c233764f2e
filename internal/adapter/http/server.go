package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume-builder/internal/config"
)

// Server is the fiber app with every route and middleware attached.
type Server struct {
	App     *fiber.App
	limiter *limiterSet
	logger  *slog.Logger
}

// Deps are the collaborators the routes need.
type Deps struct {
	Resume *Handler
	AI     *AIHandler
	// Gatherer backs the metrics route; nil disables it.
	Gatherer prometheus.Gatherer
	// Health adds fields to the /healthz answer.
	Health func() fiber.Map
	Logger *slog.Logger
}

func NewServer(cfg *config.Config, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "resume-builder",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(logger))

	s := &Server{App: app, logger: logger}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok"}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		return c.JSON(body)
	})
	if cfg.Metrics.Enabled && d.Gatherer != nil {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/", d.Resume.Form)
	app.Get("/resume/", d.Resume.Form)

	post := app.Group("")
	if cfg.RateLimit.Enabled {
		s.limiter = newLimiterSet(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Burst, 10*time.Minute)
		post.Use(func(c *fiber.Ctx) error {
			if c.Method() != fiber.MethodPost {
				return c.Next()
			}
			return s.limiter.middleware()(c)
		})
	}

	post.Post("/generate-resume/", d.Resume.Generate)
	post.Post("/preview/", d.Resume.Preview)
	post.Post("/api/resume", d.Resume.FromJSON)

	ai := post.Group("/ai")
	ai.Post("/enhance/", d.AI.Enhance)
	ai.Post("/enhance-summary/", d.AI.EnhanceSummary)
	ai.Post("/analyze-job/", d.AI.AnalyzeJob)
	ai.Post("/suggest-skills/", d.AI.SuggestSkills)
	ai.Post("/match-resume/", d.AI.MatchResume)
	ai.Post("/rank-candidates/", d.AI.RankCandidates)

	return s
}

// Listen blocks serving addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.App.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.close()
	}
	return s.App.ShutdownWithContext(ctx)
}

// requestLogger puts the request id into the request context for the
// pipeline's logs and writes one access line per request.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.GetRespHeader(fiber.HeaderXRequestID)
		ctx := config.WithRequestID(c.UserContext(), id)
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// let the error handler set the final status before logging it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"elapsed", time.Since(start),
			"ip", c.IP(),
		)
		return nil
	}
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

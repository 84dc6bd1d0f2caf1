package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
)

const (
	extractionPrefix  = "Failed to parse PDF: "
	unexpectedMessage = "An unexpected internal server error occurred."
)

// SetupRouter builds the fiber app. m may be nil, in which case /metrics is
// not served.
func SetupRouter(h *Handler, cfg config.ServerConfig, m *metrics.Metrics, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "card-statement-parser",
		BodyLimit:             cfg.MaxUploadBytes,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(appLogger),
	})

	// Middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(accessLog(appLogger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", h.HandleHealth)
	// Routing is not strict, so this also serves /parse-statement.
	app.Post("/parse-statement/", h.HandleParse)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	return app
}

// errorHandler is the single place errors become responses: client errors
// keep their message, anything uncategorized gets a generic one.
func errorHandler(appLogger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Detail: fe.Message})
		}

		switch failure.KindOf(err) {
		case failure.KindInput, failure.KindAuth:
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Detail: failure.Message(err, "")})
		case failure.KindExtraction:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: extractionPrefix + failure.Message(err, "")})
		default:
			appLogger.Error("unhandled error",
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: unexpectedMessage})
		}
	}
}

// accessLog writes one line per request. Errors from later handlers are
// rendered here so the logged status is the one sent.
func accessLog(appLogger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		appLogger.Info("request",
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

package api

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/pipeline"
)

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	service *pipeline.Service
	logger  *zap.Logger
	version string
}

func NewHandler(service *pipeline.Service, logger *zap.Logger, version string) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		version: version,
	}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Version: h.version})
}

// HandleParse accepts a multipart form with "password", "file" and an
// optional "issuer" and returns the parsed statement. Errors are left to the
// app's ErrorHandler.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	up := pipeline.Upload{
		Password: c.FormValue("password"),
		Issuer:   c.FormValue("issuer"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.logger.Debug("no file in request", zap.Error(err))
	} else {
		data, err := readFormFile(file)
		if err != nil {
			return failure.Input("Failed to read the uploaded file.").Wrap(err)
		}
		up.Filename = file.Filename
		up.ContentType = file.Header.Get(fiber.HeaderContentType)
		up.Data = data
	}

	result, err := h.service.Parse(c.UserContext(), up)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

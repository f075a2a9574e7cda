package caption

import (
	"encoding/base64"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the caption endpoint. It echoes permissive CORS headers
// and answers preflight with a bare 200 so browser clients can call it
// directly.
type Handler struct {
	generator Generator
	logger    *slog.Logger
}

// NewHandler creates a proxy handler around the given generator.
func NewHandler(generator Generator, logger *slog.Logger) *Handler {
	return &Handler{generator: generator, logger: logger}
}

// Register mounts the endpoint on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Options("/generate-caption", func(c *fiber.Ctx) error {
		h.setCORS(c)
		return c.SendString("ok")
	})
	app.Post("/generate-caption", h.Generate)
}

func (h *Handler) setCORS(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// Generate handles POST /generate-caption.
func (h *Handler) Generate(c *fiber.Ctx) error {
	h.setCORS(c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(Response{Error: "invalid request body"})
	}

	var (
		text string
		err  error
	)
	switch {
	case req.Type == TypeText:
		text, err = h.generator.FromText(c.Context(), req.Prompt)
	case req.Type == TypeImage && req.Image != nil:
		var data []byte
		data, err = base64.StdEncoding.DecodeString(req.Image.Data)
		if err == nil {
			text, err = h.generator.FromImage(c.Context(), data, req.Image.MimeType, req.Prompt)
		}
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(Response{Error: "invalid request type or missing image data"})
	}

	if err != nil {
		h.logger.Error("caption generation failed", slog.String("type", req.Type), slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(Response{Error: err.Error()})
	}

	return c.JSON(Response{Caption: text})
}

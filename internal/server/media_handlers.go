package server

import (
	"encoding/base64"

	"meydan/internal/models"
	"meydan/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps a single media upload at 50 MiB.
const maxUploadBytes = 50 << 20

// UploadMedia handles POST /api/media. The object key embeds the
// uploader's id, so a user can only ever write into their own namespace.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A file field is required"))
	}
	if fileHeader.Size > maxUploadBytes {
		return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
			models.NewValidationError("File exceeds the upload size limit"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	url, err := s.media.Save(userID, fileHeader.Filename, file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":  url,
		"type": storage.KindForFilename(fileHeader.Filename),
	})
}

// GenerateCaption handles POST /api/caption, forwarding to the standalone
// caption proxy. Failures surface as canned fallback text, never as errors.
func (s *Server) GenerateCaption(c *fiber.Ctx) error {
	var req struct {
		Prompt    string `json:"prompt"`
		ImageData string `json:"image_data"`
		MimeType  string `json:"mime_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.ImageData != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("image_data must be base64 encoded"))
		}
		return c.JSON(fiber.Map{
			"caption": s.captions.CaptionFromImage(c.Context(), data, req.MimeType, req.Prompt),
		})
	}

	return c.JSON(fiber.Map{
		"caption": s.captions.CaptionFromText(c.Context(), req.Prompt),
	})
}

package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxProofPhotoSize = 5 * 1024 * 1024

var proofPhotoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadProofPhoto stores an image for a PHOTO task and returns the URL to
// send back as proof.photo_url.
func (h *Handler) UploadProofPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No image file provided")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !proofPhotoExts[ext] {
		return badRequest(c, "Only jpg, png, and webp images are allowed")
	}
	if file.Size > maxProofPhotoSize {
		return badRequest(c, "Image must be under 5MB")
	}

	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		return h.fail(c, fmt.Errorf("create upload dir: %w", err))
	}

	filename := uuid.New().String() + ext
	if err := c.SaveFile(file, filepath.Join(h.Config.UploadDir, filename)); err != nil {
		return h.fail(c, fmt.Errorf("save proof photo: %w", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url": "/uploads/" + filename,
	})
}

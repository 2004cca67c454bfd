package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"video-service/internal/auth"
	"video-service/internal/middleware"
	service "video-service/internal/services"
	utils "video-service/internal/utis"
)

type Handler struct {
	svc *service.VideoService
}

func NewHandler(svc *service.VideoService) *Handler {
	return &Handler{svc: svc}
}

// GET /my
func (h *Handler) ListMy(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
	}
	res, err := h.svc.ListMine(c.UserContext(), id)
	if err != nil {
		return utils.JSONServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, res)
}

// POST /upload (multipart/form-data: file, optional replace_id, duration)
func (h *Handler) Upload(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
	}
	if !id.Can(auth.CapUploadFiles) {
		return utils.JSONServiceError(c, utils.ErrForbidden("Insufficient capability"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.JSONServiceError(c, utils.ErrNoFile())
	}
	f, err := fileHeader.Open()
	if err != nil {
		return utils.JSONServiceError(c, utils.ErrBadUpload())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return utils.JSONServiceError(c, utils.ErrBadUpload())
	}

	replaceID := c.FormValue("replace_id")
	duration, _ := strconv.ParseFloat(c.FormValue("duration"), 64) // optional (recorder flow)

	res, err := h.svc.Upload(c.UserContext(), id, fileHeader.Filename, data, duration, replaceID)
	if err != nil {
		return utils.JSONServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, res)
}

// DELETE /delete/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
	}
	recordID := c.Params("id")
	if recordID == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.UserContext(), id, recordID); err != nil {
		return utils.JSONServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"ok": true})
}

// GET /videos/:id/url -> playback URL (public or presigned)
func (h *Handler) GetSignedURL(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
	}
	url, err := h.svc.PlaybackURL(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return utils.JSONServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"url": url})
}

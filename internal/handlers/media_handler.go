package handlers

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MediaHandler struct {
	attachments *service.AttachmentService
	logger      *zap.Logger
}

func NewMediaHandler(attachments *service.AttachmentService, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{attachments: attachments, logger: logger}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

// Upload stores the multipart "file" field and returns its public URL, which
// the client then sends as a message's file_url.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	if !h.attachments.Enabled() {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "File is required")
	}
	f, err := fh.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "Could not read upload")
	}
	defer f.Close()

	result, err := h.attachments.Upload(c.UserContext(), principal.ID, f)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.logger.Info("attachment stored",
		zap.String("user_id", principal.ID),
		zap.String("key", result.Key),
		zap.Int64("size", result.Size),
		zap.String("content_type", result.ContentType),
	)
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetMedia streams an attachment. A matching If-None-Match short-circuits to
// 304 before the object body is opened.
func (h *MediaHandler) GetMedia(c *fiber.Ctx) error {
	if !h.attachments.Enabled() {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	key := strings.TrimSpace(c.Params("*"))
	ctx := c.UserContext()

	st, err := h.attachments.Stat(ctx, key)
	if err != nil {
		return httpx.FromError(c, err)
	}
	if st.ETag != "" {
		c.Set(fiber.HeaderETag, "\""+st.ETag+"\"")
		if inm := normalizeETag(c.Get(fiber.HeaderIfNoneMatch)); inm != "" && inm == normalizeETag(st.ETag) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	obj, st, err := h.attachments.Open(ctx, key)
	if err != nil {
		return httpx.FromError(c, err)
	}

	if !st.LastModified.IsZero() {
		c.Set(fiber.HeaderLastModified, st.LastModified.UTC().Format(time.RFC1123))
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=31536000, immutable")
	contentType := st.ContentType
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)

	logger := h.logger.With(zap.String("key", key), zap.String("request_id", httpx.RequestID(c)))
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		if copyErr != nil {
			logger.Warn("media stream failed", zap.Int64("copied", n), zap.Error(copyErr))
			return
		}
		if err := w.Flush(); err != nil {
			logger.Warn("media stream flush failed", zap.Int64("copied", n), zap.Error(err))
		}
	})
	return nil
}

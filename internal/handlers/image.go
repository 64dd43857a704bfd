package handlers

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// ImageHandler serves the raster image endpoints.
type ImageHandler struct {
	maxBytes int64
	registry *ops.Registry
}

// NewImageHandler creates the image handler.
func NewImageHandler(cfg config.Config, registry *ops.Registry) *ImageHandler {
	return &ImageHandler{
		maxBytes: cfg.Limits.MaxUploadBytes(),
		registry: registry,
	}
}

// Register mounts the image routes under /api/v1/image.
func (h *ImageHandler) Register(e *echo.Echo) {
	g := e.Group("/api/v1/image")
	g.POST("/convert", h.Convert)
	g.POST("/resize", h.Resize)
	g.POST("/images-to-pdf", h.ImagesToPDF)
}

// Convert re-encodes the uploaded image into the requested format.
func (h *ImageHandler) Convert(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.ImageKinds...)
	if err != nil {
		return err
	}
	format := strings.ToLower(formString(c, "format", "png"))
	quality, err := formInt(c, "quality", 90)
	if err != nil {
		return err
	}

	data, kind, err := ops.ConvertImage(in, format, quality)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("image.convert")
	return attachment(c, kind, fmt.Sprintf("%s.%s", d.DownloadName, format), data)
}

// Resize scales the uploaded image; a zero width or height keeps the aspect
// ratio.
func (h *ImageHandler) Resize(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.ImageKinds...)
	if err != nil {
		return err
	}
	width, err := formInt(c, "width", 0)
	if err != nil {
		return err
	}
	height, err := formInt(c, "height", 0)
	if err != nil {
		return err
	}
	format := strings.ToLower(formString(c, "format", "png"))
	quality, err := formInt(c, "quality", 90)
	if err != nil {
		return err
	}

	data, kind, err := ops.ResizeImage(in, width, height, format, quality)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("image.resize")
	return attachment(c, kind, fmt.Sprintf("%s.%s", d.DownloadName, format), data)
}

// ImagesToPDF builds a PDF with one page per uploaded image, in upload order.
func (h *ImageHandler) ImagesToPDF(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	inputs, err := formFiles(c, scope, "files", h.maxBytes, ops.ImageKinds...)
	if err != nil {
		return err
	}

	data, err := ops.ImagesToPDF(inputs, formString(c, "page_size", "fit"))
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("image.to-pdf")
	return attachment(c, d.OutputKind, d.DownloadName, data)
}

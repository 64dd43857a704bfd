package handlers

import (
	"fmt"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// ConvertHandler serves the document conversion endpoints.
type ConvertHandler struct {
	maxBytes int64
	registry *ops.Registry
}

// NewConvertHandler creates the conversion handler.
func NewConvertHandler(cfg config.Config, registry *ops.Registry) *ConvertHandler {
	return &ConvertHandler{
		maxBytes: cfg.Limits.MaxUploadBytes(),
		registry: registry,
	}
}

// Register mounts the conversion routes under /api/v1/convert.
func (h *ConvertHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/convert/markdown-to-html", h.MarkdownToHTML)
}

// MarkdownToHTML renders the uploaded markdown as a standalone HTML document.
// Markdown has no magic bytes, so the check is inverted: any upload that
// sniffs as a known binary kind is rejected, and the rest must be valid UTF-8.
func (h *ConvertHandler) MarkdownToHTML(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes)
	if err != nil {
		return err
	}
	if in.Kind() != "" || !utf8.Valid(in.Bytes()) {
		return fmt.Errorf("%w: expected markdown text", ops.ErrUnsupportedMedia)
	}

	html, err := ops.MarkdownToHTML(in.Bytes())
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("convert.markdown-to-html")
	return attachment(c, d.OutputKind, d.DownloadName, html)
}

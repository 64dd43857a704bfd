package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// ValidateHandler serves the no-op validation path: it accepts an upload,
// applies the same size and type checks as any conversion route, and returns
// only the detected kind and page validity. It is the cheapest request that
// still exercises the full upload lifecycle.
type ValidateHandler struct {
	maxBytes int64
}

// NewValidateHandler creates the validation handler.
func NewValidateHandler(cfg config.Config) *ValidateHandler {
	return &ValidateHandler{maxBytes: cfg.Limits.MaxUploadBytes()}
}

// Register mounts POST /api/v1/validate.
func (h *ValidateHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/validate", h.Validate)
}

// Validate checks the upload and reports its detected kind without
// producing any output file.
func (h *ValidateHandler) Validate(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	buf, err := formFile(c, scope, "file", h.maxBytes)
	if err != nil {
		return err
	}

	kind := buf.Kind()
	if kind == "" {
		return c.JSON(http.StatusOK, map[string]any{
			"valid": false,
			"kind":  "unknown",
		})
	}

	resp := map[string]any{
		"valid": true,
		"kind":  kind,
	}
	if kind == ops.KindPDF {
		if n, err := ops.PageCount(buf); err == nil {
			resp["pages"] = n
		}
	}
	return c.JSON(http.StatusOK, resp)
}

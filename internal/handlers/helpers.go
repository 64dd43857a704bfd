package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// readPart reads one uploaded file part into a scope-tracked buffer,
// enforcing the size limit and classifying content by magic bytes. The
// client-supplied filename and Content-Type are ignored for everything but
// cosmetic display on the client side.
func readPart(scope *buffer.Scope, fh *multipart.FileHeader, maxBytes int64, accepted ...string) (*buffer.Buffer, error) {
	if fh.Size > maxBytes {
		return nil, sizeLimitError(maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable upload", ops.ErrInvalidInput)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable upload", ops.ErrInvalidInput)
	}
	if int64(len(data)) > maxBytes {
		return nil, sizeLimitError(maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file provided", ops.ErrInvalidInput)
	}

	kind := ops.DetectKind(data)
	if len(accepted) > 0 && !kindAccepted(kind, accepted) {
		return nil, fmt.Errorf("%w: expected %s", ops.ErrUnsupportedMedia, accepted[0])
	}

	return scope.Track(data, kind), nil
}

// formFile reads the single file part named field. A deadline that expired
// during intake is reported here, before the bytes reach a conversion call
// that would not observe the context.
func formFile(c echo.Context, scope *buffer.Scope, field string, maxBytes int64, accepted ...string) (*buffer.Buffer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q file part", ops.ErrInvalidInput, field)
	}
	b, err := readPart(scope, fh, maxBytes, accepted...)
	if err != nil {
		return nil, err
	}
	if err := c.Request().Context().Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// formFiles reads every file part named field, in upload order.
func formFiles(c echo.Context, scope *buffer.Scope, field string, maxBytes int64, accepted ...string) ([]*buffer.Buffer, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: multipart form expected", ops.ErrInvalidInput)
	}
	parts := form.File[field]
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: missing %q file parts", ops.ErrInvalidInput, field)
	}

	bufs := make([]*buffer.Buffer, 0, len(parts))
	for _, fh := range parts {
		b, err := readPart(scope, fh, maxBytes, accepted...)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, b)
	}
	if err := c.Request().Context().Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

func kindAccepted(kind string, accepted []string) bool {
	for _, k := range accepted {
		if k == kind {
			return true
		}
	}
	return false
}

func sizeLimitError(maxBytes int64) error {
	return fmt.Errorf("%w: maximum size is %dMB", ops.ErrTooLarge, maxBytes/(1024*1024))
}

// attachment streams a produced file back with a filename derived from the
// operation descriptor only.
func attachment(c echo.Context, kind, name string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Blob(http.StatusOK, kind, data)
}

// formInt parses an integer form value with a default for absent values.
func formInt(c echo.Context, field string, def int) (int, error) {
	v := c.FormValue(field)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ops.ErrInvalidInput, field)
	}
	return n, nil
}

// formFloat parses a float form value with a default for absent values.
func formFloat(c echo.Context, field string, def float64) (float64, error) {
	v := c.FormValue(field)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ops.ErrInvalidInput, field)
	}
	return f, nil
}

// formString returns a form value with a default for absent values.
func formString(c echo.Context, field, def string) string {
	if v := c.FormValue(field); v != "" {
		return v
	}
	return def
}

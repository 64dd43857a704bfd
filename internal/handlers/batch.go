package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// batchMaxFiles caps how many PDFs one archive may carry. Larger batches
// belong in separate requests so a single request stays bounded in memory.
const batchMaxFiles = 20

// BatchHandler applies one operation to every PDF inside an uploaded ZIP
// archive and returns a ZIP of the results.
type BatchHandler struct {
	maxBytes int64
	registry *ops.Registry
}

// NewBatchHandler creates the batch handler.
func NewBatchHandler(cfg config.Config, registry *ops.Registry) *BatchHandler {
	return &BatchHandler{
		maxBytes: cfg.Limits.MaxUploadBytes(),
		registry: registry,
	}
}

// Register mounts POST /api/v1/batch/process.
func (h *BatchHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/batch/process", h.Process)
}

// Process unpacks the archive, runs the requested operation on each PDF in
// sequence, and streams back an archive of the outputs. Entries that fail
// fail the whole batch; partial archives would hide which inputs were lost.
func (h *BatchHandler) Process(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	archive, err := formFile(c, scope, "file", h.maxBytes, ops.KindZIP)
	if err != nil {
		return err
	}

	entries, err := ops.UnzipPDFs(archive.Bytes(), h.maxBytes, batchMaxFiles)
	if err != nil {
		return err
	}
	inputs := make([]*buffer.Buffer, len(entries))
	for i, e := range entries {
		inputs[i] = scope.Track(e.Data, ops.KindPDF)
	}

	operation := c.FormValue("operation")
	outputs := make([]ops.Result, 0, len(entries))
	for i, e := range entries {
		data, err := h.apply(c, operation, inputs[i])
		if err != nil {
			return err
		}
		out := scope.Track(data, ops.KindPDF)
		outputs = append(outputs, ops.Result{Name: e.Name, Data: out.Bytes()})
	}

	zipped, err := ops.ZipResults(outputs)
	if err != nil {
		return err
	}
	out := scope.Track(zipped, ops.KindZIP)

	d := h.registry.MustLookup("batch.process")
	return attachment(c, d.OutputKind, d.DownloadName, out.Bytes())
}

func (h *BatchHandler) apply(c echo.Context, operation string, in *buffer.Buffer) ([]byte, error) {
	switch operation {
	case "rotate":
		degrees, err := formInt(c, "degrees", 90)
		if err != nil {
			return nil, err
		}
		return ops.RotatePDF(in, nil, degrees)
	case "compress":
		return ops.CompressPDF(in, formString(c, "quality", "medium"))
	case "encrypt":
		return ops.EncryptPDF(in, c.FormValue("password"), formString(c, "permissions", "none"))
	default:
		return nil, fmt.Errorf("%w: operation must be rotate, compress or encrypt", ops.ErrInvalidInput)
	}
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/buffer"
	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/ops"
	"github.com/notracepdf/notracepdf/internal/pages"
)

// PDFHandler serves the PDF manipulation endpoints. Every handler follows
// the same lifecycle: open a scope, read uploads into it, run exactly one
// operation, stream the result, and let the deferred release reclaim every
// buffer on whichever path the request exits by.
type PDFHandler struct {
	maxBytes int64
	registry *ops.Registry
}

// NewPDFHandler creates the PDF handler.
func NewPDFHandler(cfg config.Config, registry *ops.Registry) *PDFHandler {
	return &PDFHandler{
		maxBytes: cfg.Limits.MaxUploadBytes(),
		registry: registry,
	}
}

// Register mounts the PDF routes under /api/v1/pdf.
func (h *PDFHandler) Register(e *echo.Echo) {
	g := e.Group("/api/v1/pdf")
	g.POST("/merge", h.Merge)
	g.POST("/split", h.Split)
	g.POST("/rotate", h.Rotate)
	g.POST("/reorder", h.Reorder)
	g.POST("/delete-pages", h.DeletePages)
	g.POST("/compress", h.Compress)
	g.POST("/password/add", h.AddPassword)
	g.POST("/password/remove", h.RemovePassword)
	g.POST("/watermark/text", h.WatermarkText)
	g.POST("/watermark/image", h.WatermarkImage)
	g.POST("/extract/pages", h.ExtractPages)
	g.POST("/page-numbers", h.PageNumbers)
	g.POST("/page-count", h.PageCount)
	g.POST("/metadata", h.Metadata)
	g.POST("/metadata/remove", h.RemoveMetadata)
}

// Merge combines the uploaded PDFs, in upload order, into one document.
func (h *PDFHandler) Merge(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	inputs, err := formFiles(c, scope, "files", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	merged, err := ops.MergePDFs(inputs)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.merge")
	return attachment(c, d.OutputKind, d.DownloadName, merged)
}

// Split partitions the uploaded PDF; multiple outputs come back as a ZIP.
func (h *PDFHandler) Split(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	mode := ops.SplitMode(formString(c, "mode", "range"))
	start, err := formInt(c, "start", 1)
	if err != nil {
		return err
	}
	end, err := formInt(c, "end", start)
	if err != nil {
		return err
	}
	n, err := formInt(c, "n_pages", 1)
	if err != nil {
		return err
	}
	var specific []int
	if raw := c.FormValue("pages"); raw != "" {
		sel, err := pages.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: bad pages parameter", ops.ErrInvalidInput)
		}
		total, err := ops.PageCount(in)
		if err != nil {
			return err
		}
		specific, err = sel.Resolve(total)
		if err != nil {
			return fmt.Errorf("%w: pages outside document", ops.ErrInvalidInput)
		}
	}

	results, err := ops.SplitPDF(in, mode, start, end, n, specific)
	if err != nil {
		return err
	}
	return h.respondResults(c, scope, "pdf.split", results)
}

// Rotate rotates the selected pages by 90, 180 or 270 degrees.
func (h *PDFHandler) Rotate(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	degrees, err := formInt(c, "degrees", 0)
	if err != nil {
		return err
	}
	selected, err := h.selectedPages(c, in, "pages")
	if err != nil {
		return err
	}

	rotated, err := ops.RotatePDF(in, selected, degrees)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.rotate")
	return attachment(c, d.OutputKind, d.DownloadName, rotated)
}

// Reorder rebuilds the document in the given page order.
func (h *PDFHandler) Reorder(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	order, err := h.explicitPages(c, in, "page_order")
	if err != nil {
		return err
	}

	reordered, err := ops.ReorderPDF(in, order)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.reorder")
	return attachment(c, d.OutputKind, d.DownloadName, reordered)
}

// DeletePages removes the listed pages from the document.
func (h *PDFHandler) DeletePages(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	remove, err := h.explicitPages(c, in, "pages")
	if err != nil {
		return err
	}

	modified, err := ops.DeletePages(in, remove)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.delete-pages")
	return attachment(c, d.OutputKind, d.DownloadName, modified)
}

// Compress rewrites the document through the optimizer.
func (h *PDFHandler) Compress(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	compressed, err := ops.CompressPDF(in, formString(c, "quality", "medium"))
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.compress")
	return attachment(c, d.OutputKind, d.DownloadName, compressed)
}

// AddPassword encrypts the document with the supplied password.
func (h *PDFHandler) AddPassword(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	encrypted, err := ops.EncryptPDF(in, c.FormValue("password"), formString(c, "permissions", "none"))
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.encrypt")
	return attachment(c, d.OutputKind, d.DownloadName, encrypted)
}

// RemovePassword decrypts the document using the supplied password.
func (h *PDFHandler) RemovePassword(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	decrypted, err := ops.DecryptPDF(in, c.FormValue("password"))
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.decrypt")
	return attachment(c, d.OutputKind, d.DownloadName, decrypted)
}

// WatermarkText stamps text onto the selected pages.
func (h *PDFHandler) WatermarkText(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	opts, err := h.watermarkOptions(c, "diagonal")
	if err != nil {
		return err
	}
	selected, err := h.selectedPages(c, in, "pages")
	if err != nil {
		return err
	}

	watermarked, err := ops.TextWatermarkPDF(in, c.FormValue("text"), selected, opts)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.watermark-text")
	return attachment(c, d.OutputKind, d.DownloadName, watermarked)
}

// WatermarkImage stamps an uploaded image onto the selected pages.
func (h *PDFHandler) WatermarkImage(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	img, err := formFile(c, scope, "image", h.maxBytes, ops.ImageKinds...)
	if err != nil {
		return err
	}
	opts, err := h.watermarkOptions(c, "center")
	if err != nil {
		return err
	}
	selected, err := h.selectedPages(c, in, "pages")
	if err != nil {
		return err
	}

	watermarked, err := ops.ImageWatermarkPDF(in, img, selected, opts)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.watermark-image")
	return attachment(c, d.OutputKind, d.DownloadName, watermarked)
}

// ExtractPages pulls the listed pages out as single-page documents.
func (h *PDFHandler) ExtractPages(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	list, err := h.explicitPages(c, in, "pages")
	if err != nil {
		return err
	}

	results, err := ops.ExtractPages(in, list)
	if err != nil {
		return err
	}
	return h.respondResults(c, scope, "pdf.extract-pages", results)
}

// PageNumbers stamps a page number label onto the selected pages.
func (h *PDFHandler) PageNumbers(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}
	fontSize, err := formInt(c, "font_size", 12)
	if err != nil {
		return err
	}
	selected, err := h.selectedPages(c, in, "pages")
	if err != nil {
		return err
	}

	numbered, err := ops.AddPageNumbers(in, selected, ops.PageNumberOptions{
		Format:   formString(c, "format", "Page {page} of {total}"),
		Position: formString(c, "position", "bottom-center"),
		FontSize: fontSize,
		Color:    formString(c, "color", "#000000"),
	})
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.page-numbers")
	return attachment(c, d.OutputKind, d.DownloadName, numbered)
}

// Metadata reports the document information as JSON, without producing a file.
func (h *PDFHandler) Metadata(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	meta, err := ops.ReadMetadata(in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meta)
}

// RemoveMetadata strips the document information dictionary and XMP stream.
func (h *PDFHandler) RemoveMetadata(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	cleaned, err := ops.RemoveMetadata(in)
	if err != nil {
		return err
	}

	d := h.registry.MustLookup("pdf.metadata-remove")
	return attachment(c, d.OutputKind, d.DownloadName, cleaned)
}

// PageCount reports the number of pages without producing a file.
func (h *PDFHandler) PageCount(c echo.Context) error {
	scope := buffer.NewScope()
	defer scope.Release()

	in, err := formFile(c, scope, "file", h.maxBytes, ops.KindPDF)
	if err != nil {
		return err
	}

	n, err := ops.PageCount(in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"pages": n})
}

// selectedPages parses an optional page selection into pdfcpu selection
// strings; an absent or "all" selection returns nil (all pages).
func (h *PDFHandler) selectedPages(c echo.Context, in *buffer.Buffer, field string) ([]string, error) {
	sel, err := pages.Parse(c.FormValue(field))
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s parameter", ops.ErrInvalidInput, field)
	}
	if sel.IsAll() {
		return nil, nil
	}
	total, err := ops.PageCount(in)
	if err != nil {
		return nil, err
	}
	resolved, err := sel.Resolve(total)
	if err != nil {
		return nil, fmt.Errorf("%w: pages outside document", ops.ErrInvalidInput)
	}
	return pages.Strings(resolved), nil
}

// explicitPages parses a required page list into explicit page numbers.
func (h *PDFHandler) explicitPages(c echo.Context, in *buffer.Buffer, field string) ([]int, error) {
	raw := c.FormValue(field)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing %s parameter", ops.ErrInvalidInput, field)
	}
	sel, err := pages.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s parameter", ops.ErrInvalidInput, field)
	}
	total, err := ops.PageCount(in)
	if err != nil {
		return nil, err
	}
	resolved, err := sel.Resolve(total)
	if err != nil {
		return nil, fmt.Errorf("%w: pages outside document", ops.ErrInvalidInput)
	}
	return resolved, nil
}

func (h *PDFHandler) watermarkOptions(c echo.Context, defaultPos string) (ops.WatermarkOptions, error) {
	opacity, err := formFloat(c, "opacity", 0.3)
	if err != nil {
		return ops.WatermarkOptions{}, err
	}
	fontSize, err := formInt(c, "font_size", 48)
	if err != nil {
		return ops.WatermarkOptions{}, err
	}
	scale, err := formFloat(c, "scale", 0.5)
	if err != nil {
		return ops.WatermarkOptions{}, err
	}
	return ops.WatermarkOptions{
		Position: formString(c, "position", defaultPos),
		Opacity:  opacity,
		FontSize: fontSize,
		Color:    formString(c, "color", "#808080"),
		Scale:    scale,
	}, nil
}

// respondResults streams one result directly, or several as a ZIP archive.
// Result data joins the scope so release covers it alongside the inputs.
func (h *PDFHandler) respondResults(c echo.Context, scope *buffer.Scope, opID string, results []ops.Result) error {
	d := h.registry.MustLookup(opID)
	if len(results) == 1 {
		out := scope.Track(results[0].Data, d.OutputKind)
		return attachment(c, out.Kind(), results[0].Name, out.Bytes())
	}

	zipped, err := ops.ZipResults(results)
	if err != nil {
		return err
	}
	out := scope.Track(zipped, ops.KindZIP)
	name := d.DownloadName[:len(d.DownloadName)-len(".pdf")] + ".zip"
	return attachment(c, out.Kind(), name, out.Bytes())
}

package ops

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/notracepdf/notracepdf/internal/buffer"
)

// Result is one produced output file: a name derived from the operation and
// the output bytes.
type Result struct {
	Name string
	Data []byte
}

// newConf returns a per-call pdfcpu configuration. A fresh value per call
// keeps adapters stateless; relaxed validation matches what browsers upload.
func newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// MergePDFs concatenates the inputs into a single document, in order.
func MergePDFs(inputs []*buffer.Buffer) ([]byte, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 PDF files are required for merging", ErrInvalidInput)
	}
	readers := make([]io.ReadSeeker, len(inputs))
	for i, in := range inputs {
		readers[i] = in.Reader()
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages in the document.
func PageCount(in *buffer.Buffer) (int, error) {
	n, err := api.PageCount(in.Reader(), newConf())
	if err != nil {
		return 0, wrapProcessing(err)
	}
	return n, nil
}

// SplitMode selects how SplitPDF partitions a document.
type SplitMode string

const (
	SplitRange    SplitMode = "range"
	SplitEveryN   SplitMode = "every_n"
	SplitSpecific SplitMode = "specific"
)

// SplitPDF partitions the document. Range mode yields one document with pages
// start..end; every_n yields one document per chunk of n pages; specific
// yields one single-page document per listed page.
func SplitPDF(in *buffer.Buffer, mode SplitMode, start, end, n int, specific []int) ([]Result, error) {
	total, err := PageCount(in)
	if err != nil {
		return nil, err
	}

	switch mode {
	case SplitRange:
		if start < 1 || end < start || end > total {
			return nil, fmt.Errorf("%w: page range must lie within 1-%d", ErrInvalidInput, total)
		}
		data, err := trim(in, []string{fmt.Sprintf("%d-%d", start, end)})
		if err != nil {
			return nil, err
		}
		return []Result{{Name: fmt.Sprintf("pages_%d-%d.pdf", start, end), Data: data}}, nil

	case SplitEveryN:
		if n < 1 {
			return nil, fmt.Errorf("%w: chunk size must be at least 1", ErrInvalidInput)
		}
		var results []Result
		for from := 1; from <= total; from += n {
			to := from + n - 1
			if to > total {
				to = total
			}
			data, err := trim(in, []string{fmt.Sprintf("%d-%d", from, to)})
			if err != nil {
				return nil, err
			}
			results = append(results, Result{Name: fmt.Sprintf("pages_%d-%d.pdf", from, to), Data: data})
		}
		return results, nil

	case SplitSpecific:
		if len(specific) == 0 {
			return nil, fmt.Errorf("%w: no pages selected", ErrInvalidInput)
		}
		var results []Result
		for _, p := range specific {
			if p < 1 || p > total {
				return nil, fmt.Errorf("%w: document has %d pages", ErrInvalidInput, total)
			}
			data, err := trim(in, []string{fmt.Sprintf("%d", p)})
			if err != nil {
				return nil, err
			}
			results = append(results, Result{Name: fmt.Sprintf("page_%d.pdf", p), Data: data})
		}
		return results, nil

	default:
		return nil, fmt.Errorf("%w: split mode must be range, every_n or specific", ErrInvalidInput)
	}
}

func trim(in *buffer.Buffer, selected []string) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Trim(in.Reader(), &out, selected, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// RotatePDF rotates the selected pages clockwise by degrees (90, 180, 270).
func RotatePDF(in *buffer.Buffer, selected []string, degrees int) ([]byte, error) {
	switch degrees {
	case 90, 180, 270:
	default:
		return nil, fmt.Errorf("%w: rotation must be 90, 180 or 270 degrees", ErrInvalidInput)
	}
	var out bytes.Buffer
	if err := api.Rotate(in.Reader(), &out, degrees, selected, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// ReorderPDF rebuilds the document with pages in the given order. Every page
// of the original must appear exactly once.
func ReorderPDF(in *buffer.Buffer, order []int) ([]byte, error) {
	total, err := PageCount(in)
	if err != nil {
		return nil, err
	}
	if len(order) != total {
		return nil, fmt.Errorf("%w: page order must list all %d pages", ErrInvalidInput, total)
	}
	seen := make(map[int]bool, total)
	for _, p := range order {
		if p < 1 || p > total || seen[p] {
			return nil, fmt.Errorf("%w: page order must be a permutation of 1-%d", ErrInvalidInput, total)
		}
		seen[p] = true
	}

	selected := make([]string, len(order))
	for i, p := range order {
		selected[i] = fmt.Sprintf("%d", p)
	}
	var out bytes.Buffer
	if err := api.Collect(in.Reader(), &out, selected, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// DeletePages removes the listed pages. Removing every page is rejected.
func DeletePages(in *buffer.Buffer, remove []int) ([]byte, error) {
	total, err := PageCount(in)
	if err != nil {
		return nil, err
	}
	if len(remove) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", ErrInvalidInput)
	}
	distinct := make(map[int]bool, len(remove))
	for _, p := range remove {
		if p < 1 || p > total {
			return nil, fmt.Errorf("%w: document has %d pages", ErrInvalidInput, total)
		}
		distinct[p] = true
	}
	if len(distinct) >= total {
		return nil, fmt.Errorf("%w: cannot delete every page", ErrEmptyResult)
	}

	selected := make([]string, 0, len(distinct))
	for p := range distinct {
		selected = append(selected, fmt.Sprintf("%d", p))
	}
	var out bytes.Buffer
	if err := api.RemovePages(in.Reader(), &out, selected, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// CompressPDF rewrites the document with pdfcpu's optimizer. The quality
// preset is accepted for API compatibility; pdfcpu's optimization is
// lossless, so all presets run the same pass.
func CompressPDF(in *buffer.Buffer, quality string) ([]byte, error) {
	switch quality {
	case "low", "medium", "high":
	default:
		return nil, fmt.Errorf("%w: quality must be low, medium or high", ErrInvalidInput)
	}
	var out bytes.Buffer
	if err := api.Optimize(in.Reader(), &out, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// EncryptPDF password-protects the document using AES-256. The permissions
// preset is "all" or "none".
func EncryptPDF(in *buffer.Buffer, password, permissions string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	conf := newConf()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = 256
	switch permissions {
	case "", "none":
		conf.Permissions = model.PermissionsNone
	case "all":
		conf.Permissions = model.PermissionsAll
	default:
		return nil, fmt.Errorf("%w: permissions must be all or none", ErrInvalidInput)
	}

	var out bytes.Buffer
	if err := api.Encrypt(in.Reader(), &out, conf); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// DecryptPDF removes password protection, authenticating with password.
func DecryptPDF(in *buffer.Buffer, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	conf := newConf()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(in.Reader(), &out, conf); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// WatermarkOptions controls watermark placement and rendering.
type WatermarkOptions struct {
	// Position is center, diagonal, top-left, top-right, bottom-left or
	// bottom-right. Diagonal renders rotated across the page.
	Position string
	Opacity  float64
	// FontSize applies to text watermarks.
	FontSize int
	// Color is a hex value like #808080; applies to text watermarks.
	Color string
	// Scale applies to image watermarks, relative to the page (0-1].
	Scale float64
}

var watermarkAnchors = map[string]string{
	"center":       "c",
	"top-left":     "tl",
	"top-right":    "tr",
	"bottom-left":  "bl",
	"bottom-right": "br",
}

func (o WatermarkOptions) validate() error {
	if o.Position != "diagonal" {
		if _, ok := watermarkAnchors[o.Position]; !ok {
			return fmt.Errorf("%w: position must be center, diagonal or a corner", ErrInvalidInput)
		}
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("%w: opacity must lie within 0-1", ErrInvalidInput)
	}
	return nil
}

func (o WatermarkOptions) textDesc() string {
	desc := fmt.Sprintf("points:%d, op:%.2f, fillcolor:%s", o.FontSize, o.Opacity, o.Color)
	if o.Position == "diagonal" {
		return desc + ", rot:45"
	}
	return fmt.Sprintf("%s, pos:%s, rot:0", desc, watermarkAnchors[o.Position])
}

func (o WatermarkOptions) imageDesc() string {
	desc := fmt.Sprintf("scale:%.2f rel, op:%.2f, rot:0", o.Scale, o.Opacity)
	if o.Position == "diagonal" {
		return desc
	}
	return fmt.Sprintf("%s, pos:%s", desc, watermarkAnchors[o.Position])
}

// TextWatermarkPDF stamps text onto the selected pages.
func TextWatermarkPDF(in *buffer.Buffer, text string, selected []string, opts WatermarkOptions) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: watermark text is required", ErrInvalidInput)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	wm, err := api.TextWatermark(text, opts.textDesc(), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: watermark parameters rejected", ErrInvalidInput)
	}
	return addWatermarks(in, selected, wm)
}

// ImageWatermarkPDF stamps an image onto the selected pages.
func ImageWatermarkPDF(in, img *buffer.Buffer, selected []string, opts WatermarkOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Scale <= 0 || opts.Scale > 1 {
		return nil, fmt.Errorf("%w: scale must lie within 0-1", ErrInvalidInput)
	}
	wm, err := api.ImageWatermarkForReader(img.Reader(), opts.imageDesc(), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: watermark parameters rejected", ErrInvalidInput)
	}
	return addWatermarks(in, selected, wm)
}

func addWatermarks(in *buffer.Buffer, selected []string, wm *model.Watermark) ([]byte, error) {
	var out bytes.Buffer
	if err := api.AddWatermarks(in.Reader(), &out, selected, wm, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

var pageNumberAnchors = map[string]string{
	"bottom-center": "bc",
	"bottom-left":   "bl",
	"bottom-right":  "br",
	"top-center":    "tc",
	"top-left":      "tl",
	"top-right":     "tr",
}

// PageNumberOptions controls page number rendering.
type PageNumberOptions struct {
	// Format is a per-page template; {page} and {total} expand to the page
	// number and the document page count.
	Format   string
	Position string
	FontSize int
	// Color is a hex value like #000000.
	Color string
}

// pageNumberText rewrites the {page}/{total} template into the stamp
// placeholders pdfcpu expands per page. Literal percent signs in the
// template are escaped first so client text cannot smuggle placeholders in.
func pageNumberText(format string) string {
	s := strings.ReplaceAll(format, "%", "%%")
	s = strings.ReplaceAll(s, "{page}", "%p")
	return strings.ReplaceAll(s, "{total}", "%P")
}

// AddPageNumbers stamps a page number label onto the selected pages.
func AddPageNumbers(in *buffer.Buffer, selected []string, opts PageNumberOptions) ([]byte, error) {
	anchor, ok := pageNumberAnchors[opts.Position]
	if !ok {
		return nil, fmt.Errorf("%w: position must be a top or bottom anchor", ErrInvalidInput)
	}
	if opts.FontSize < 4 || opts.FontSize > 144 {
		return nil, fmt.Errorf("%w: font size must lie within 4-144", ErrInvalidInput)
	}
	if !strings.Contains(opts.Format, "{page}") {
		return nil, fmt.Errorf("%w: format must contain {page}", ErrInvalidInput)
	}

	desc := fmt.Sprintf("points:%d, pos:%s, fillcolor:%s, rot:0, op:1", opts.FontSize, anchor, opts.Color)
	wm, err := api.TextWatermark(pageNumberText(opts.Format), desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: page number parameters rejected", ErrInvalidInput)
	}
	return addWatermarks(in, selected, wm)
}

// Metadata is the document information reported without producing a file.
type Metadata struct {
	PageCount        int               `json:"page_count"`
	Version          string            `json:"version"`
	Encrypted        bool              `json:"encrypted"`
	Title            string            `json:"title,omitempty"`
	Author           string            `json:"author,omitempty"`
	Subject          string            `json:"subject,omitempty"`
	Creator          string            `json:"creator,omitempty"`
	Producer         string            `json:"producer,omitempty"`
	CreationDate     string            `json:"creation_date,omitempty"`
	ModificationDate string            `json:"modification_date,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

// ReadMetadata reports the document information dictionary and any custom
// properties. The upload's filename is never consulted or echoed back.
func ReadMetadata(in *buffer.Buffer) (Metadata, error) {
	info, err := api.PDFInfo(in.Reader(), "", nil, false, newConf())
	if err != nil {
		return Metadata{}, wrapProcessing(err)
	}
	return Metadata{
		PageCount:        info.PageCount,
		Version:          info.Version,
		Encrypted:        info.Encrypted,
		Title:            info.Title,
		Author:           info.Author,
		Subject:          info.Subject,
		Creator:          info.Creator,
		Producer:         info.Producer,
		CreationDate:     info.CreationDate,
		ModificationDate: info.ModificationDate,
		Keywords:         info.Keywords,
		Properties:       info.Properties,
	}, nil
}

// RemoveMetadata strips the document information dictionary, including any
// custom properties, and drops the XMP metadata stream from the catalog.
// The rewritten file carries only pdfcpu's own producer and date entries.
func RemoveMetadata(in *buffer.Buffer) ([]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(in.Reader(), newConf())
	if err != nil {
		return nil, wrapProcessing(err)
	}
	ctx.XRefTable.Info = nil
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, wrapProcessing(err)
	}
	rootDict.Delete("Metadata")

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// ExtractPages pulls each listed page out as its own single-page document.
func ExtractPages(in *buffer.Buffer, pagesList []int) ([]Result, error) {
	total, err := PageCount(in)
	if err != nil {
		return nil, err
	}
	if len(pagesList) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", ErrInvalidInput)
	}
	var results []Result
	for _, p := range pagesList {
		if p < 1 || p > total {
			return nil, fmt.Errorf("%w: document has %d pages", ErrInvalidInput, total)
		}
		data, err := trim(in, []string{fmt.Sprintf("%d", p)})
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Name: fmt.Sprintf("page_%d.pdf", p), Data: data})
	}
	return results, nil
}

// PageSizes accepted by ImagesToPDF.
var pageSizeForms = map[string]string{
	"a4":     "f:A4, pos:c",
	"letter": "f:Letter, pos:c",
	"fit":    "",
}

// ImagesToPDF builds a PDF with one page per input image. The fit page size
// shapes each page to its image; a4 and letter center the image on the form.
func ImagesToPDF(inputs []*buffer.Buffer, pageSize string) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrInvalidInput)
	}
	desc, ok := pageSizeForms[pageSize]
	if !ok {
		return nil, fmt.Errorf("%w: page size must be a4, letter or fit", ErrInvalidInput)
	}

	var imp *pdfcpu.Import
	if desc != "" {
		var err error
		imp, err = pdfcpu.ParseImportDetails(desc, types.POINTS)
		if err != nil {
			return nil, wrapProcessing(err)
		}
	}

	readers := make([]io.Reader, len(inputs))
	for i, in := range inputs {
		readers[i] = in.Reader()
	}
	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, newConf()); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

package ops

// Descriptor is the static contract for one operation: accepted input kinds,
// output kind, and the download filename derived from the operation alone
// (user-supplied names never reach Content-Disposition).
type Descriptor struct {
	ID           string
	InputKinds   []string
	OutputKind   string
	DownloadName string
	// MultiFile marks operations that may return several files; those are
	// packaged as an in-memory ZIP with DownloadName carrying a .zip suffix.
	MultiFile bool
}

// Accepts reports whether kind is a valid input kind for the operation.
func (d Descriptor) Accepts(kind string) bool {
	for _, k := range d.InputKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Registry holds all operation descriptors, keyed by ID. Built once at
// process start; never mutated per request and never derived from user input.
type Registry struct {
	byID map[string]Descriptor
}

// NewRegistry builds the descriptor set for every exposed operation.
func NewRegistry() *Registry {
	pdfIn := []string{KindPDF}
	imgIn := ImageKinds

	descriptors := []Descriptor{
		{ID: "pdf.merge", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "merged.pdf"},
		{ID: "pdf.split", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "split.pdf", MultiFile: true},
		{ID: "pdf.rotate", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "rotated.pdf"},
		{ID: "pdf.reorder", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "reordered.pdf"},
		{ID: "pdf.delete-pages", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "modified.pdf"},
		{ID: "pdf.compress", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "compressed.pdf"},
		{ID: "pdf.encrypt", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "protected.pdf"},
		{ID: "pdf.decrypt", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "decrypted.pdf"},
		{ID: "pdf.watermark-text", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "watermarked.pdf"},
		{ID: "pdf.watermark-image", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "watermarked.pdf"},
		{ID: "pdf.extract-pages", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "pages.pdf", MultiFile: true},
		{ID: "pdf.page-numbers", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "numbered.pdf"},
		{ID: "pdf.page-count", InputKinds: pdfIn, OutputKind: "application/json"},
		{ID: "pdf.metadata", InputKinds: pdfIn, OutputKind: "application/json"},
		{ID: "pdf.metadata-remove", InputKinds: pdfIn, OutputKind: KindPDF, DownloadName: "cleaned.pdf"},
		{ID: "image.convert", InputKinds: imgIn, OutputKind: "", DownloadName: "converted"},
		{ID: "image.resize", InputKinds: imgIn, OutputKind: "", DownloadName: "resized"},
		{ID: "image.to-pdf", InputKinds: imgIn, OutputKind: KindPDF, DownloadName: "combined.pdf"},
		{ID: "convert.markdown-to-html", InputKinds: []string{KindMarkdown}, OutputKind: KindHTML, DownloadName: "converted.html"},
		{ID: "batch.process", InputKinds: []string{KindZIP}, OutputKind: KindZIP, DownloadName: "processed.zip"},
		{ID: "validate", InputKinds: nil, OutputKind: "application/json"},
	}

	byID := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	return &Registry{byID: byID}
}

// Lookup returns the descriptor for id. The bool is false for unknown ids.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// MustLookup returns the descriptor for id and panics on unknown ids.
// Operation ids are compile-time constants, so a miss is a programming error.
func (r *Registry) MustLookup(id string) Descriptor {
	d, ok := r.byID[id]
	if !ok {
		panic("ops: unknown operation id: " + id)
	}
	return d
}

package ops

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/notracepdf/notracepdf/internal/buffer"
)

func TestImagesToPDF(t *testing.T) {
	t.Parallel()

	inputs := []*buffer.Buffer{
		buffer.New(pngBytes(t), KindPNG),
		buffer.New(pngBytes(t), KindPNG),
		buffer.New(pngBytes(t), KindPNG),
	}
	for _, size := range []string{"a4", "letter", "fit"} {
		data, err := ImagesToPDF(inputs, size)
		if err != nil {
			t.Fatalf("ImagesToPDF(%s): %v", size, err)
		}
		if n := pageCountOf(t, data); n != 3 {
			t.Fatalf("ImagesToPDF(%s) pages = %d, want 3", size, n)
		}
	}

	if _, err := ImagesToPDF(nil, "a4"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("no inputs err = %v, want ErrInvalidInput", err)
	}
	if _, err := ImagesToPDF(inputs, "tabloid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad page size err = %v, want ErrInvalidInput", err)
	}
}

func TestMergePDFs(t *testing.T) {
	t.Parallel()

	a := pdfBuffer(t, 2)
	b := pdfBuffer(t, 3)

	merged, err := MergePDFs([]*buffer.Buffer{a, b})
	if err != nil {
		t.Fatalf("MergePDFs: %v", err)
	}
	if n := pageCountOf(t, merged); n != 5 {
		t.Fatalf("merged pages = %d, want 5", n)
	}

	if _, err := MergePDFs([]*buffer.Buffer{a}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("single input err = %v, want ErrInvalidInput", err)
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 4)
	n, err := PageCount(in)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 4 {
		t.Fatalf("pages = %d, want 4", n)
	}

	if _, err := PageCount(buffer.New([]byte("%PDF-1.4 garbage"), KindPDF)); !errors.Is(err, ErrProcessing) {
		t.Fatalf("garbage err = %v, want ErrProcessing", err)
	}
}

func TestSplitPDFRange(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 5)
	results, err := SplitPDF(in, SplitRange, 2, 4, 0, nil)
	if err != nil {
		t.Fatalf("SplitPDF: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if n := pageCountOf(t, results[0].Data); n != 3 {
		t.Fatalf("range pages = %d, want 3", n)
	}
	if results[0].Name != "pages_2-4.pdf" {
		t.Fatalf("name = %q", results[0].Name)
	}

	if _, err := SplitPDF(in, SplitRange, 4, 9, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidInput", err)
	}
}

func TestSplitPDFEveryN(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 5)
	results, err := SplitPDF(in, SplitEveryN, 0, 0, 2, nil)
	if err != nil {
		t.Fatalf("SplitPDF: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d chunks, want 3", len(results))
	}
	wantPages := []int{2, 2, 1}
	for i, r := range results {
		if n := pageCountOf(t, r.Data); n != wantPages[i] {
			t.Fatalf("chunk %d pages = %d, want %d", i, n, wantPages[i])
		}
	}

	if _, err := SplitPDF(in, SplitEveryN, 0, 0, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("n=0 err = %v, want ErrInvalidInput", err)
	}
}

func TestSplitPDFSpecific(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 4)
	results, err := SplitPDF(in, SplitSpecific, 0, 0, 0, []int{1, 3})
	if err != nil {
		t.Fatalf("SplitPDF: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if n := pageCountOf(t, r.Data); n != 1 {
			t.Fatalf("%s pages = %d, want 1", r.Name, n)
		}
	}

	if _, err := SplitPDF(in, SplitSpecific, 0, 0, 0, []int{9}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidInput", err)
	}
	if _, err := SplitPDF(in, SplitMode("zigzag"), 0, 0, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown mode err = %v, want ErrInvalidInput", err)
	}
}

func TestRotatePDF(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 2)
	out, err := RotatePDF(in, nil, 90)
	if err != nil {
		t.Fatalf("RotatePDF: %v", err)
	}
	if n := pageCountOf(t, out); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	if _, err := RotatePDF(in, []string{"1"}, 180); err != nil {
		t.Fatalf("selected rotate: %v", err)
	}
	for _, deg := range []int{0, 45, -90, 360} {
		if _, err := RotatePDF(in, nil, deg); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("degrees %d err = %v, want ErrInvalidInput", deg, err)
		}
	}
}

func TestReorderPDF(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 3)
	out, err := ReorderPDF(in, []int{3, 1, 2})
	if err != nil {
		t.Fatalf("ReorderPDF: %v", err)
	}
	if n := pageCountOf(t, out); n != 3 {
		t.Fatalf("pages = %d, want 3", n)
	}

	for _, order := range [][]int{
		{1, 2},       // incomplete
		{1, 2, 2},    // duplicate
		{1, 2, 4},    // out of range
		{0, 1, 2},    // zero page
		{1, 2, 3, 3}, // too long
	} {
		if _, err := ReorderPDF(in, order); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("order %v err = %v, want ErrInvalidInput", order, err)
		}
	}
}

func TestDeletePages(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 4)
	out, err := DeletePages(in, []int{2, 3})
	if err != nil {
		t.Fatalf("DeletePages: %v", err)
	}
	if n := pageCountOf(t, out); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	if _, err := DeletePages(in, []int{1, 2, 3, 4}); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("delete-all err = %v, want ErrEmptyResult", err)
	}
	if _, err := DeletePages(in, []int{1, 1, 2, 2, 3, 3, 4}); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("delete-all with duplicates err = %v, want ErrEmptyResult", err)
	}
	if _, err := DeletePages(in, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty list err = %v, want ErrInvalidInput", err)
	}
	if _, err := DeletePages(in, []int{7}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidInput", err)
	}
}

func TestCompressPDF(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 2)
	for _, q := range []string{"low", "medium", "high"} {
		out, err := CompressPDF(in, q)
		if err != nil {
			t.Fatalf("CompressPDF(%s): %v", q, err)
		}
		if n := pageCountOf(t, out); n != 2 {
			t.Fatalf("pages = %d, want 2", n)
		}
	}
	if _, err := CompressPDF(in, "maximum"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad quality err = %v, want ErrInvalidInput", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 2)
	encrypted, err := EncryptPDF(in, "hunter2", "none")
	if err != nil {
		t.Fatalf("EncryptPDF: %v", err)
	}

	decrypted, err := DecryptPDF(buffer.New(encrypted, KindPDF), "hunter2")
	if err != nil {
		t.Fatalf("DecryptPDF: %v", err)
	}
	if n := pageCountOf(t, decrypted); n != 2 {
		t.Fatalf("pages after round trip = %d, want 2", n)
	}

	if _, err := DecryptPDF(buffer.New(encrypted, KindPDF), "wrong"); !errors.Is(err, ErrProcessing) {
		t.Fatalf("wrong password err = %v, want ErrProcessing", err)
	}
	if _, err := EncryptPDF(in, "", "none"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty password err = %v, want ErrInvalidInput", err)
	}
	if _, err := EncryptPDF(in, "pw", "some"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad permissions err = %v, want ErrInvalidInput", err)
	}
}

func TestTextWatermarkPDF(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 2)
	opts := WatermarkOptions{Position: "diagonal", Opacity: 0.3, FontSize: 48, Color: "#808080"}

	out, err := TextWatermarkPDF(in, "CONFIDENTIAL", nil, opts)
	if err != nil {
		t.Fatalf("TextWatermarkPDF: %v", err)
	}
	if n := pageCountOf(t, out); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	opts.Position = "bottom-right"
	if _, err := TextWatermarkPDF(in, "DRAFT", []string{"1"}, opts); err != nil {
		t.Fatalf("anchored watermark: %v", err)
	}

	if _, err := TextWatermarkPDF(in, "", nil, opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty text err = %v, want ErrInvalidInput", err)
	}
	opts.Position = "middle"
	if _, err := TextWatermarkPDF(in, "X", nil, opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad position err = %v, want ErrInvalidInput", err)
	}
	opts.Position = "center"
	opts.Opacity = 1.5
	if _, err := TextWatermarkPDF(in, "X", nil, opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad opacity err = %v, want ErrInvalidInput", err)
	}
}

func TestImageWatermarkPDF(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 2)
	img := buffer.New(pngBytes(t), KindPNG)
	opts := WatermarkOptions{Position: "center", Opacity: 0.5, Scale: 0.4}

	out, err := ImageWatermarkPDF(in, img, nil, opts)
	if err != nil {
		t.Fatalf("ImageWatermarkPDF: %v", err)
	}
	if n := pageCountOf(t, out); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	opts.Scale = 0
	if _, err := ImageWatermarkPDF(in, img, nil, opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero scale err = %v, want ErrInvalidInput", err)
	}
	opts.Scale = 1.2
	if _, err := ImageWatermarkPDF(in, img, nil, opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("oversized scale err = %v, want ErrInvalidInput", err)
	}
}

func TestPageNumberText(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Page {page} of {total}", "Page %p of %P"},
		{"{page}", "%p"},
		{"100% done: {page}", "100%% done: %p"},
		{"%p {page}", "%%p %p"},
	}
	for _, tc := range cases {
		if got := pageNumberText(tc.in); got != tc.want {
			t.Fatalf("pageNumberText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAddPageNumbers(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 3)
	opts := PageNumberOptions{
		Format:   "Page {page} of {total}",
		Position: "bottom-center",
		FontSize: 12,
		Color:    "#000000",
	}

	out, err := AddPageNumbers(in, nil, opts)
	if err != nil {
		t.Fatalf("AddPageNumbers: %v", err)
	}
	if n := pageCountOf(t, out); n != 3 {
		t.Fatalf("pages = %d, want 3", n)
	}

	opts.Position = "top-right"
	if _, err := AddPageNumbers(in, []string{"2"}, opts); err != nil {
		t.Fatalf("selected pages: %v", err)
	}

	bad := opts
	bad.Position = "center"
	if _, err := AddPageNumbers(in, nil, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("center position err = %v, want ErrInvalidInput", err)
	}
	bad = opts
	bad.FontSize = 0
	if _, err := AddPageNumbers(in, nil, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero font size err = %v, want ErrInvalidInput", err)
	}
	bad = opts
	bad.Format = "static label"
	if _, err := AddPageNumbers(in, nil, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("format without {page} err = %v, want ErrInvalidInput", err)
	}
}

func TestReadMetadata(t *testing.T) {
	t.Parallel()

	meta, err := ReadMetadata(pdfBuffer(t, 2))
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.PageCount != 2 {
		t.Fatalf("page count = %d, want 2", meta.PageCount)
	}
	if meta.Encrypted {
		t.Fatal("fixture reported as encrypted")
	}
	if !strings.Contains(meta.Producer, "pdfcpu") {
		t.Fatalf("producer = %q, want the generator that built the fixture", meta.Producer)
	}

	if _, err := ReadMetadata(buffer.New([]byte("%PDF-1.4 garbage"), KindPDF)); !errors.Is(err, ErrProcessing) {
		t.Fatalf("garbage err = %v, want ErrProcessing", err)
	}
}

func TestRemoveMetadata(t *testing.T) {
	t.Parallel()

	// Seed a custom property so the strip has something observable to remove.
	in := pdfBuffer(t, 2)
	var tagged bytes.Buffer
	if err := api.AddProperties(in.Reader(), &tagged, map[string]string{"client": "acme"}, newConf()); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	meta, err := ReadMetadata(buffer.New(tagged.Bytes(), KindPDF))
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.Properties["client"] != "acme" {
		t.Fatalf("seeded property missing: %v", meta.Properties)
	}

	cleaned, err := RemoveMetadata(buffer.New(tagged.Bytes(), KindPDF))
	if err != nil {
		t.Fatalf("RemoveMetadata: %v", err)
	}
	if n := pageCountOf(t, cleaned); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	meta, err = ReadMetadata(buffer.New(cleaned, KindPDF))
	if err != nil {
		t.Fatalf("ReadMetadata after strip: %v", err)
	}
	if len(meta.Properties) != 0 {
		t.Fatalf("properties survived the strip: %v", meta.Properties)
	}
	if meta.Title != "" || meta.Author != "" || meta.Subject != "" {
		t.Fatalf("info entries survived the strip: %+v", meta)
	}
}

func TestExtractPages(t *testing.T) {
	t.Parallel()

	in := pdfBuffer(t, 4)
	results, err := ExtractPages(in, []int{2, 4})
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if n := pageCountOf(t, r.Data); n != 1 {
			t.Fatalf("%s pages = %d, want 1", r.Name, n)
		}
	}
	if results[0].Name != "page_2.pdf" || results[1].Name != "page_4.pdf" {
		t.Fatalf("names = %q, %q", results[0].Name, results[1].Name)
	}

	if _, err := ExtractPages(in, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty list err = %v, want ErrInvalidInput", err)
	}
	if _, err := ExtractPages(in, []int{5}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidInput", err)
	}
}

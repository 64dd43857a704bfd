package ops

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/notracepdf/notracepdf/internal/buffer"
)

// pngBytes renders a small solid-color PNG in memory.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return out.Bytes()
}

// pdfBuffer builds a real PDF with the given number of pages, one image per
// page, entirely in memory.
func pdfBuffer(t *testing.T, pages int) *buffer.Buffer {
	t.Helper()
	inputs := make([]*buffer.Buffer, pages)
	for i := range inputs {
		inputs[i] = buffer.New(pngBytes(t), KindPNG)
	}
	data, err := ImagesToPDF(inputs, "a4")
	if err != nil {
		t.Fatalf("build %d-page pdf: %v", pages, err)
	}
	if DetectKind(data) != KindPDF {
		t.Fatalf("generated fixture is not a PDF")
	}
	return buffer.New(data, KindPDF)
}

func pageCountOf(t *testing.T, data []byte) int {
	t.Helper()
	n, err := PageCount(buffer.New(data, KindPDF))
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	return n
}

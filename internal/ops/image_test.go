package ops

import (
	"errors"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/notracepdf/notracepdf/internal/buffer"
)

func TestConvertImage(t *testing.T) {
	t.Parallel()

	in := buffer.New(pngBytes(t), KindPNG)

	tests := []struct {
		format string
		kind   string
	}{
		{format: "jpg", kind: KindJPEG},
		{format: "jpeg", kind: KindJPEG},
		{format: "png", kind: KindPNG},
		{format: "gif", kind: KindGIF},
		{format: "bmp", kind: KindBMP},
		{format: "tiff", kind: KindTIFF},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			out, kind, err := ConvertImage(in, tt.format, 90)
			if err != nil {
				t.Fatalf("ConvertImage: %v", err)
			}
			if kind != tt.kind {
				t.Fatalf("kind = %q, want %q", kind, tt.kind)
			}
			if got := DetectKind(out); got != tt.kind {
				t.Fatalf("output sniffs as %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestConvertImageRejectsBadParameters(t *testing.T) {
	t.Parallel()

	in := buffer.New(pngBytes(t), KindPNG)

	if _, _, err := ConvertImage(in, "webp", 90); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("webp target err = %v, want ErrInvalidInput", err)
	}
	if _, _, err := ConvertImage(in, "exe", 90); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown format err = %v, want ErrInvalidInput", err)
	}
	for _, q := range []int{0, -1, 101} {
		if _, _, err := ConvertImage(in, "jpg", q); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("quality %d err = %v, want ErrInvalidInput", q, err)
		}
	}
}

func TestConvertImageRejectsCorruptInput(t *testing.T) {
	t.Parallel()

	in := buffer.New([]byte("\x89PNG\r\n\x1a\ntruncated"), KindPNG)
	if _, _, err := ConvertImage(in, "jpg", 90); !errors.Is(err, ErrProcessing) {
		t.Fatalf("err = %v, want ErrProcessing", err)
	}
}

func TestResizeImage(t *testing.T) {
	t.Parallel()

	// Fixture is 40x60.
	in := buffer.New(pngBytes(t), KindPNG)

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{name: "exact", width: 20, height: 30, wantW: 20, wantH: 30},
		{name: "width only keeps aspect", width: 20, height: 0, wantW: 20, wantH: 30},
		{name: "height only keeps aspect", width: 0, height: 30, wantW: 20, wantH: 30},
		{name: "upscale", width: 80, height: 120, wantW: 80, wantH: 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, kind, err := ResizeImage(in, tt.width, tt.height, "png", 90)
			if err != nil {
				t.Fatalf("ResizeImage: %v", err)
			}
			if kind != KindPNG {
				t.Fatalf("kind = %q, want %q", kind, KindPNG)
			}
			img, err := imaging.Decode(buffer.New(out, kind).Reader())
			if err != nil {
				t.Fatalf("decode output: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeImageRejectsBadDimensions(t *testing.T) {
	t.Parallel()

	in := buffer.New(pngBytes(t), KindPNG)
	for _, dims := range [][2]int{{0, 0}, {-1, 10}, {10, -1}} {
		if _, _, err := ResizeImage(in, dims[0], dims[1], "png", 90); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("dims %v err = %v, want ErrInvalidInput", dims, err)
		}
	}
}

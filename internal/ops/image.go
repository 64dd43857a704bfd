package ops

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	// Register decoders for formats imaging does not cover itself.
	_ "golang.org/x/image/webp"

	"github.com/notracepdf/notracepdf/internal/buffer"
)

// imageFormats maps API format names to imaging encoders and content kinds.
// WebP is decode-only: the ecosystem encoder situation is cgo-bound, so webp
// uploads convert out but nothing converts in.
var imageFormats = map[string]struct {
	format imaging.Format
	kind   string
}{
	"png":  {imaging.PNG, KindPNG},
	"jpg":  {imaging.JPEG, KindJPEG},
	"jpeg": {imaging.JPEG, KindJPEG},
	"gif":  {imaging.GIF, KindGIF},
	"bmp":  {imaging.BMP, KindBMP},
	"tiff": {imaging.TIFF, KindTIFF},
}

// ConvertImage re-encodes the image into format. Quality applies to JPEG.
// Returns the encoded bytes and their content kind.
func ConvertImage(in *buffer.Buffer, format string, quality int) ([]byte, string, error) {
	target, ok := imageFormats[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: format must be png, jpg, gif, bmp or tiff", ErrInvalidInput)
	}
	if quality < 1 || quality > 100 {
		return nil, "", fmt.Errorf("%w: quality must lie within 1-100", ErrInvalidInput)
	}

	img, err := imaging.Decode(in.Reader(), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", wrapProcessing(err)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, target.format, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", wrapProcessing(err)
	}
	return out.Bytes(), target.kind, nil
}

// ResizeImage scales the image to width x height and re-encodes it in its
// requested format. A zero width or height preserves the aspect ratio.
func ResizeImage(in *buffer.Buffer, width, height int, format string, quality int) ([]byte, string, error) {
	if width < 0 || height < 0 || (width == 0 && height == 0) {
		return nil, "", fmt.Errorf("%w: width or height must be positive", ErrInvalidInput)
	}
	target, ok := imageFormats[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: format must be png, jpg, gif, bmp or tiff", ErrInvalidInput)
	}
	if quality < 1 || quality > 100 {
		return nil, "", fmt.Errorf("%w: quality must lie within 1-100", ErrInvalidInput)
	}

	img, err := imaging.Decode(in.Reader(), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", wrapProcessing(err)
	}

	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, target.format, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", wrapProcessing(err)
	}
	return out.Bytes(), target.kind, nil
}

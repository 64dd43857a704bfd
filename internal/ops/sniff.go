package ops

import "bytes"

// Content kinds used as buffer hints and response media types.
const (
	KindPDF      = "application/pdf"
	KindPNG      = "image/png"
	KindJPEG     = "image/jpeg"
	KindGIF      = "image/gif"
	KindWEBP     = "image/webp"
	KindBMP      = "image/bmp"
	KindTIFF     = "image/tiff"
	KindZIP      = "application/zip"
	KindHTML     = "text/html; charset=utf-8"
	KindMarkdown = "text/markdown"
)

// ImageKinds are the accepted raster upload kinds.
var ImageKinds = []string{KindPNG, KindJPEG, KindGIF, KindWEBP, KindBMP, KindTIFF}

// DetectKind sniffs the content kind from magic bytes. Uploads are classified
// by content, never by the client-supplied filename or Content-Type header.
// Returns "" for unrecognized content.
func DetectKind(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return KindPDF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return KindPNG
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return KindJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return KindGIF
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return KindWEBP
	case bytes.HasPrefix(data, []byte("BM")):
		return KindBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return KindTIFF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return KindZIP
	default:
		return ""
	}
}

// IsImageKind reports whether kind is an accepted raster image kind.
func IsImageKind(kind string) bool {
	for _, k := range ImageKinds {
		if k == kind {
			return true
		}
	}
	return false
}

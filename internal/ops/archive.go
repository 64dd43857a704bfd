package ops

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ZipResults packs results into an in-memory ZIP archive.
func ZipResults(results []Result) ([]byte, error) {
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, r := range results {
		w, err := zw.Create(r.Name)
		if err != nil {
			return nil, wrapProcessing(err)
		}
		if _, err := w.Write(r.Data); err != nil {
			return nil, wrapProcessing(err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, wrapProcessing(err)
	}
	return out.Bytes(), nil
}

// UnzipPDFs reads an uploaded ZIP archive and returns its PDF entries.
// Each entry and the archive as a whole are bounded by maxBytes before any
// decompression happens, so a crafted archive cannot balloon past the
// configured upload limit. Entry names are flattened to their base name;
// nothing from the archive is treated as a path.
func UnzipPDFs(data []byte, maxBytes int64, maxFiles int) ([]Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable ZIP archive", ErrInvalidInput)
	}

	var results []Result
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := baseName(f.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			continue
		}
		if len(results) >= maxFiles {
			return nil, fmt.Errorf("%w: archive holds more than %d files", ErrTooLarge, maxFiles)
		}
		if int64(f.UncompressedSize64) > maxBytes {
			return nil, fmt.Errorf("%w: archive entry exceeds the upload limit", ErrTooLarge)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable archive entry", ErrInvalidInput)
		}
		// Limit enforces the declared size; a lying header hits the cap.
		content, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
		rc.Close()
		if err != nil {
			return nil, wrapProcessing(err)
		}
		if int64(len(content)) > maxBytes {
			return nil, fmt.Errorf("%w: archive entry exceeds the upload limit", ErrTooLarge)
		}
		total += int64(len(content))
		if total > maxBytes {
			return nil, fmt.Errorf("%w: archive contents exceed the upload limit", ErrTooLarge)
		}
		if DetectKind(content) != KindPDF {
			continue
		}
		results = append(results, Result{Name: name, Data: content})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: archive holds no PDF files", ErrInvalidInput)
	}
	return results, nil
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Package pdftext extracts plain text from uploaded PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/skills-dossier/internal/logger"
)

// ErrNoText is returned when a document yields no non-blank text, e.g. a
// scanned PDF without a text layer.
var ErrNoText = errors.New("no text found in PDF")

// ErrNotPDF is returned when the content does not start with a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

// ErrCorrupt wraps failures to read the document structure.
var ErrCorrupt = errors.New("unreadable PDF")

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether head starts with the PDF signature.
func IsPDF(head []byte) bool {
	return bytes.HasPrefix(head, pdfMagic)
}

// ExtractFile opens the PDF at path and returns its text.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat PDF %s: %w", path, err)
	}
	return ExtractText(f, info.Size())
}

// ExtractBytes returns the text of an in-memory PDF.
func ExtractBytes(data []byte) (string, error) {
	return ExtractText(bytes.NewReader(data), int64(len(data)))
}

// ExtractText reads every page in order and joins their plain text, one
// newline after each page. Pages that fail to decode are skipped.
func ExtractText(r io.ReaderAt, size int64) (text string, err error) {
	head := make([]byte, len(pdfMagic))
	if _, err := r.ReadAt(head, 0); err != nil || !IsPDF(head) {
		return "", ErrNotPDF
	}

	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrCorrupt, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := pageText(page)
		if err != nil {
			logger.Warn().Err(err).Int("page", i).Msg("skipping unreadable PDF page")
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	text = norm.NFC.String(sb.String())
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pageText(page pdf.Page) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decoding page: %v", rec)
		}
	}()
	return page.GetPlainText(nil)
}

// Package doctext turns an uploaded or downloaded CV document into the plain
// text consumed by the parsing package.
package doctext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/skills-dossier/internal/fetch"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/pdftext"
)

// Kind is a supported document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
	KindText Kind = "text"
)

// ErrUnsupported is returned for binary formats other than PDF.
var ErrUnsupported = errors.New("unsupported document format")

// Detect guesses the document kind from its name and first bytes.
func Detect(name string, head []byte) Kind {
	if pdftext.IsPDF(head) {
		return KindPDF
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".html", ".htm":
		return KindHTML
	}
	contentType := http.DetectContentType(head)
	if strings.HasPrefix(contentType, "text/html") {
		return KindHTML
	}
	return KindText
}

// Extract returns the text of data, interpreted according to its kind.
func Extract(name string, data []byte) (string, error) {
	switch Detect(name, data) {
	case KindPDF:
		return pdftext.ExtractBytes(data)
	case KindHTML:
		return fetch.ExtractMainText(string(data), fetch.CVSelectors())
	default:
		if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
			return "", ErrUnsupported
		}
		return string(data), nil
	}
}

// ExtractFile reads a local document and returns its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(path, data)
}

// URLOptions controls remote document retrieval.
type URLOptions struct {
	Fetch fetch.Options
	// Render enables the headless browser when the static page is too thin.
	Render        bool
	RenderTimeout time.Duration
}

// ExtractURL downloads a CV and returns its text. HTML pages that look
// client-rendered are rendered in a headless browser when opts.Render is set.
func ExtractURL(ctx context.Context, url string, opts URLOptions) (string, error) {
	result, err := fetch.URL(ctx, url, opts.Fetch)
	if err != nil {
		return "", err
	}
	if result.IsPDF() || pdftext.IsPDF(result.Body) {
		return pdftext.ExtractBytes(result.Body)
	}

	text, err := fetch.ExtractMainText(string(result.Body), fetch.CVSelectors())
	if err != nil {
		return "", err
	}
	if !opts.Render || !fetch.ShouldUseBrowser(text) {
		return text, nil
	}

	logger.Ctx(ctx).Info().Str("url", url).Int("static_len", len(text)).Msg("page looks client-rendered, using headless browser")
	html, err := fetch.Render(ctx, url, fetch.RenderOptions{Timeout: opts.RenderTimeout})
	if err != nil {
		return "", err
	}
	return fetch.ExtractMainText(html, fetch.CVSelectors())
}

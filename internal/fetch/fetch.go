// Package fetch retrieves CV documents published online and turns HTML
// pages into line-oriented plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; SkillsDossier/1.0)"
	DefaultMaxBytes  = 10 << 20
)

// Document is a downloaded CV body.
type Document struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// IsPDF reports whether the server declared the body as a PDF.
func (d *Document) IsPDF() bool {
	return strings.HasPrefix(strings.ToLower(d.ContentType), "application/pdf")
}

// Error wraps a retrieval failure with the URL involved.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "fetch " + e.URL + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Options tunes a download. Zero fields take the package defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Headers   map[string]string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// URL downloads the document at rawURL. A non-200 status yields the
// document together with an error so callers can inspect it.
func URL(ctx context.Context, rawURL string, opts Options) (*Document, error) {
	if !IsURL(rawURL) {
		return nil, &Error{URL: rawURL, Message: "invalid URL"}
	}
	opts = opts.withDefaults()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "building request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := (&http.Client{Timeout: opts.Timeout}).Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "reading body", Cause: err}
	}
	if int64(len(body)) > opts.MaxBytes {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("document larger than %d bytes", opts.MaxBytes)}
	}

	doc := &Document{
		URL:         rawURL,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return doc, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return doc, nil
}

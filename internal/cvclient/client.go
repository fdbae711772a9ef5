// Package cvclient calls the dossier API's CV parsing endpoint and falls back
// to the local pattern engine when the service cannot answer.
package cvclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/parsing"
	"github.com/jonathan/skills-dossier/internal/types"
)

// Source tells where a parsed record came from.
type Source string

const (
	SourceService Source = "service"
	SourceLocal   Source = "local"
)

// Client posts CV text to {BaseURL}/api/parse-cv.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client for baseURL with the given request timeout.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-success answer from the service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("parse-cv returned status %d: %s", e.StatusCode, e.Message)
}

// ParseCV asks the service to parse text. On a non-success status or a
// transport error it logs a warning and returns the local engine's result.
// Only an EmptyInputError from the local engine is returned as an error.
func (c *Client) ParseCV(ctx context.Context, text string) (*types.CandidateRecord, Source, error) {
	rec, err := c.Remote(ctx, text)
	if err == nil {
		return rec, SourceService, nil
	}

	logger.Ctx(ctx).Warn().Err(err).Str("base_url", c.BaseURL).Msg("CV service unavailable, using local parser")
	rec, err = parsing.Parse(text)
	if err != nil {
		return nil, SourceLocal, err
	}
	return rec, SourceLocal, nil
}

// Remote performs the service call without any fallback.
func (c *Client) Remote(ctx context.Context, text string) (*types.CandidateRecord, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/parse-cv", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse-cv request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read parse-cv response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	var rec types.CandidateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode parse-cv response: %w", err)
	}
	return &rec, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

package cvclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skills-dossier/internal/parsing"
)

const cvText = "Jean Dupont\nOutil: Python\nAcme | Dev | 1/3/2020"

func TestParseCV_Service(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/parse-cv", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, cvText, body["text"])

		_, _ = w.Write([]byte(`{"full_name":"Jean Dupont (service)","roles":[],"tools":["Python"],"experiences":[],"educations":[]}`))
	}))
	defer server.Close()

	rec, source, err := New(server.URL+"/", "tok", time.Second).ParseCV(context.Background(), cvText)
	require.NoError(t, err)
	assert.Equal(t, SourceService, source)
	assert.Equal(t, "Jean Dupont (service)", rec.FullName)
}

func TestParseCV_FallsBackOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"parser service error: invalid response"}`))
	}))
	defer server.Close()

	rec, source, err := New(server.URL, "", time.Second).ParseCV(context.Background(), cvText)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	assert.Equal(t, "Jean Dupont", rec.FullName)
	assert.Equal(t, []string{"Python"}, rec.Tools)
	assert.Equal(t, "2020-03-01", rec.Experiences[0].StartDate)
}

func TestParseCV_FallsBackOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	rec, source, err := New(url, "", time.Second).ParseCV(context.Background(), cvText)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	assert.Equal(t, "Jean Dupont", rec.FullName)
}

func TestParseCV_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, _, err := New(server.URL, "", time.Second).ParseCV(context.Background(), "  \n ")

	var emptyErr *parsing.EmptyInputError
	assert.True(t, errors.As(err, &emptyErr))
}

func TestRemote_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "", time.Second).Remote(context.Background(), cvText)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Contains(t, err.Error(), "upstream down")
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/skills-dossier/internal/doctext"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/parsing"
)

// maxTextBody bounds the JSON body of parse-cv.
const maxTextBody = 2 << 20

// sourceRequest tags text posted directly in a JSON body.
const sourceRequest = "request"

type parseCVRequest struct {
	Text *string `json:"text"`
}

// handleParseCV turns posted CV text into a CandidateRecord.
func (s *Server) handleParseCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextBody)

	var req parseCVRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, err)
			return
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(w, r, http.StatusBadRequest, `missing or invalid "text" field`)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil {
		writeError(w, r, http.StatusBadRequest, `missing or invalid "text" field`)
		return
	}

	s.respondParsed(w, r, *req.Text, sourceRequest)
}

// handleImportCV extracts the text of an uploaded document (PDF, HTML or
// plain text) from the multipart "file" field and parses it.
func (s *Server) handleImportCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, `missing "file" field`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	kind := doctext.Detect(header.Filename, data)
	text, err := doctext.Extract(header.Filename, data)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).
			Str("filename", header.Filename).
			Str("kind", string(kind)).
			Msg("document text extraction failed")
		writeServiceError(w, r, err)
		return
	}

	s.respondParsed(w, r, text, string(kind))
}

func (s *Server) respondParsed(w http.ResponseWriter, r *http.Request, text, source string) {
	rec, err := s.parser.Parse(r.Context(), text)
	if err != nil {
		var empty *parsing.EmptyInputError
		if errors.As(err, &empty) && source == sourceRequest {
			writeError(w, r, http.StatusBadRequest, `missing or invalid "text" field`)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info().
		Str("source", source).
		Int("text_len", len(text)).
		Int("experiences", len(rec.Experiences)).
		Msg("CV parsed")
	writeJSON(w, r, http.StatusOK, rec)
}

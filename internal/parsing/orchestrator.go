package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/skills-dossier/internal/llm"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/prompts"
	"github.com/jonathan/skills-dossier/internal/schemas"
	"github.com/jonathan/skills-dossier/internal/types"
)

// ParserConfig selects the extraction strategy. It is resolved once at
// startup; the orchestrator never reads the environment itself.
type ParserConfig struct {
	Provider   string
	Credential string
	Endpoint   string
	Model      string
}

// Enabled reports whether a remote parser credential is configured.
func (c ParserConfig) Enabled() bool {
	return strings.TrimSpace(c.Credential) != ""
}

// RemoteParser is the structured parser the orchestrator delegates to.
// llm.Client satisfies it.
type RemoteParser interface {
	GenerateJSON(ctx context.Context, req llm.Request) (string, error)
}

// Orchestrator chooses between the remote parser and the degraded stub.
type Orchestrator struct {
	cfg    ParserConfig
	remote RemoteParser
}

// NewOrchestrator builds an orchestrator. remote may be nil when cfg has no
// credential.
func NewOrchestrator(cfg ParserConfig, remote RemoteParser) *Orchestrator {
	return &Orchestrator{cfg: cfg, remote: remote}
}

// Config returns the strategy configuration.
func (o *Orchestrator) Config() ParserConfig {
	return o.cfg
}

// Parse turns document text into a CandidateRecord.
//
// Without a credential the result is a stub carrying only the first
// non-blank line as the name. With one, the remote parser's reply is
// returned or the call fails with ParserServiceError; the local engine is
// not used as a fallback here.
func (o *Orchestrator) Parse(ctx context.Context, text string) (*types.CandidateRecord, error) {
	lines := UsableLines(NormalizeText(text))
	if len(lines) == 0 {
		return nil, &EmptyInputError{}
	}

	if !o.cfg.Enabled() {
		logger.Ctx(ctx).Warn().
			Str("provider", o.cfg.Provider).
			Msg("remote CV parser not configured, returning minimal record")
		return types.NewEmptyCandidate(strings.TrimSpace(lines[0])), nil
	}
	if o.remote == nil {
		return nil, &ParserServiceError{Message: "remote parser not initialized"}
	}

	return o.parseRemote(ctx, text)
}

func (o *Orchestrator) parseRemote(ctx context.Context, text string) (*types.CandidateRecord, error) {
	log := logger.Ctx(ctx)

	system, user, err := prompts.CVExtraction(text)
	if err != nil {
		return nil, &ParserServiceError{Message: "prompt unavailable", Cause: err}
	}

	start := time.Now()
	content, err := o.remote.GenerateJSON(ctx, llm.Request{System: system, User: user})
	if err != nil {
		event := log.Error().Err(err).
			Str("provider", o.cfg.Provider).
			Dur("elapsed", time.Since(start))
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			event = event.Int("status", statusErr.StatusCode)
			event.Msg("remote CV parser returned an error status")
			return nil, &ParserServiceError{
				Message: fmt.Sprintf("remote parser returned status %d", statusErr.StatusCode),
				Cause:   err,
			}
		}
		event.Msg("remote CV parser call failed")
		return nil, &ParserServiceError{Message: "parser service call failed", Cause: err}
	}

	content = strings.TrimSpace(content)
	if content == "" {
		log.Error().Str("provider", o.cfg.Provider).Msg("remote CV parser returned no content")
		return nil, &ParserServiceError{Message: "empty response"}
	}

	rec, err := decodeCandidate(content)
	if err != nil {
		log.Error().Err(err).
			Str("provider", o.cfg.Provider).
			Int("content_len", len(content)).
			Msg("remote CV parser returned an invalid record")
		return nil, &ParserServiceError{Message: "invalid response", Cause: err}
	}

	log.Info().
		Str("provider", o.cfg.Provider).
		Int("experiences", len(rec.Experiences)).
		Int("educations", len(rec.Educations)).
		Dur("elapsed", time.Since(start)).
		Msg("CV parsed by remote parser")
	return rec, nil
}

// decodeCandidate validates the reply's shape and decodes it.
func decodeCandidate(content string) (*types.CandidateRecord, error) {
	content = llm.CleanJSONBlock(content)
	if err := schemas.ValidateCandidate(content); err != nil {
		return nil, err
	}

	var rec types.CandidateRecord
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil, fmt.Errorf("decode candidate record: %w", err)
	}
	normalizeRecord(&rec)
	return &rec, nil
}

// normalizeRecord trims strings and replaces nil lists with empty ones.
func normalizeRecord(rec *types.CandidateRecord) {
	rec.FullName = strings.TrimSpace(rec.FullName)
	rec.CandidateDescription = strings.TrimSpace(rec.CandidateDescription)
	rec.Roles = trimAll(rec.Roles)
	rec.GeneralExpertises = trimAll(rec.GeneralExpertises)
	rec.Tools = trimAll(rec.Tools)

	if rec.Experiences == nil {
		rec.Experiences = []types.ExperienceRecord{}
	}
	for i := range rec.Experiences {
		e := &rec.Experiences[i]
		for _, field := range []*string{
			&e.Company, &e.Location, &e.StartDate, &e.EndDate, &e.JobTitle,
			&e.Sector, &e.Project, &e.Responsibilities, &e.TechnicalEnvironment,
		} {
			*field = strings.TrimSpace(*field)
		}
	}

	if rec.Educations == nil {
		rec.Educations = []types.EducationRecord{}
	}
	for i := range rec.Educations {
		e := &rec.Educations[i]
		e.DegreeOrCertification = strings.TrimSpace(e.DegreeOrCertification)
		e.Year = strings.TrimSpace(e.Year)
		e.Institution = strings.TrimSpace(e.Institution)
	}
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skills-dossier/internal/types"
)

// ProfileFilter scopes ListProfiles. With All unset only the dossiers
// managed by ManagerID are returned.
type ProfileFilter struct {
	ManagerID string
	All       bool
}

// profileRows is the set of rows written for one dossier.
type profileRows struct {
	profile     types.Profile
	expertises  []types.GeneralExpertise
	tools       []types.Tool
	experiences []types.Experience
	educations  []types.Education
}

// buildProfileRows applies the storage rules to a payload: blank list
// entries are dropped, experiences need a company, educations need a degree,
// empty dates become NULL and the year is stored as an integer or NULL.
func buildProfileRows(managerID string, p *types.ProfilePayload, now time.Time) profileRows {
	profileID := uuid.New()
	rows := profileRows{
		profile: types.Profile{
			ID:                   profileID,
			ManagerID:            managerID,
			FullName:             strings.TrimSpace(p.FullName),
			Roles:                types.NonBlank(p.Roles),
			JobTitle:             p.JobTitle(),
			CandidateDescription: strings.TrimSpace(p.CandidateDescription),
			CreatedAt:            now,
			UpdatedAt:            now,
		},
	}

	for _, e := range types.NonBlank(p.GeneralExpertises) {
		rows.expertises = append(rows.expertises, types.GeneralExpertise{ID: uuid.New(), ProfileID: profileID, Expertise: e})
	}
	for _, t := range types.NonBlank(p.Tools) {
		rows.tools = append(rows.tools, types.Tool{ID: uuid.New(), ProfileID: profileID, ToolName: t})
	}
	for _, exp := range p.Experiences {
		company := strings.TrimSpace(exp.Company)
		if company == "" {
			continue
		}
		rows.experiences = append(rows.experiences, types.Experience{
			ID:                   uuid.New(),
			ProfileID:            profileID,
			Company:              company,
			Location:             strings.TrimSpace(exp.Location),
			StartDate:            nullIfEmpty(exp.StartDate),
			EndDate:              nullIfEmpty(exp.EndDate),
			JobTitle:             strings.TrimSpace(exp.JobTitle),
			Sector:               strings.TrimSpace(exp.Sector),
			Project:              strings.TrimSpace(exp.Project),
			Expertises:           types.NonBlank(exp.Expertises),
			ToolsUsed:            types.NonBlank(exp.ToolsUsed),
			Responsibilities:     strings.TrimSpace(exp.Responsibilities),
			TechnicalEnvironment: strings.TrimSpace(exp.TechnicalEnvironment),
		})
	}
	for _, edu := range p.Educations {
		degree := strings.TrimSpace(edu.DegreeOrCertification)
		if degree == "" {
			continue
		}
		rows.educations = append(rows.educations, types.Education{
			ID:                    uuid.New(),
			ProfileID:             profileID,
			DegreeOrCertification: degree,
			Institution:           strings.TrimSpace(edu.Institution),
			Year:                  edu.Year.Int(),
		})
	}
	return rows
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateProfile stores a dossier and its children in one transaction and
// returns the new id.
func (db *DB) CreateProfile(ctx context.Context, managerID string, payload *types.ProfilePayload) (uuid.UUID, error) {
	rows := buildProfileRows(managerID, payload, time.Now().UTC())
	p := rows.profile

	rolesJSON, err := encodeStrings(p.Roles)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal roles: %w", err)
	}

	err = db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, manager_id, full_name, roles, job_title, candidate_description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.ManagerID, p.FullName, rolesJSON, p.JobTitle, p.CandidateDescription, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}

		batch := &pgx.Batch{}
		for _, e := range rows.expertises {
			batch.Queue(`INSERT INTO general_expertises (id, profile_id, expertise) VALUES ($1, $2, $3)`, e.ID, e.ProfileID, e.Expertise)
		}
		for _, t := range rows.tools {
			batch.Queue(`INSERT INTO tools (id, profile_id, tool_name) VALUES ($1, $2, $3)`, t.ID, t.ProfileID, t.ToolName)
		}
		for _, e := range rows.experiences {
			expertises, err := encodeStrings(e.Expertises)
			if err != nil {
				return fmt.Errorf("failed to marshal experience expertises: %w", err)
			}
			toolsUsed, err := encodeStrings(e.ToolsUsed)
			if err != nil {
				return fmt.Errorf("failed to marshal experience tools: %w", err)
			}
			batch.Queue(
				`INSERT INTO experiences (id, profile_id, company, location, start_date, end_date, job_title, sector,
				     context, project, expertises, tools_used, responsibilities, technical_environment)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', $9, $10, $11, $12, $13)`,
				e.ID, e.ProfileID, e.Company, e.Location, e.StartDate, e.EndDate, e.JobTitle, e.Sector,
				e.Project, expertises, toolsUsed, e.Responsibilities, e.TechnicalEnvironment,
			)
		}
		for _, e := range rows.educations {
			batch.Queue(`INSERT INTO educations (id, profile_id, degree_or_certification, institution, year) VALUES ($1, $2, $3, $4, $5)`,
				e.ID, e.ProfileID, e.DegreeOrCertification, e.Institution, e.Year)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert profile details: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// ListProfiles returns dossiers newest first, each with its children.
func (db *DB) ListProfiles(ctx context.Context, filter ProfileFilter) ([]types.Profile, error) {
	query := `SELECT id, manager_id, full_name, roles, job_title, candidate_description, created_at, updated_at
		FROM profiles`
	args := []any{}
	if !filter.All {
		query += ` WHERE manager_id = $1`
		args = append(args, filter.ManagerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		var p types.Profile
		var rolesJSON []byte
		if err := rows.Scan(&p.ID, &p.ManagerID, &p.FullName, &rolesJSON, &p.JobTitle, &p.CandidateDescription, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.Roles = decodeStrings(rolesJSON)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	if err := db.loadProfileDetails(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// loadProfileDetails fetches the four child collections concurrently and
// attaches them to profiles.
func (db *DB) loadProfileDetails(ctx context.Context, profiles []types.Profile) error {
	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].ID.String()
	}

	var (
		expertises  []types.GeneralExpertise
		tools       []types.Tool
		experiences []types.Experience
		educations  []types.Education
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expertises, err = db.listExpertises(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		tools, err = db.listTools(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		experiences, err = db.listExperiences(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		educations, err = db.listEducations(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	attachDetails(profiles, expertises, tools, experiences, educations)
	return nil
}

// attachDetails distributes child rows to their profiles, keeping the
// order in which they were loaded. Every collection ends up non-nil.
func attachDetails(profiles []types.Profile, expertises []types.GeneralExpertise, tools []types.Tool,
	experiences []types.Experience, educations []types.Education) {
	index := make(map[uuid.UUID]*types.Profile, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		p.GeneralExpertises = []types.GeneralExpertise{}
		p.Tools = []types.Tool{}
		p.Experiences = []types.Experience{}
		p.Educations = []types.Education{}
		index[p.ID] = p
	}

	for _, e := range expertises {
		if p := index[e.ProfileID]; p != nil {
			p.GeneralExpertises = append(p.GeneralExpertises, e)
		}
	}
	for _, t := range tools {
		if p := index[t.ProfileID]; p != nil {
			p.Tools = append(p.Tools, t)
		}
	}
	for _, e := range experiences {
		if p := index[e.ProfileID]; p != nil {
			p.Experiences = append(p.Experiences, e)
		}
	}
	for _, e := range educations {
		if p := index[e.ProfileID]; p != nil {
			p.Educations = append(p.Educations, e)
		}
	}
}

func (db *DB) listExpertises(ctx context.Context, ids []string) ([]types.GeneralExpertise, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, expertise, created_at FROM general_expertises
		 WHERE profile_id = ANY($1::uuid[]) ORDER BY created_at ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list expertises: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.GeneralExpertise, error) {
		var e types.GeneralExpertise
		err := row.Scan(&e.ID, &e.ProfileID, &e.Expertise, &e.CreatedAt)
		return e, err
	})
}

func (db *DB) listTools(ctx context.Context, ids []string) ([]types.Tool, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, tool_name, created_at FROM tools
		 WHERE profile_id = ANY($1::uuid[]) ORDER BY created_at ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Tool, error) {
		var t types.Tool
		err := row.Scan(&t.ID, &t.ProfileID, &t.ToolName, &t.CreatedAt)
		return t, err
	})
}

func (db *DB) listExperiences(ctx context.Context, ids []string) ([]types.Experience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, company, location, start_date, end_date, job_title, sector, context, project,
		        expertises, tools_used, responsibilities, technical_environment, created_at
		 FROM experiences
		 WHERE profile_id = ANY($1::uuid[]) ORDER BY start_date DESC NULLS LAST, created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Experience, error) {
		var e types.Experience
		var expertises, toolsUsed []byte
		err := row.Scan(&e.ID, &e.ProfileID, &e.Company, &e.Location, &e.StartDate, &e.EndDate, &e.JobTitle,
			&e.Sector, &e.Context, &e.Project, &expertises, &toolsUsed, &e.Responsibilities,
			&e.TechnicalEnvironment, &e.CreatedAt)
		e.Expertises = decodeStrings(expertises)
		e.ToolsUsed = decodeStrings(toolsUsed)
		return e, err
	})
}

func (db *DB) listEducations(ctx context.Context, ids []string) ([]types.Education, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, degree_or_certification, institution, year, created_at FROM educations
		 WHERE profile_id = ANY($1::uuid[]) ORDER BY year DESC NULLS LAST, created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list educations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Education, error) {
		var e types.Education
		err := row.Scan(&e.ID, &e.ProfileID, &e.DegreeOrCertification, &e.Institution, &e.Year, &e.CreatedAt)
		return e, err
	})
}

// decodeStrings reads a JSONB string array; malformed or null values give [].
// encodeStrings stores a string list as a JSONB array; nil becomes [].
func encodeStrings(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func decodeStrings(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProfilePayload is the body of a dossier creation request. It mirrors
// CandidateRecord and accepts a few extra per-experience lists.
type ProfilePayload struct {
	FullName             string              `json:"full_name" validate:"required,max=200"`
	Roles                []string            `json:"roles"`
	CandidateDescription string              `json:"candidate_description"`
	GeneralExpertises    []string            `json:"general_expertises"`
	Tools                []string            `json:"tools"`
	Experiences          []ExperiencePayload `json:"experiences"`
	Educations           []EducationPayload  `json:"educations"`
}

// ExperiencePayload is an experience as submitted by the profile form.
type ExperiencePayload struct {
	Company              string   `json:"company"`
	Location             string   `json:"location"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	JobTitle             string   `json:"job_title"`
	Sector               string   `json:"sector"`
	Project              string   `json:"project"`
	Responsibilities     string   `json:"responsibilities"`
	TechnicalEnvironment string   `json:"technical_environment"`
	Expertises           []string `json:"expertises,omitempty"`
	ToolsUsed            []string `json:"tools_used,omitempty"`
}

// EducationPayload is an education entry as submitted by the profile form.
type EducationPayload struct {
	DegreeOrCertification string   `json:"degree_or_certification"`
	Year                  FlexYear `json:"year"`
	Institution           string   `json:"institution"`
}

// FlexYear accepts a year sent as a JSON string, number or null.
type FlexYear string

// UnmarshalJSON implements json.Unmarshaler
func (y *FlexYear) UnmarshalJSON(data []byte) error {
	str := strings.TrimSpace(string(data))
	if str == "null" {
		*y = ""
		return nil
	}
	if strings.HasPrefix(str, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = FlexYear(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year must be a string or a number: %w", err)
	}
	*y = FlexYear(n.String())
	return nil
}

// Int returns the year as an integer, or nil when empty or not numeric.
func (y FlexYear) Int() *int {
	n, err := strconv.Atoi(strings.TrimSpace(string(y)))
	if err != nil {
		return nil
	}
	return &n
}

// JobTitle joins the non-blank roles with " / ".
func (p *ProfilePayload) JobTitle() string {
	return strings.Join(NonBlank(p.Roles), " / ")
}

// NonBlank returns the trimmed non-empty values of items, in order.
func NonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Profile is a stored dossier with its child collections.
type Profile struct {
	ID                   uuid.UUID          `json:"id"`
	ManagerID            string             `json:"manager_id"`
	FullName             string             `json:"full_name"`
	Roles                []string           `json:"roles"`
	JobTitle             string             `json:"job_title"`
	CandidateDescription string             `json:"candidate_description"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	GeneralExpertises    []GeneralExpertise `json:"general_expertises"`
	Tools                []Tool             `json:"tools"`
	Experiences          []Experience       `json:"experiences"`
	Educations           []Education        `json:"educations"`
}

// GeneralExpertise is a stored expertise row.
type GeneralExpertise struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Expertise string    `json:"expertise"`
	CreatedAt time.Time `json:"created_at"`
}

// Tool is a stored tool row.
type Tool struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	ToolName  string    `json:"tool_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Experience is a stored experience row.
type Experience struct {
	ID                   uuid.UUID `json:"id"`
	ProfileID            uuid.UUID `json:"profile_id"`
	Company              string    `json:"company"`
	Location             string    `json:"location"`
	StartDate            *string   `json:"start_date"`
	EndDate              *string   `json:"end_date"`
	JobTitle             string    `json:"job_title"`
	Sector               string    `json:"sector"`
	Context              string    `json:"context"`
	Project              string    `json:"project"`
	Expertises           []string  `json:"expertises"`
	ToolsUsed            []string  `json:"tools_used"`
	Responsibilities     string    `json:"responsibilities"`
	TechnicalEnvironment string    `json:"technical_environment"`
	CreatedAt            time.Time `json:"created_at"`
}

// Education is a stored education row.
type Education struct {
	ID                    uuid.UUID `json:"id"`
	ProfileID             uuid.UUID `json:"profile_id"`
	DegreeOrCertification string    `json:"degree_or_certification"`
	Institution           string    `json:"institution"`
	Year                  *int      `json:"year"`
	CreatedAt             time.Time `json:"created_at"`
}

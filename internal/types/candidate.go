// Package types provides type definitions for structured data used throughout the skills dossier service.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateRecord is the structured shape produced by CV text extraction.
// It feeds the profile creation form and is never persisted as-is.
type CandidateRecord struct {
	FullName             string             `json:"full_name"`
	Roles                []string           `json:"roles"`
	CandidateDescription string             `json:"candidate_description"`
	GeneralExpertises    []string           `json:"general_expertises"`
	Tools                []string           `json:"tools"`
	Experiences          []ExperienceRecord `json:"experiences"`
	Educations           []EducationRecord  `json:"educations"`
}

// ExperienceRecord is one professional experience extracted from a CV.
// Dates are "YYYY", "YYYY-MM-DD" or empty.
type ExperienceRecord struct {
	Company              string `json:"company"`
	Location             string `json:"location"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	JobTitle             string `json:"job_title"`
	Sector               string `json:"sector"`
	Project              string `json:"project"`
	Responsibilities     string `json:"responsibilities"`
	TechnicalEnvironment string `json:"technical_environment"`
}

// EducationRecord is one degree or certification extracted from a CV.
type EducationRecord struct {
	DegreeOrCertification string `json:"degree_or_certification"`
	Year                  string `json:"year"`
	Institution           string `json:"institution"`
}

// NewEmptyCandidate returns a record holding only the name, with every list
// initialized so it serializes as [] rather than null.
func NewEmptyCandidate(fullName string) *CandidateRecord {
	return &CandidateRecord{
		FullName:          fullName,
		Roles:             []string{},
		GeneralExpertises: []string{},
		Tools:             []string{},
		Experiences:       []ExperienceRecord{},
		Educations:        []EducationRecord{},
	}
}

// Package parsing turns raw CV text into a structured CandidateRecord, either
// with local pattern heuristics or through a remote structured parser.
package parsing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/skills-dossier/internal/types"
)

const (
	// NameScanLineLimit is how many non-blank lines are inspected for the candidate name.
	NameScanLineLimit = 15
	// NameMinLength and NameMaxLength bound a name candidate line, in characters.
	NameMinLength = 3
	NameMaxLength = 80
	// NameMinWords and NameMaxWords bound the word count of a name candidate line.
	NameMinWords = 2
	NameMaxWords = 5
	// NameMinCapitalizedRatio is the share of words that must start with an uppercase letter.
	NameMinCapitalizedRatio = 0.6

	// DescriptionMinLen and DescriptionMaxLen bound the captured description, in characters.
	DescriptionMinLen = 20
	DescriptionMaxLen = 200

	// PlaceholderName is used when no line of the document can serve as a name.
	PlaceholderName = "Candidat"
)

// NameStopWords are first words that mark a section header rather than a name.
var NameStopWords = map[string]struct{}{
	"compétences": {},
	"competences": {},
	"contact":     {},
	"contacts":    {},
	"formations":  {},
	"formation":   {},
	"curriculum":  {},
	"cv":          {},
	"profil":      {},
	"profile":     {},
	"expériences": {},
	"experiences": {},
	"parcours":    {},
	"skills":      {},
	"summary":     {},
}

// LabeledField describes a "label: value" extraction. Every match across the
// text is collected; Set stores the deduplicated values on the record. A
// label ending its line takes the next line as value.
type LabeledField struct {
	Name   string
	Labels []string
	Set    func(rec *types.CandidateRecord, values []string)

	pattern *regexp.Regexp
}

// LabeledFields is evaluated in order by Extract.
var LabeledFields = []*LabeledField{
	{
		Name:   "roles",
		Labels: []string{"poste", "rôle", "position", "titre"},
		Set:    func(rec *types.CandidateRecord, v []string) { rec.Roles = v },
	},
	{
		Name:   "general_expertises",
		Labels: []string{"compétence", "expertise", "domaine", "spécialité"},
		Set:    func(rec *types.CandidateRecord, v []string) { rec.GeneralExpertises = v },
	},
	{
		Name:   "tools",
		Labels: []string{"technologie", "outil", "langage", "framework", "stack"},
		Set:    func(rec *types.CandidateRecord, v []string) { rec.Tools = v },
	},
}

// DescriptionLabels introduce the free-text candidate description.
var DescriptionLabels = []string{"à propos", "résumé", "objectif"}

// EducationKeywords start a degree or certification line.
var EducationKeywords = []string{"diplôme", "certification", "licence", "master", "bac"}

// DateRule converts one recognized date token shape into its stored form.
type DateRule struct {
	Name    string
	Pattern *regexp.Regexp
	Format  func(match []string) string
}

// DateRules are tried in order; a token matching none normalizes to "".
var DateRules = []DateRule{
	{
		Name:    "year-range",
		Pattern: regexp.MustCompile(`^(\d{4})-(\d{4})$`),
		Format:  func(m []string) string { return m[1] },
	},
	{
		Name:    "day-month-year",
		Pattern: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`),
		Format: func(m []string) string {
			return fmt.Sprintf("%s-%s-%s", m[3], zeroPad(m[2]), zeroPad(m[1]))
		},
	},
}

var (
	descriptionPattern = regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)[:\s]+([^\n]{%d,%d})`,
		alternation(DescriptionLabels), DescriptionMinLen, DescriptionMaxLen))

	experiencePattern = regexp.MustCompile(`(?i)(\pL[\pL .&'-]*?)[ \t]*\|[ \t]*(\pL[\pL ,.'/-]*?)[ \t]*\|[ \t]*(\d{4}-\d{4}|\d{1,2}/\d{1,2}/\d{4})`)

	educationPattern = regexp.MustCompile(fmt.Sprintf(`(?im)^[ \t]*(?:%s)[: \t]+([^\n]+)`,
		alternation(EducationKeywords)))

	yearPattern = regexp.MustCompile(`\d{4}`)
)

func init() {
	for _, f := range LabeledFields {
		f.pattern = regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)[:\s]+([^\n]+)`, alternation(f.Labels)))
	}
}

// Extract derives a CandidateRecord from raw text. It never fails: every list
// field that finds nothing receives a single blank placeholder element.
func Extract(text string) *types.CandidateRecord {
	text = NormalizeText(text)

	rec := &types.CandidateRecord{
		FullName:             ExtractFullName(UsableLines(text)),
		CandidateDescription: ExtractDescription(text),
		Experiences:          ExtractExperiences(text),
		Educations:           ExtractEducations(text),
	}
	for _, f := range LabeledFields {
		f.Set(rec, ExtractLabeled(text, f))
	}

	applyPlaceholders(rec)
	return rec
}

// Parse is the checked entry point of the local engine: it rejects text with
// no usable line and otherwise returns Extract's result.
func Parse(text string) (*types.CandidateRecord, error) {
	if len(UsableLines(NormalizeText(text))) == 0 {
		return nil, &EmptyInputError{}
	}
	return Extract(text), nil
}

// ExtractFullName picks the first line among the first NameScanLineLimit
// non-blank lines that looks like a person's name. When none qualifies the
// first line is returned if it is long enough to be a name, otherwise
// PlaceholderName.
func ExtractFullName(lines []string) string {
	candidates := lines
	if len(candidates) > NameScanLineLimit {
		candidates = candidates[:NameScanLineLimit]
	}

	for _, raw := range candidates {
		line := collapseSpaces(raw)
		if isNameCandidate(line) {
			return line
		}
	}

	if len(candidates) > 0 {
		first := collapseSpaces(candidates[0])
		if utf8.RuneCountInString(first) >= NameMinLength {
			return first
		}
	}
	return PlaceholderName
}

func isNameCandidate(line string) bool {
	length := utf8.RuneCountInString(line)
	if length < NameMinLength || length > NameMaxLength {
		return false
	}
	if strings.ContainsAny(line, "@:0123456789") {
		return false
	}

	words := strings.Fields(line)
	if len(words) < NameMinWords || len(words) > NameMaxWords {
		return false
	}
	if _, stop := NameStopWords[strings.ToLower(words[0])]; stop {
		return false
	}

	capitalized := 0
	for _, w := range words {
		if r, _ := utf8.DecodeRuneInString(w); unicode.IsUpper(r) {
			capitalized++
		}
	}
	return float64(capitalized)/float64(len(words)) >= NameMinCapitalizedRatio
}

// ExtractLabeled collects the values following any of the field's labels.
func ExtractLabeled(text string, field *LabeledField) []string {
	var values []string
	for _, m := range field.pattern.FindAllStringSubmatch(text, -1) {
		values = append(values, m[1])
	}
	return dedupe(values)
}

// ExtractDescription returns the first description span, or "".
func ExtractDescription(text string) string {
	m := descriptionPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractExperiences reads every "company | job title | date" triple. Triples
// need not start a line: PDF pages often come out as a single line.
func ExtractExperiences(text string) []types.ExperienceRecord {
	var experiences []types.ExperienceRecord
	for _, m := range experiencePattern.FindAllStringSubmatch(text, -1) {
		experiences = append(experiences, types.ExperienceRecord{
			Company:   strings.TrimSpace(m[1]),
			JobTitle:  strings.TrimSpace(m[2]),
			StartDate: NormalizeDate(m[3]),
		})
	}
	return experiences
}

// NormalizeDate converts a date token using DateRules; unknown shapes yield "".
func NormalizeDate(token string) string {
	token = strings.TrimSpace(token)
	for _, rule := range DateRules {
		if m := rule.Pattern.FindStringSubmatch(token); m != nil {
			return rule.Format(m)
		}
	}
	return ""
}

// ExtractEducations reads lines starting with a degree keyword. The first
// four-digit run becomes the year and is removed from the degree text.
func ExtractEducations(text string) []types.EducationRecord {
	var educations []types.EducationRecord
	for _, m := range educationPattern.FindAllStringSubmatch(text, -1) {
		degree := strings.TrimSpace(m[1])
		year := yearPattern.FindString(degree)
		if year != "" {
			degree = strings.Replace(degree, year, "", 1)
		}
		educations = append(educations, types.EducationRecord{
			DegreeOrCertification: collapseSpaces(degree),
			Year:                  year,
		})
	}
	return educations
}

// applyPlaceholders guarantees index 0 exists on every list field.
func applyPlaceholders(rec *types.CandidateRecord) {
	if len(rec.Roles) == 0 {
		rec.Roles = []string{""}
	}
	if len(rec.GeneralExpertises) == 0 {
		rec.GeneralExpertises = []string{""}
	}
	if len(rec.Tools) == 0 {
		rec.Tools = []string{""}
	}
	if len(rec.Experiences) == 0 {
		rec.Experiences = []types.ExperienceRecord{{}}
	}
	if len(rec.Educations) == 0 {
		rec.Educations = []types.EducationRecord{{}}
	}
}

func alternation(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return strings.Join(quoted, "|")
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

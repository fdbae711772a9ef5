// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/skills-dossier/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the import command.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Widths are
// counted in runes so accented text stays aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidate outputs a human-readable summary of an extracted record.
func (p *Printer) PrintCandidate(rec *types.CandidateRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:   %s\n", orDash(rec.FullName))
	fmt.Fprintf(&sb, "Roles:  %s\n", orDash(joinNonBlank(rec.Roles)))
	if rec.CandidateDescription != "" {
		fmt.Fprintf(&sb, "About:  %s\n", rec.CandidateDescription)
	}
	if s := joinNonBlank(rec.GeneralExpertises); s != "" {
		fmt.Fprintf(&sb, "Skills: %s\n", s)
	}
	if s := joinNonBlank(rec.Tools); s != "" {
		fmt.Fprintf(&sb, "Tools:  %s\n", s)
	}

	experiences := nonEmptyExperiences(rec.Experiences)
	if len(experiences) > 0 {
		sb.WriteString("\nExperiences:\n")
		for i, e := range experiences {
			if i == maxItemsToShow {
				fmt.Fprintf(&sb, "  ... and %d more\n", len(experiences)-maxItemsToShow)
				break
			}
			fmt.Fprintf(&sb, "  • %s", orDash(e.Company))
			if e.JobTitle != "" {
				fmt.Fprintf(&sb, " / %s", e.JobTitle)
			}
			if period := period(e.StartDate, e.EndDate); period != "" {
				fmt.Fprintf(&sb, " (%s)", period)
			}
			sb.WriteString("\n")
		}
	}

	educations := nonEmptyEducations(rec.Educations)
	if len(educations) > 0 {
		sb.WriteString("\nEducation:\n")
		for i, e := range educations {
			if i == maxItemsToShow {
				fmt.Fprintf(&sb, "  ... and %d more\n", len(educations)-maxItemsToShow)
				break
			}
			fmt.Fprintf(&sb, "  • %s", orDash(e.DegreeOrCertification))
			if e.Year != "" {
				fmt.Fprintf(&sb, " (%s)", e.Year)
			}
			if e.Institution != "" {
				fmt.Fprintf(&sb, ", %s", e.Institution)
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("EXTRACTED CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

func nonEmptyExperiences(in []types.ExperienceRecord) []types.ExperienceRecord {
	var out []types.ExperienceRecord
	for _, e := range in {
		if e != (types.ExperienceRecord{}) {
			out = append(out, e)
		}
	}
	return out
}

func nonEmptyEducations(in []types.EducationRecord) []types.EducationRecord {
	var out []types.EducationRecord
	for _, e := range in {
		if e != (types.EducationRecord{}) {
			out = append(out, e)
		}
	}
	return out
}

func joinNonBlank(values []string) string {
	return strings.Join(types.NonBlank(values), ", ")
}

func period(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	default:
		return start + " - " + end
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

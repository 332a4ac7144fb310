package search

import (
	"strconv"
	"strings"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// All is the sentinel meaning "no constraint on this dimension".
const All = "all"

// PaperFilter names zero or more constraints to narrow the paper
// collection. Every field holds the raw string the caller supplied;
// "all" (or empty for Query) leaves that dimension unconstrained.
// Unrecognized values match nothing, same as no matches.
type PaperFilter struct {
	Query       string `json:"query"`
	Year        string `json:"year"`
	ExamType    string `json:"examType"`
	Branch      string `json:"branch"`
	Campus      string `json:"campus"`
	YearOfStudy string `json:"yearOfStudy"`
	Semester    string `json:"semester"`
}

// Unconstrained reports whether the filter places no constraint at all.
func (f PaperFilter) Unconstrained() bool {
	return f.Query == "" &&
		unconstrained(f.Year) && unconstrained(f.ExamType) &&
		unconstrained(f.Branch) && unconstrained(f.Campus) &&
		unconstrained(f.YearOfStudy) && unconstrained(f.Semester)
}

// Matches reports whether the paper satisfies every non-"all"
// predicate. Inclusion is the conjunction of all seven dimensions.
func (f PaperFilter) Matches(p *models.QuestionPaper) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Subject), strings.ToLower(f.Query)) {
		return false
	}
	if !unconstrained(f.Year) && strconv.Itoa(p.Year) != f.Year {
		return false
	}
	if !unconstrained(f.ExamType) && string(p.ExamType) != f.ExamType {
		return false
	}
	if !unconstrained(f.Branch) && string(p.Branch) != f.Branch {
		return false
	}
	if !unconstrained(f.Campus) && string(p.Campus) != f.Campus {
		return false
	}
	if !unconstrained(f.YearOfStudy) && string(p.YearOfStudy) != f.YearOfStudy {
		return false
	}
	if !unconstrained(f.Semester) && strconv.Itoa(p.Semester) != f.Semester {
		return false
	}
	return true
}

// Apply projects papers down to the subset matching the filter,
// preserving the input order. It is a pure function of its arguments.
func Apply(papers []models.QuestionPaper, f PaperFilter) []models.QuestionPaper {
	out := make([]models.QuestionPaper, 0, len(papers))
	for i := range papers {
		if f.Matches(&papers[i]) {
			out = append(out, papers[i])
		}
	}
	return out
}

func unconstrained(v string) bool {
	return v == "" || v == All
}

package search

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgukt-papers/paperhub/internal/models"
)

func samplePapers() []models.QuestionPaper {
	return []models.QuestionPaper{
		{
			ID: "p1", Subject: "Mathematics-II", Year: 2024,
			ExamType: models.ExamMid1, Branch: models.BranchCSE,
			Campus: models.CampusRKValley, YearOfStudy: models.YearE1, Semester: 2,
		},
		{
			ID: "p2", Subject: "Data Structures", Year: 2023,
			ExamType: models.ExamFinal, Branch: models.BranchCSE,
			Campus: models.CampusSrikakulam, YearOfStudy: models.YearE2, Semester: 1,
		},
		{
			ID: "p3", Subject: "Thermodynamics", Year: 2024,
			ExamType: models.ExamMid2, Branch: models.BranchMECH,
			Campus: models.CampusNuzvid, YearOfStudy: models.YearE2, Semester: 1,
		},
		{
			ID: "p4", Subject: "Mathematics-I", Year: 2022,
			ExamType: models.ExamMid1, Branch: models.BranchCommon,
			Campus: models.CampusOngole, YearOfStudy: models.YearP1, Semester: 1,
		},
	}
}

func unconstrainedFilter() PaperFilter {
	return PaperFilter{
		Query: "", Year: All, ExamType: All, Branch: All,
		Campus: All, YearOfStudy: All, Semester: All,
	}
}

func TestApply_AllSentinelsReturnEverythingInOrder(t *testing.T) {
	papers := samplePapers()
	got := Apply(papers, unconstrainedFilter())

	require.Len(t, got, len(papers))
	for i := range papers {
		assert.Equal(t, papers[i].ID, got[i].ID, "listing order must be preserved")
	}
}

func TestApply_EmptyStringsBehaveLikeAll(t *testing.T) {
	got := Apply(samplePapers(), PaperFilter{})
	assert.Len(t, got, len(samplePapers()))
}

func TestMatches_SingleDimensions(t *testing.T) {
	papers := samplePapers()

	tests := []struct {
		name   string
		filter PaperFilter
		want   []string
	}{
		{"subject substring case-insensitive", PaperFilter{Query: "math"}, []string{"p1", "p4"}},
		{"subject substring no match", PaperFilter{Query: "chemistry"}, []string{}},
		{"year", PaperFilter{Year: "2024"}, []string{"p1", "p3"}},
		{"exam type", PaperFilter{ExamType: "Final Sem Exam"}, []string{"p2"}},
		{"branch", PaperFilter{Branch: "CSE"}, []string{"p1", "p2"}},
		{"campus", PaperFilter{Campus: "RK Valley"}, []string{"p1"}},
		{"year of study", PaperFilter{YearOfStudy: "E2"}, []string{"p2", "p3"}},
		{"semester", PaperFilter{Semester: "1"}, []string{"p2", "p3", "p4"}},
		{"unrecognized value matches nothing", PaperFilter{ExamType: "mid9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(papers, tt.filter)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

// A Mathematics-II mid1 paper must be found by a loose query plus
// matching year, and excluded when the year constraint disagrees.
func TestApply_MathematicsScenario(t *testing.T) {
	papers := []models.QuestionPaper{{
		ID: "p1", Subject: "Mathematics-II", Year: 2024,
		ExamType: models.ExamMid1, Branch: models.BranchCSE,
		Campus: models.CampusRKValley, YearOfStudy: models.YearE1, Semester: 2,
	}}

	include := PaperFilter{Query: "math", Year: "2024", ExamType: All, Branch: All, Campus: All, YearOfStudy: All, Semester: All}
	exclude := include
	exclude.Year = "2023"

	assert.Len(t, Apply(papers, include), 1)
	assert.Empty(t, Apply(papers, exclude))
}

// Property: inclusion is exactly the conjunction of the per-dimension
// predicates, checked against an independent reference implementation
// over randomly generated papers and filters.
func TestApply_ConjunctionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	subjects := []string{"Mathematics-II", "Data Structures", "Thermodynamics", "English", "Physics"}
	examTypes := []models.ExamType{models.ExamMid1, models.ExamMid2, models.ExamMid3, models.ExamFinal}
	branches := []models.Branch{models.BranchCSE, models.BranchECE, models.BranchMECH, models.BranchCIVIL, models.BranchCommon}
	campuses := []models.Campus{models.CampusRKValley, models.CampusNuzvid, models.CampusSrikakulam, models.CampusOngole}
	years := []models.YearOfStudy{models.YearP1, models.YearP2, models.YearE1, models.YearE2, models.YearE3, models.YearE4}

	randPaper := func(i int) models.QuestionPaper {
		return models.QuestionPaper{
			ID:          fmt.Sprintf("p%d", i),
			Subject:     subjects[rng.Intn(len(subjects))],
			Year:        2020 + rng.Intn(6),
			ExamType:    examTypes[rng.Intn(len(examTypes))],
			Branch:      branches[rng.Intn(len(branches))],
			Campus:      campuses[rng.Intn(len(campuses))],
			YearOfStudy: years[rng.Intn(len(years))],
			Semester:    1 + rng.Intn(2),
		}
	}

	pick := func(options []string) string {
		if rng.Intn(2) == 0 {
			return All
		}
		return options[rng.Intn(len(options))]
	}

	randFilter := func() PaperFilter {
		query := ""
		if rng.Intn(2) == 0 {
			query = []string{"math", "data", "thermo", "zzz"}[rng.Intn(4)]
		}
		return PaperFilter{
			Query:       query,
			Year:        pick([]string{"2020", "2021", "2022", "2023", "2024", "2025"}),
			ExamType:    pick([]string{"mid1", "mid2", "mid3", "Final Sem Exam"}),
			Branch:      pick([]string{"CSE", "ECE", "MECH", "CIVIL", "common"}),
			Campus:      pick([]string{"RK Valley", "Nuzvid", "Srikakulam", "Ongole"}),
			YearOfStudy: pick([]string{"P1", "P2", "E1", "E2", "E3", "E4"}),
			Semester:    pick([]string{"1", "2"}),
		}
	}

	// reference predicate, written independently of Matches
	reference := func(p models.QuestionPaper, f PaperFilter) bool {
		ok := true
		if f.Query != "" {
			ok = ok && strings.Contains(strings.ToLower(p.Subject), strings.ToLower(f.Query))
		}
		if f.Year != All {
			ok = ok && strconv.Itoa(p.Year) == f.Year
		}
		if f.ExamType != All {
			ok = ok && string(p.ExamType) == f.ExamType
		}
		if f.Branch != All {
			ok = ok && string(p.Branch) == f.Branch
		}
		if f.Campus != All {
			ok = ok && string(p.Campus) == f.Campus
		}
		if f.YearOfStudy != All {
			ok = ok && string(p.YearOfStudy) == f.YearOfStudy
		}
		if f.Semester != All {
			ok = ok && strconv.Itoa(p.Semester) == f.Semester
		}
		return ok
	}

	papers := make([]models.QuestionPaper, 50)
	for i := range papers {
		papers[i] = randPaper(i)
	}

	for trial := 0; trial < 200; trial++ {
		f := randFilter()
		got := Apply(papers, f)

		included := make(map[string]bool, len(got))
		for _, p := range got {
			included[p.ID] = true
		}
		for _, p := range papers {
			assert.Equal(t, reference(p, f), included[p.ID],
				"paper %s, filter %+v", p.ID, f)
		}
	}
}

func TestPaperFilter_Unconstrained(t *testing.T) {
	assert.True(t, unconstrainedFilter().Unconstrained())
	assert.True(t, PaperFilter{}.Unconstrained())
	assert.False(t, PaperFilter{Year: "2024"}.Unconstrained())
	assert.False(t, PaperFilter{Query: "math"}.Unconstrained())
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rgukt-papers/paperhub/internal/models"
)

// SeedDemoData loads a small fixed dataset into the store so the app
// is browsable in demo mode. Fixture ids are stable on purpose.
func SeedDemoData(ctx context.Context, store *MemoryStore) error {
	users := []models.User{
		{ID: "u1", Name: "Anusha", AvatarURL: "https://picsum.photos/seed/anusha/40/40", Reputation: 125},
		{ID: "u2", Name: "Ravi Kumar", AvatarURL: "https://picsum.photos/seed/ravi/40/40", Reputation: 80},
		{ID: "u3", Name: "Priya Sharma", AvatarURL: "https://picsum.photos/seed/priya/40/40", Reputation: 210},
	}
	for i := range users {
		if err := store.CreateProfile(ctx, "", &users[i]); err != nil {
			return fmt.Errorf("seed profile %s: %w", users[i].ID, err)
		}
	}

	base := time.Now().Add(-30 * 24 * time.Hour)
	papers := []models.QuestionPaper{
		{
			ID:          "paper3",
			Subject:     "Thermodynamics",
			Year:        2024,
			ExamType:    models.ExamMid2,
			Branch:      models.BranchMECH,
			Campus:      models.CampusNuzvid,
			YearOfStudy: models.YearE2,
			Semester:    1,
			FileURL:     "https://www.africau.edu/images/default/sample.pdf",
			CreatedAt:   base,
		},
		{
			ID:          "paper2",
			Subject:     "Data Structures",
			Year:        2023,
			ExamType:    models.ExamFinal,
			Branch:      models.BranchCSE,
			Campus:      models.CampusSrikakulam,
			YearOfStudy: models.YearE2,
			Semester:    1,
			FileURL:     "https://www.africau.edu/images/default/sample.pdf",
			CreatedAt:   base.Add(24 * time.Hour),
		},
		{
			ID:          "paper1",
			Subject:     "Mathematics-II",
			Year:        2024,
			ExamType:    models.ExamMid1,
			Branch:      models.BranchCSE,
			Campus:      models.CampusRKValley,
			YearOfStudy: models.YearE1,
			Semester:    2,
			FileURL:     "https://www.africau.edu/images/default/sample.pdf",
			CreatedAt:   base.Add(48 * time.Hour),
			Questions: []models.Question{
				{
					ID:             "q1a",
					QuestionNumber: "1(a)",
					Text:           "Solve the differential equation (D² - 4D + 4)y = e²ˣ sin(3x).",
					Solutions: []models.Solution{
						{
							ID:          "s1",
							Author:      users[1],
							ContentType: models.ContentText,
							Content:     "The auxiliary equation is m² - 4m + 4 = 0, which gives (m-2)² = 0, so m=2, 2. Complementary Function (C.F) is (c₁+c₂x)e²ˣ. Particular Integral (P.I) is ...",
							Upvotes:     23,
							CreatedAt:   base.Add(72 * time.Hour),
						},
						{
							ID:          "s2",
							Author:      users[2],
							ContentType: models.ContentImage,
							Content:     "https://picsum.photos/seed/sol1/600/800",
							Upvotes:     45,
							CreatedAt:   base.Add(60 * time.Hour),
						},
					},
				},
				{
					ID:             "q2b",
					QuestionNumber: "2(b)",
					Text:           "Find the rank of the matrix A = [[1, 2, 3], [2, 4, 6], [3, 6, 9]].",
				},
				{
					ID:             "q4b",
					QuestionNumber: "4(b)",
					Text:           "Verify Cayley-Hamilton theorem for the matrix A = [[1, 4], [2, 3]] and find its inverse.",
					Solutions: []models.Solution{
						{
							ID:          "s3",
							Author:      users[0],
							ContentType: models.ContentText,
							Content:     "The characteristic equation is |A - λI| = 0. This gives (1-λ)(3-λ) - 8 = 0, which simplifies to λ² - 4λ - 5 = 0. By Cayley-Hamilton theorem, A² - 4A - 5I = 0...",
							Upvotes:     12,
							CreatedAt:   base.Add(21 * 24 * time.Hour),
						},
					},
				},
			},
		},
	}
	for i := range papers {
		if err := store.CreatePaper(ctx, &papers[i]); err != nil {
			return fmt.Errorf("seed paper %s: %w", papers[i].ID, err)
		}
	}
	return nil
}

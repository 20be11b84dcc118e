//go:build integration

package postgres_test

import (
	"testing"

	"github.com/shelflab/platform/internal/domain/responses"
	domainsurveys "github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/domain/users"
	pgstorage "github.com/shelflab/platform/internal/storage/postgres"
)

func TestResponseRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	userRepo := pgstorage.NewUserRepository(db)
	surveyRepo := pgstorage.NewSurveyRepository(db)
	responseRepo := pgstorage.NewResponseRepository(db)

	owner, err := userRepo.Save(users.User{Email: "resp@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	survey, err := surveyRepo.Save(domainsurveys.Survey{
		OwnerID:            owner.ID,
		Name:               "Snacks",
		Status:             domainsurveys.StatusLive,
		PriceLevels:        2,
		TasksPerRespondent: 5,
		Products: []domainsurveys.Product{
			{Name: "Chips", MinPrice: 100, MaxPrice: 200},
			{Name: "Pretzels", MinPrice: 100, MaxPrice: 200},
		},
	})
	if err != nil {
		t.Fatalf("save survey: %v", err)
	}

	saved, err := responseRepo.Save(responses.Response{
		SurveyID:     survey.ID,
		RespondentID: "resp-1",
		Kind:         responses.KindHuman,
		Levels:       []int{0, 1},
		Choice:       1,
	})
	if err != nil {
		t.Fatalf("save response: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected response id")
	}

	if _, err := responseRepo.Save(responses.Response{
		SurveyID:     survey.ID,
		RespondentID: "synthetic-1",
		Kind:         responses.KindSynthetic,
		Persona:      "bargain-hunter",
		Levels:       []int{1, 0},
		Choice:       -1,
	}); err != nil {
		t.Fatalf("save synthetic response: %v", err)
	}

	list, err := responseRepo.ListBySurvey(survey.ID, 0, 0)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(list))
	}
	if list[0].Levels[1] != 1 {
		t.Fatalf("levels round trip broken: %v", list[0].Levels)
	}
	if list[1].Choice != -1 {
		t.Fatalf("none choice round trip broken: %d", list[1].Choice)
	}

	count, err := responseRepo.CountBySurvey(survey.ID)
	if err != nil {
		t.Fatalf("count responses: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

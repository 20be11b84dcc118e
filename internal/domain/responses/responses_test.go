package responses_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/storage/memory"
)

func newFixture(t *testing.T, live bool) (responses.Service, surveys.Survey) {
	t.Helper()

	surveySvc := surveys.NewService(memory.NewSurveyRepository())
	survey, err := surveySvc.Create("owner-1", surveys.Input{
		Name:               "Juice shelf",
		PriceLevels:        3,
		TasksPerRespondent: 5,
		Products: []surveys.ProductInput{
			{Name: "Orange", MinPrice: 100, MaxPrice: 200},
			{Name: "Apple", MinPrice: 120, MaxPrice: 240},
			{Name: "Grape", MinPrice: 150, MaxPrice: 300},
		},
	})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}
	if live {
		if survey, err = surveySvc.UpdateStatus(survey.ID, "owner-1", surveys.StatusLive); err != nil {
			t.Fatalf("set live failed: %v", err)
		}
	}

	return responses.NewService(memory.NewResponseRepository(), surveySvc), survey
}

func TestTasksDeterministicPerRespondent(t *testing.T) {
	svc, survey := newFixture(t, true)

	first, err := svc.Tasks(survey.ID, "resp-1")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	second, err := svc.Tasks(survey.ID, "resp-1")
	if err != nil {
		t.Fatalf("tasks reload failed: %v", err)
	}

	if !reflect.DeepEqual(first.Tasks, second.Tasks) {
		t.Fatalf("expected identical tasks on reload")
	}
	if len(first.Tasks) != survey.TasksPerRespondent {
		t.Fatalf("expected %d tasks, got %d", survey.TasksPerRespondent, len(first.Tasks))
	}
	for _, task := range first.Tasks {
		if len(task) != len(survey.Products) {
			t.Fatalf("expected one level per product, got %v", task)
		}
		for _, lvl := range task {
			if lvl < 0 || lvl >= survey.PriceLevels {
				t.Fatalf("level %d out of range", lvl)
			}
		}
	}
	if len(first.Grid) != len(survey.Products) {
		t.Fatalf("expected grid row per product, got %d", len(first.Grid))
	}
}

func TestTasksRequiresLiveSurvey(t *testing.T) {
	svc, survey := newFixture(t, false)

	if _, err := svc.Tasks(survey.ID, "resp-1"); !errors.Is(err, responses.ErrSurveyNotLive) {
		t.Fatalf("expected ErrSurveyNotLive, got %v", err)
	}
}

func TestSubmitValidatesChoice(t *testing.T) {
	svc, survey := newFixture(t, true)

	base := responses.SubmitInput{
		SurveyID:     survey.ID,
		RespondentID: "resp-1",
		Levels:       []int{0, 1, 2},
	}

	short := base
	short.Levels = []int{0, 1}
	if _, err := svc.Submit(short); !errors.Is(err, responses.ErrBadChoice) {
		t.Fatalf("expected ErrBadChoice for short level vector, got %v", err)
	}

	outOfRange := base
	outOfRange.Levels = []int{0, 1, 3}
	if _, err := svc.Submit(outOfRange); !errors.Is(err, responses.ErrBadChoice) {
		t.Fatalf("expected ErrBadChoice for level out of range, got %v", err)
	}

	badPick := base
	badPick.Choice = 3
	if _, err := svc.Submit(badPick); !errors.Is(err, responses.ErrBadChoice) {
		t.Fatalf("expected ErrBadChoice for choice out of range, got %v", err)
	}

	none := base
	none.Choice = -1
	if _, err := svc.Submit(none); err != nil {
		t.Fatalf("none choice should be accepted: %v", err)
	}
}

func TestSubmitStoresHumanResponse(t *testing.T) {
	svc, survey := newFixture(t, true)

	saved, err := svc.Submit(responses.SubmitInput{
		SurveyID:     survey.ID,
		RespondentID: "resp-1",
		Levels:       []int{2, 0, 1},
		Choice:       1,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected stored response to get an id")
	}
	if saved.Kind != responses.KindHuman {
		t.Fatalf("expected kind to default to human, got %s", saved.Kind)
	}

	count, err := svc.CountBySurvey(survey.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored response, got %d", count)
	}

	list, err := svc.ListBySurvey(survey.ID, 0, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Choice != 1 {
		t.Fatalf("unexpected list contents: %+v", list)
	}
}

func TestSubmitRejectsClosedSurvey(t *testing.T) {
	surveySvc := surveys.NewService(memory.NewSurveyRepository())
	survey, err := surveySvc.Create("owner-1", surveys.Input{
		Name: "Closed shelf",
		Products: []surveys.ProductInput{
			{Name: "Only", MinPrice: 100, MaxPrice: 200},
		},
	})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}
	if _, err := surveySvc.UpdateStatus(survey.ID, "owner-1", surveys.StatusLive); err != nil {
		t.Fatalf("set live failed: %v", err)
	}
	if _, err := surveySvc.UpdateStatus(survey.ID, "owner-1", surveys.StatusClosed); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	svc := responses.NewService(memory.NewResponseRepository(), surveySvc)
	_, err = svc.Submit(responses.SubmitInput{
		SurveyID:     survey.ID,
		RespondentID: "resp-1",
		Levels:       []int{0},
		Choice:       0,
	})
	if !errors.Is(err, responses.ErrSurveyNotLive) {
		t.Fatalf("expected ErrSurveyNotLive, got %v", err)
	}
}

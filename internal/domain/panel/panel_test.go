package panel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shelflab/platform/internal/domain/panel"
	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/storage/memory"
)

type fixture struct {
	surveys   surveys.Service
	responses responses.Service
	runs      panel.Repository
	survey    surveys.Survey
}

func newFixture(t *testing.T, live bool) fixture {
	t.Helper()

	surveySvc := surveys.NewService(memory.NewSurveyRepository())
	survey, err := surveySvc.Create("owner-1", surveys.Input{
		Name:               "Cereal shelf",
		PriceLevels:        3,
		TasksPerRespondent: 4,
		Products: []surveys.ProductInput{
			{Name: "Oat Rings", Brand: "Morning Co", MinPrice: 299, MaxPrice: 499},
			{Name: "Corn Flakes", Brand: "Morning Co", MinPrice: 249, MaxPrice: 399},
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

	return fixture{
		surveys:   surveySvc,
		responses: responses.NewService(memory.NewResponseRepository(), surveySvc),
		runs:      memory.NewPanelRunRepository(),
		survey:    survey,
	}
}

func loadPersonas(t *testing.T) []panel.Persona {
	t.Helper()
	personas, err := panel.LoadPersonas("")
	if err != nil {
		t.Fatalf("load personas failed: %v", err)
	}
	return personas
}

func TestLaunchHeuristicRun(t *testing.T) {
	f := newFixture(t, true)
	svc := panel.NewService(f.runs, f.surveys, f.responses, panel.NewHeuristicChooser(1), panel.Options{
		Personas: loadPersonas(t),
		Model:    "heuristic",
	})

	run, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{Respondents: 5})
	if err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	if run.Status != panel.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s (%s)", run.Status, run.Error)
	}
	if run.Respondents != 5 {
		t.Fatalf("expected 5 respondents, got %d", run.Respondents)
	}

	// The heuristic chooser always answers, so every task becomes a
	// stored response.
	wantResponses := 5 * f.survey.TasksPerRespondent
	if run.Completed != wantResponses || run.Skipped != 0 {
		t.Fatalf("expected %d completed and 0 skipped, got %d/%d", wantResponses, run.Completed, run.Skipped)
	}

	count, err := f.responses.CountBySurvey(f.survey.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != wantResponses {
		t.Fatalf("expected %d stored responses, got %d", wantResponses, count)
	}

	stored, err := f.responses.ListBySurvey(f.survey.ID, 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, resp := range stored {
		if resp.Kind != responses.KindSynthetic {
			t.Fatalf("expected synthetic responses, got %s", resp.Kind)
		}
		if resp.Persona == "" {
			t.Fatalf("expected persona to be recorded")
		}
	}

	runs, err := svc.ListBySurvey(f.survey.ID, "owner-1")
	if err != nil {
		t.Fatalf("list runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("expected the launched run to be listed")
	}
}

func TestLaunchRequiresLiveSurvey(t *testing.T) {
	f := newFixture(t, false)
	svc := panel.NewService(f.runs, f.surveys, f.responses, panel.NewHeuristicChooser(1), panel.Options{
		Personas: loadPersonas(t),
	})

	_, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{})
	if !errors.Is(err, responses.ErrSurveyNotLive) {
		t.Fatalf("expected ErrSurveyNotLive, got %v", err)
	}
}

func TestLaunchRequiresChooser(t *testing.T) {
	f := newFixture(t, true)
	svc := panel.NewService(f.runs, f.surveys, f.responses, nil, panel.Options{
		Personas: loadPersonas(t),
	})

	_, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{})
	if !errors.Is(err, panel.ErrNoChooser) {
		t.Fatalf("expected ErrNoChooser, got %v", err)
	}
}

func TestLaunchRejectsOversizedPanel(t *testing.T) {
	f := newFixture(t, true)
	svc := panel.NewService(f.runs, f.surveys, f.responses, panel.NewHeuristicChooser(1), panel.Options{
		Personas: loadPersonas(t),
	})

	if _, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{Respondents: 501}); err == nil {
		t.Fatalf("expected error for oversized panel")
	}
}

// skippingChooser refuses every shelf the way a model returning garbage
// would.
type skippingChooser struct{}

func (skippingChooser) Choose(context.Context, panel.Persona, []panel.ShelfItem) (int, error) {
	return 0, panel.ErrSkip
}

func TestLaunchRecordsSkips(t *testing.T) {
	f := newFixture(t, true)
	svc := panel.NewService(f.runs, f.surveys, f.responses, skippingChooser{}, panel.Options{
		Personas: loadPersonas(t),
	})

	run, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{Respondents: 2})
	if err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	if run.Status != panel.RunStatusCompleted {
		t.Fatalf("skips should not fail the run, got %s", run.Status)
	}
	want := 2 * f.survey.TasksPerRespondent
	if run.Skipped != want || run.Completed != 0 {
		t.Fatalf("expected %d skips and 0 completions, got %d/%d", want, run.Skipped, run.Completed)
	}
}

// brokenChooser simulates a transport failure.
type brokenChooser struct{}

func (brokenChooser) Choose(context.Context, panel.Persona, []panel.ShelfItem) (int, error) {
	return 0, errors.New("upstream unavailable")
}

func TestLaunchFailureKeepsRunRecord(t *testing.T) {
	f := newFixture(t, true)
	svc := panel.NewService(f.runs, f.surveys, f.responses, brokenChooser{}, panel.Options{
		Personas: loadPersonas(t),
	})

	run, err := svc.Launch(context.Background(), f.survey.ID, "owner-1", panel.LaunchInput{Respondents: 2})
	if err == nil {
		t.Fatalf("expected launch to report the chooser failure")
	}
	if run.ID == "" {
		t.Fatalf("expected the failed run to be persisted")
	}
	if run.Status != panel.RunStatusFailed {
		t.Fatalf("expected failed status, got %s", run.Status)
	}
	if run.Error == "" {
		t.Fatalf("expected run error to be recorded")
	}
}

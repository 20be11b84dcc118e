package surveys_test

import (
	"errors"
	"testing"

	"github.com/shelflab/platform/internal/conjoint"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/storage/memory"
)

func twoProducts() []surveys.ProductInput {
	return []surveys.ProductInput{
		{Name: "Cola", Brand: "Fizz Co", MinPrice: 100, MaxPrice: 200},
		{Name: "Lemonade", Brand: "Fizz Co", MinPrice: 150, MaxPrice: 300},
	}
}

func TestSurveyServiceCreateDefaults(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	survey, err := svc.Create("owner-1", surveys.Input{
		Name:     "Soda shelf",
		Products: twoProducts(),
	})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}
	if survey.Status != surveys.StatusDraft {
		t.Fatalf("expected draft status, got %s", survey.Status)
	}
	if survey.PriceLevels != 3 {
		t.Fatalf("expected default 3 price levels, got %d", survey.PriceLevels)
	}
	if survey.TasksPerRespondent != 10 {
		t.Fatalf("expected default 10 tasks, got %d", survey.TasksPerRespondent)
	}
	if len(survey.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(survey.Products))
	}
	if survey.Products[1].SortOrder != 1 {
		t.Fatalf("expected sort order to follow input order")
	}
}

func TestSurveyServiceCreateValidation(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	products := make([]surveys.ProductInput, 7)
	for i := range products {
		products[i] = surveys.ProductInput{Name: "P", MinPrice: 100, MaxPrice: 200}
	}
	if _, err := svc.Create("owner-1", surveys.Input{Name: "Too wide", Products: products}); !errors.Is(err, conjoint.ErrTooManyProducts) {
		t.Fatalf("expected ErrTooManyProducts, got %v", err)
	}

	bad := twoProducts()
	bad[0].MaxPrice = bad[0].MinPrice - 1
	if _, err := svc.Create("owner-1", surveys.Input{Name: "Inverted range", Products: bad}); !errors.Is(err, conjoint.ErrBadPriceRange) {
		t.Fatalf("expected ErrBadPriceRange, got %v", err)
	}

	if _, err := svc.Create("owner-1", surveys.Input{Products: twoProducts()}); !errors.Is(err, surveys.ErrBadInput) {
		t.Fatalf("expected ErrBadInput for missing name, got %v", err)
	}
}

func TestSurveyServiceStatusTransitions(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	survey, err := svc.Create("owner-1", surveys.Input{Name: "Lifecycle", Products: twoProducts()})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}

	if _, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusClosed); !errors.Is(err, surveys.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition for draft->closed, got %v", err)
	}

	live, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusLive)
	if err != nil {
		t.Fatalf("draft->live failed: %v", err)
	}
	if live.Status != surveys.StatusLive {
		t.Fatalf("expected live status, got %s", live.Status)
	}

	if _, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusDraft); !errors.Is(err, surveys.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition for live->draft, got %v", err)
	}

	closed, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusClosed)
	if err != nil {
		t.Fatalf("live->closed failed: %v", err)
	}
	if closed.Status != surveys.StatusClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}

	if _, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusLive); !errors.Is(err, surveys.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition for closed->live, got %v", err)
	}
}

func TestSurveyServiceEditRequiresDraft(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	survey, err := svc.Create("owner-1", surveys.Input{Name: "Frozen", Products: twoProducts()})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}
	if _, err := svc.UpdateStatus(survey.ID, "owner-1", surveys.StatusLive); err != nil {
		t.Fatalf("set live failed: %v", err)
	}

	if _, err := svc.Update(survey.ID, "owner-1", surveys.Input{Name: "Renamed", Products: twoProducts()}); !errors.Is(err, surveys.ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft on update, got %v", err)
	}
	if err := svc.Delete(survey.ID, "owner-1"); !errors.Is(err, surveys.ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft on delete, got %v", err)
	}
}

func TestSurveyServiceOwnerIsolation(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	survey, err := svc.Create("owner-1", surveys.Input{Name: "Private", Products: twoProducts()})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}

	if _, err := svc.GetForOwner(survey.ID, "owner-2"); !errors.Is(err, surveys.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetForOwner("missing", "owner-1"); !errors.Is(err, surveys.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSurveyServiceScenarios(t *testing.T) {
	svc := surveys.NewService(memory.NewSurveyRepository())

	survey, err := svc.Create("owner-1", surveys.Input{
		Name:        "Preview",
		PriceLevels: 3,
		Products:    twoProducts(),
	})
	if err != nil {
		t.Fatalf("create survey failed: %v", err)
	}

	preview, err := svc.Scenarios(survey.ID, "owner-1")
	if err != nil {
		t.Fatalf("scenarios failed: %v", err)
	}
	if preview.ScenarioCount != 9 {
		t.Fatalf("expected 9 scenarios for 2 products x 3 levels, got %d", preview.ScenarioCount)
	}
	if len(preview.Grid) != 2 || len(preview.Grid[0]) != 3 {
		t.Fatalf("unexpected grid shape: %v", preview.Grid)
	}
	if len(preview.Sample) != 9 {
		t.Fatalf("expected full enumeration when design is smaller than sample size, got %d", len(preview.Sample))
	}
}

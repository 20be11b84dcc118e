package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflab/platform/internal/domain/responses"
	domainsurveys "github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/domain/users"
	"github.com/shelflab/platform/internal/storage/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedOwner(t *testing.T, db *sql.DB) users.User {
	t.Helper()
	owner, err := sqlite.NewUserRepository(db).Save(users.User{
		Email:        "owner@example.com",
		Name:         "Owner",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return owner
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := sqlite.NewUserRepository(db)

	saved, err := repo.Save(users.User{Email: "Mixed@Example.com", Name: "Mixed", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	byEmail, err := repo.FindByEmail("mixed@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID, "emails are stored lowercased")

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestSurveyRepositoryAggregate(t *testing.T) {
	db := openTestDB(t)
	owner := seedOwner(t, db)
	repo := sqlite.NewSurveyRepository(db)

	created, err := repo.Save(domainsurveys.Survey{
		OwnerID:            owner.ID,
		Name:               "Yogurt shelf",
		Status:             domainsurveys.StatusDraft,
		PriceLevels:        3,
		TasksPerRespondent: 8,
		Products: []domainsurveys.Product{
			{Name: "Greek", Brand: "Alpine", MinPrice: 199, MaxPrice: 399},
			{Name: "Skyr", Brand: "Nordic", MinPrice: 249, MaxPrice: 449},
		},
	})
	require.NoError(t, err)

	fetched, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Products, 2)
	assert.Equal(t, "Greek", fetched.Products[0].Name)
	assert.Equal(t, created.ID, fetched.Products[0].SurveyID)

	// Update replaces the product list wholesale.
	fetched.Products = fetched.Products[1:]
	updated, err := repo.Save(fetched)
	require.NoError(t, err)

	refetched, err := repo.FindByID(updated.ID)
	require.NoError(t, err)
	require.Len(t, refetched.Products, 1)
	assert.Equal(t, "Skyr", refetched.Products[0].Name)

	list, err := repo.ListByOwner(owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.FindByID(created.ID)
	assert.ErrorIs(t, err, domainsurveys.ErrNotFound)
}

func TestResponseRepositoryLevelsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	owner := seedOwner(t, db)

	survey, err := sqlite.NewSurveyRepository(db).Save(domainsurveys.Survey{
		OwnerID:            owner.ID,
		Name:               "Snacks",
		Status:             domainsurveys.StatusLive,
		PriceLevels:        2,
		TasksPerRespondent: 4,
		Products: []domainsurveys.Product{
			{Name: "Chips", MinPrice: 100, MaxPrice: 200},
			{Name: "Nuts", MinPrice: 150, MaxPrice: 300},
		},
	})
	require.NoError(t, err)

	repo := sqlite.NewResponseRepository(db)
	for i := 0; i < 3; i++ {
		_, err := repo.Save(responses.Response{
			SurveyID:     survey.ID,
			RespondentID: "r-1",
			Kind:         responses.KindHuman,
			Levels:       []int{i % 2, 1 - i%2},
			Choice:       i%2 - 1, // mixes none (-1) and product 0
		})
		require.NoError(t, err)
	}

	list, err := repo.ListBySurvey(survey.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)

	nones := 0
	for _, resp := range list {
		assert.Len(t, resp.Levels, 2)
		if resp.Choice == -1 {
			nones++
		}
	}
	assert.Equal(t, 2, nones)

	paged, err := repo.ListBySurvey(survey.ID, 1, 1)
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	count, err := repo.CountBySurvey(survey.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/models"
)

func TestSportRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sports (name) VALUES ($1) RETURNING id`)).
		WithArgs("Football").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	sport := &models.Sport{Name: "Football"}
	require.NoError(t, repo.Create(context.Background(), sport))
	assert.Equal(t, 7, sport.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sports`)).
		WithArgs("Football").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "sports_name_key"})

	err = repo.Create(context.Background(), &models.Sport{Name: "Football"})
	assert.ErrorIs(t, err, ErrSportNameConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSportRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM sports WHERE id = $1`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSportNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSportRepository_GetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM sports ORDER BY name ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Boxing").AddRow(1, "Chess"))

	sports, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Sport{{ID: 2, Name: "Boxing"}, {ID: 1, Name: "Chess"}}, sports)
}

func TestSportRepository_UpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sports SET name = $1 WHERE id = $2`)).
		WithArgs("Chess", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), &models.Sport{ID: 3, Name: "Chess"})
	assert.ErrorIs(t, err, ErrSportNotFound)
}

func TestSportRepository_DeleteWithDependentsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"competition_participants", "competitions", "experience", "trainings", "coach_sports"} {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ` + table + ` WHERE`)).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sports WHERE id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteWithDependents(context.Background(), tx, 5))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSportRepository_CountDependents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sports s`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "c", "t", "e", "comp"}).
			AddRow(1, "Chess", 2, 5, 3, 1))

	preview, err := repo.CountDependents(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Chess", preview.SportName)
	assert.Equal(t, 2, preview.CoachLinks)
	assert.Equal(t, 5, preview.Trainings)
	assert.Equal(t, 3, preview.ExperienceTitles)
	assert.Equal(t, 1, preview.Competitions)
}

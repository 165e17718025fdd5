package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/models"
)

func TestPersonRepository_Update(t *testing.T) {
	coach := &models.Person{ID: 2, FirstName: "Anna", LastName: "Orlova", BirthDate: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)}
	update := regexp.QuoteMeta(`UPDATE people p`)
	exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM people WHERE id = $1)`)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "updated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WithArgs("Anna", "Orlova", nil, coach.BirthDate, false, 2).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "role locked by links",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(exists).WithArgs(2).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: ErrPersonRoleLocked,
		},
		{
			name: "missing person",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(exists).WithArgs(2).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: ErrPersonNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			err = NewPostgresPersonRepository(db).Update(context.Background(), coach)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPersonRepository_UpdateGuardsRoleChange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// смена роли и обновление - один оператор, без окна между проверкой и записью
	mock.ExpectExec(regexp.QuoteMeta(`AND (p.is_coach = $5 OR NOT EXISTS (`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresPersonRepository(db).Update(context.Background(), &models.Person{ID: 1, FirstName: "Ivan", LastName: "Petrov", IsCoach: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

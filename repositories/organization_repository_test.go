package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/models"
)

func TestOrganizationRepository_Delete(t *testing.T) {
	deleteQuery := regexp.QuoteMeta(`DELETE FROM organizations WHERE id = $1`)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(deleteQuery).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "owns buildings",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(deleteQuery).WithArgs(3).
					WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "buildings_organization_id_fkey"})
			},
			wantErr: ErrOrganizationInUse,
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(deleteQuery).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrOrganizationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			err = NewPostgresOrganizationRepository(db).Delete(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrganizationRepository_NameConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresOrganizationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO organizations`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "organizations_name_key"})
	err = repo.Create(context.Background(), &models.Organization{Name: "City Sports"})
	assert.ErrorIs(t, err, ErrOrganizationNameConflict)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE organizations SET name = $1`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "organizations_name_key"})
	err = repo.Update(context.Background(), &models.Organization{ID: 1, Name: "City Sports"})
	assert.ErrorIs(t, err, ErrOrganizationNameConflict)

	// чужие ошибки не превращаются в конфликт
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE organizations SET name = $1`)).WillReturnError(boom)
	err = repo.Update(context.Background(), &models.Organization{ID: 1, Name: "City Sports"})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

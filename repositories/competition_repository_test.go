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

func TestCompetitionRepository_AddParticipantErrors(t *testing.T) {
	insert := regexp.QuoteMeta(`INSERT INTO competition_participants`)

	tests := []struct {
		name    string
		code    pq.ErrorCode
		wantErr error
	}{
		{"duplicate", pqUniqueViolation, ErrCompetitionParticipantExists},
		{"unknown sportsman", pqForeignKeyViolation, ErrCompetitionParticipantBad},
		{"place out of range", pqCheckViolation, ErrCompetitionParticipantBad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(insert).WillReturnError(&pq.Error{Code: tt.code})
			err = NewPostgresCompetitionRepository(db).AddParticipant(context.Background(),
				&models.CompetitionParticipant{CompetitionID: 1, SportsmanID: 2})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCompetitionRepository_RemoveParticipantAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM competition_participants`)).
		WithArgs(1, 2).WillReturnResult(sqlmock.NewResult(0, 0))
	err = NewPostgresCompetitionRepository(db).RemoveParticipant(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrCompetitionParticipantAbsent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-request-api/internal/models"
)

func TestDecidePetitionAdvisorColumn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPetitionRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE general_petitions SET status = \\$1, advisor_comment = \\$2").
		WithArgs(models.StatusAdvisorApproved, "fine", now, "p1", models.StatusPendingAdvisor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "p1",
		Expected:  models.StatusPendingAdvisor,
		Next:      models.StatusAdvisorApproved,
		Role:      models.RoleAdvisor,
		Comment:   "fine",
		DecidedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePetitionHeadColumn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPetitionRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE general_petitions SET status = \\$1, head_comment = \\$2").
		WithArgs(models.StatusHeadRejected, "incomplete", now, "p1", models.StatusAdvisorApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "p1",
		Expected:  models.StatusAdvisorApproved,
		Next:      models.StatusHeadRejected,
		Role:      models.RoleHead,
		Comment:   "incomplete",
		DecidedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePetitionUnknownStep(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewPetitionRepository(db)

	err := repo.Decide(context.Background(), DecideParams{ID: "p1", Role: models.RoleInstructor})
	assert.Error(t, err)
}

func TestDeletePetitionGuardedByStatusSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPetitionRepository(db)

	mock.ExpectExec("DELETE FROM general_petitions WHERE id = \\$1 AND status IN \\(\\$2,\\$3\\)").
		WithArgs("p1", models.StatusPendingAdvisor, models.StatusAdvisorApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "p1", models.StatusPendingAdvisor, models.StatusAdvisorApproved)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPetitionDrafts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPetitionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "petition_type", "details", "status", "owner_id", "created_at", "updated_at"}).
		AddRow("p1", string(models.PetitionLeave), "sick leave", string(models.StatusDraft), "u1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM general_petitions WHERE owner_id = \\$1 AND status = \\$2").
		WithArgs("u1", models.StatusDraft).
		WillReturnRows(rows)

	drafts, err := repo.ListDrafts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, models.PetitionLeave, drafts[0].PetitionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

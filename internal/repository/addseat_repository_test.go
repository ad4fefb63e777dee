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

func TestCreateAddSeatRequest(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	mock.ExpectExec("INSERT INTO add_seat_requests").WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.AddSeatRequest{StudentName: "Somchai", CourseCode: "ENG101", Status: models.StatusSubmitted, OwnerID: "u1"}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideAddSeatConditionalOnStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE add_seat_requests SET status = \\$1, instructor_comment = \\$2").
		WithArgs(models.StatusInstructorApproved, "ok", now, "r1", models.StatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "r1",
		Expected:  models.StatusSubmitted,
		Next:      models.StatusInstructorApproved,
		Role:      models.RoleInstructor,
		Comment:   "ok",
		DecidedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideAddSeatLostRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	// The row already moved past the expected status, so the guarded
	// update touches nothing.
	mock.ExpectExec("UPDATE add_seat_requests SET status = \\$1, instructor_comment = \\$2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "r1",
		Expected:  models.StatusSubmitted,
		Next:      models.StatusInstructorRejected,
		Role:      models.RoleInstructor,
		DecidedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideAddSeatWrongRole(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	err := repo.Decide(context.Background(), DecideParams{ID: "r1", Role: models.RoleAdvisor})
	assert.Error(t, err)
}

func TestSetAddSeatStatusLostRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	mock.ExpectExec("UPDATE add_seat_requests SET status = \\$1, updated_at = \\$2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), "r1", models.StatusDraft, models.StatusSubmitted, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAddSeatGuardedByStatusSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	mock.ExpectExec("DELETE FROM add_seat_requests WHERE id = \\$1 AND status IN \\(\\$2,\\$3\\)").
		WithArgs("r1", models.StatusSubmitted, models.StatusInstructorApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "r1", models.StatusSubmitted, models.StatusInstructorApproved)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAddSeatDraftOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	mock.ExpectExec("UPDATE add_seat_requests SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDraft(context.Background(), &models.AddSeatRequest{ID: "r1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAddSeatByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_name", "course_code", "status", "owner_id", "created_at", "updated_at"}).
		AddRow("r1", "Somchai", "ENG101", string(models.StatusSubmitted), "u1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM add_seat_requests WHERE status = \\$1 ORDER BY created_at ASC").
		WithArgs(models.StatusSubmitted).
		WillReturnRows(rows)

	reqs, err := repo.ListByStatus(context.Background(), models.StatusSubmitted)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, models.StatusSubmitted, reqs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAddSeatDrafts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAddSeatRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM add_seat_requests WHERE owner_id = \\$1 AND status = \\$2").
		WithArgs("u1", models.StatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountDrafts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

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

func TestDecideOpenCourseAdvisorColumn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpenCourseRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE open_course_requests SET status = \\$1, advisor_comment = \\$2").
		WithArgs(models.StatusAdvisorApproved, "good demand", now, "oc1", models.StatusPendingAdvisor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "oc1",
		Expected:  models.StatusPendingAdvisor,
		Next:      models.StatusAdvisorApproved,
		Role:      models.RoleAdvisor,
		Comment:   "good demand",
		DecidedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideOpenCourseHeadLostRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpenCourseRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE open_course_requests SET status = \\$1, head_comment = \\$2").
		WithArgs(models.StatusHeadApproved, "", now, "oc1", models.StatusAdvisorApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "oc1",
		Expected:  models.StatusAdvisorApproved,
		Next:      models.StatusHeadApproved,
		Role:      models.RoleHead,
		DecidedAt: now,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideOpenCourseUnknownStep(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpenCourseRepository(db)

	err := repo.Decide(context.Background(), DecideParams{ID: "oc1", Role: models.RoleInstructor})
	assert.Error(t, err)
}

func TestUpdateOpenCourseDraftOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpenCourseRepository(db)

	mock.ExpectExec("UPDATE open_course_requests SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDraft(context.Background(), &models.OpenCourseRequest{ID: "oc1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOpenCourseDrafts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOpenCourseRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM open_course_requests WHERE owner_id = \\$1 AND status = \\$2").
		WithArgs("u1", models.StatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountDrafts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

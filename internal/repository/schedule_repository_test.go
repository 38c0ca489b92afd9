package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryReplaceWeekly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_schedules WHERE provider_id = $1")).
		WithArgs("prov-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO provider_schedules")).
		WithArgs(sqlmock.AnyArg(), "prov-1", 1, "09:00", "12:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO provider_schedules")).
		WithArgs(sqlmock.AnyArg(), "prov-1", 3, "10:00", "16:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.ScheduleEntry{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "16:00", IsAvailable: true},
	}
	require.NoError(t, repo.ReplaceWeekly(context.Background(), "prov-1", entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceWeeklyRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_schedules WHERE provider_id = $1")).
		WithArgs("prov-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO provider_schedules")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceWeekly(context.Background(), "prov-1", []models.ScheduleEntry{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceWeeklyEmptyClearsAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_schedules WHERE provider_id = $1")).
		WithArgs("prov-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceWeekly(context.Background(), "prov-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryGetWeekly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "provider_id", "day_of_week", "start_time", "end_time", "is_available", "created_at"}).
		AddRow("sch-1", "prov-1", 1, "09:00", "12:00", true, time.Now()).
		AddRow("sch-2", "prov-1", 4, "13:00", "18:00", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM provider_schedules WHERE provider_id = $1 ORDER BY day_of_week ASC")).
		WithArgs("prov-1").
		WillReturnRows(rows)

	entries, err := repo.GetWeekly(context.Background(), "prov-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].DayOfWeek)
	assert.Equal(t, "13:00", entries[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByProviderAndDayNotConfigured(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE provider_id = $1 AND day_of_week = $2")).
		WithArgs("prov-1", 2).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByProviderAndDay(context.Background(), "prov-1", 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

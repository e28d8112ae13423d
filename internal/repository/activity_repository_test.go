package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/activity-tracker/internal/model"
)

var activityCols = []string{"id", "usuario_id", "proyecto_id", "fecha", "hora_inicio", "hora_fin",
	"descripcion", "tipo", "estado", "created_at", "updated_at", "nombre"}

func newMock(t *testing.T) (*ActivityRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewActivityRepo(db), mock
}

func TestActivityFindCanonicalizesRows(t *testing.T) {
	repo, mock := newMock(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows(activityCols).
		AddRow(4, 1, 2, day, "09:00:00", "10:30:00", "revisión", "Reunión", "borrador", now, now, "Portal").
		AddRow(6, 1, nil, day, "11:00", "12:00", "código", "Desarrollo", "enviada", now, now, "")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.usuario_id = ? AND a.fecha = ? AND a.estado IN (?,?) AND a.id <> ? ORDER BY a.fecha ASC")).
		WithArgs(1, "2025-03-10", "borrador", "draft", 5).
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), model.ActivityFilter{
		UserID:    1,
		Date:      &day,
		Statuses:  []model.ActivityStatus{model.StatusDraft},
		ExcludeID: 5,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.StatusDraft, got[0].Status)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "10:30", got[0].EndTime)
	require.NotNil(t, got[0].ProjectID)
	assert.Equal(t, uint64(2), *got[0].ProjectID)
	assert.Equal(t, "Portal", got[0].ProjectName)

	assert.Equal(t, model.StatusSubmitted, got[1].Status)
	assert.Nil(t, got[1].ProjectID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityFindWithPaging(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY a.fecha ASC, a.hora_inicio ASC, a.id ASC LIMIT ? OFFSET ?")).
		WithArgs(20, 40).
		WillReturnRows(sqlmock.NewRows(activityCols))

	got, err := repo.Find(context.Background(), model.ActivityFilter{Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityCount(t *testing.T) {
	repo, mock := newMock(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM actividades a WHERE a.usuario_id = ? AND a.fecha >= ? AND a.fecha <= ?")).
		WithArgs(3, "2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))

	n, err := repo.Count(context.Background(), model.ActivityFilter{UserID: 3, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityUpdateSubmittedIsConflict(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE actividades")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM actividades WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	err := repo.Update(context.Background(), &model.Activity{
		ID: 9, UserID: 1, Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00", EndTime: "10:00", Description: "x",
	})
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityDeleteMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM actividades")).
		WithArgs(9, 1, "borrador", "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM actividades WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	err := repo.Delete(context.Background(), 9, 1)
	assert.ErrorIs(t, err, ErrActivityNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivitySubmitOnlyOwnDrafts(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM actividades WHERE usuario_id = ? AND id IN (?,?,?)")).
		WithArgs(7, 1, 2, 3, "borrador", "draft").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE actividades SET estado = ?")).
		WithArgs("submitted", 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	changed, err := repo.Submit(context.Background(), 7, []uint64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivitySubmitNothingToDo(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM actividades")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	changed, err := repo.Submit(context.Background(), 7, []uint64{4})
	require.NoError(t, err)
	assert.Empty(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

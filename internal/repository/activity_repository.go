// Package repository contains data access logic separated from HTTP handlers.
// This file holds the query layer for activities: inserts, guarded updates
// and the filtered listing used by the overlap check, the statistics and
// the report builder.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// ActivityRepo encapsulates all database queries related to activities.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo constructs an ActivityRepo with the provided DB handle.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

const activitySelect = `SELECT a.id, a.usuario_id, a.proyecto_id, a.fecha, a.hora_inicio, a.hora_fin,
       a.descripcion, a.tipo, a.estado, a.created_at, a.updated_at, COALESCE(p.nombre, '')
  FROM actividades a
  LEFT JOIN proyectos p ON p.id = a.proyecto_id`

func scanActivity(row interface{ Scan(...any) error }) (*model.Activity, error) {
	var (
		a      model.Activity
		projID sql.NullInt64
		status string
	)
	if err := row.Scan(&a.ID, &a.UserID, &projID, &a.Date, &a.StartTime, &a.EndTime,
		&a.Description, &a.Type, &status, &a.CreatedAt, &a.UpdatedAt, &a.ProjectName); err != nil {
		return nil, err
	}
	a.ProjectID = uintPtr(projID)
	if st, ok := model.ParseStatus(status); ok {
		a.Status = st
	} else {
		a.Status = model.ActivityStatus(status)
	}
	// TIME/CHAR columns may come back as HH:MM:SS.
	a.StartTime = trimSeconds(a.StartTime)
	a.EndTime = trimSeconds(a.EndTime)
	return &a, nil
}

func trimSeconds(t string) string {
	if len(t) == 8 && strings.Count(t, ":") == 2 {
		return t[:5]
	}
	return t
}

// Create inserts a new activity in draft state and populates ID and the
// DB-default timestamps.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	const q = `INSERT INTO actividades (usuario_id, proyecto_id, fecha, hora_inicio, hora_fin, descripcion, tipo, estado)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if a.Status == "" {
		a.Status = model.StatusDraft
	}
	res, err := r.db.ExecContext(ctx, q, a.UserID, nullableUint(a.ProjectID), a.Date.Format(model.DateLayout),
		a.StartTime, a.EndTime, a.Description, a.Type, string(a.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*a = *fresh
	return nil
}

// GetByID fetches an activity regardless of owner.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	a, err := scanActivity(r.db.QueryRowContext(ctx, activitySelect+" WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// Update rewrites the editable fields of a draft activity owned by
// a.UserID.  Submitted rows are never touched; ErrConflict is returned when
// the row exists but is no longer a draft.
func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) error {
	drafts := model.StatusSpellings(model.StatusDraft)
	q := `UPDATE actividades
	         SET proyecto_id = ?, fecha = ?, hora_inicio = ?, hora_fin = ?, descripcion = ?, tipo = ?,
	             updated_at = CURRENT_TIMESTAMP
	       WHERE id = ? AND usuario_id = ? AND estado IN (` + placeholders(len(drafts)) + `)`
	args := []any{nullableUint(a.ProjectID), a.Date.Format(model.DateLayout), a.StartTime, a.EndTime,
		a.Description, a.Type, a.ID, a.UserID}
	for _, s := range drafts {
		args = append(args, s)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrConflict(ctx, a.ID)
	}
	return nil
}

// Delete removes a draft activity owned by userID.
func (r *ActivityRepo) Delete(ctx context.Context, id, userID uint64) error {
	drafts := model.StatusSpellings(model.StatusDraft)
	q := `DELETE FROM actividades WHERE id = ? AND usuario_id = ? AND estado IN (` + placeholders(len(drafts)) + `)`
	args := append([]any{id, userID}, stringArgs(drafts)...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict tells apart a missing row from a row in the wrong state
// after a guarded write affected nothing.
func (r *ActivityRepo) missOrConflict(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM actividades WHERE id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return ErrConflict
}

// activityWhere turns a filter into a WHERE clause and its arguments.
func activityWhere(f model.ActivityFilter) (string, []any) {
	where := []string{}
	args := []any{}
	if f.UserID != 0 {
		where = append(where, "a.usuario_id = ?")
		args = append(args, f.UserID)
	}
	if f.ProjectID != nil {
		where = append(where, "a.proyecto_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.Date != nil {
		where = append(where, "a.fecha = ?")
		args = append(args, f.Date.Format(model.DateLayout))
	}
	if f.From != nil {
		where = append(where, "a.fecha >= ?")
		args = append(args, f.From.Format(model.DateLayout))
	}
	if f.To != nil {
		where = append(where, "a.fecha <= ?")
		args = append(args, f.To.Format(model.DateLayout))
	}
	if len(f.Statuses) > 0 {
		var spellings []string
		for _, st := range f.Statuses {
			spellings = append(spellings, model.StatusSpellings(st)...)
		}
		where = append(where, "a.estado IN ("+placeholders(len(spellings))+")")
		args = append(args, stringArgs(spellings)...)
	}
	if f.ExcludeID != 0 {
		where = append(where, "a.id <> ?")
		args = append(args, f.ExcludeID)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// Find lists activities matching the filter ordered by day, start time and
// id.  Limit <= 0 means no limit.
func (r *ActivityRepo) Find(ctx context.Context, f model.ActivityFilter) ([]model.Activity, error) {
	cond, args := activityWhere(f)
	q := activitySelect + " WHERE " + cond + " ORDER BY a.fecha ASC, a.hora_inicio ASC, a.id ASC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of activities matching the filter, ignoring
// Limit and Offset.
func (r *ActivityRepo) Count(ctx context.Context, f model.ActivityFilter) (int64, error) {
	cond, args := activityWhere(f)
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM actividades a WHERE "+cond, args...).Scan(&total)
	return total, err
}

// Submit moves the given draft activities of userID to submitted and returns
// the ids that actually changed.  Ids that are unknown, foreign or already
// submitted are skipped.
func (r *ActivityRepo) Submit(ctx context.Context, userID uint64, ids []uint64) (changed []uint64, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	drafts := model.StatusSpellings(model.StatusDraft)
	sel := `SELECT id FROM actividades WHERE usuario_id = ? AND id IN (` + placeholders(len(ids)) + `)
	          AND estado IN (` + placeholders(len(drafts)) + `) FOR UPDATE`
	args := append(append([]any{userID}, uintArgs(ids)...), stringArgs(drafts)...)
	rows, err := tx.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id uint64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		changed = append(changed, id)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(changed) == 0 {
		return nil, nil
	}

	upd := `UPDATE actividades SET estado = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (` + placeholders(len(changed)) + `)`
	if _, err = tx.ExecContext(ctx, upd, append([]any{string(model.StatusSubmitted)}, uintArgs(changed)...)...); err != nil {
		return nil, err
	}
	return changed, nil
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

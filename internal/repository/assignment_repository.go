package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// AssignmentRepo stores the user-to-project links in asignaciones_tareas.
type AssignmentRepo struct {
	db *sql.DB
}

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

const assignmentSelect = `SELECT t.id, t.usuario_id, t.proyecto_id, t.supervisor_id, t.estado, t.created_at, t.updated_at, COALESCE(p.nombre, '')
  FROM asignaciones_tareas t
  LEFT JOIN proyectos p ON p.id = t.proyecto_id`

func scanAssignment(row interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	if err := row.Scan(&a.ID, &a.UserID, &a.ProjectID, &a.SupervisorID, &a.State, &a.CreatedAt, &a.UpdatedAt, &a.ProjectName); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a pending assignment.  A second link between the same user
// and project yields ErrAssignmentExists.
func (r *AssignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	if a.State == "" {
		a.State = model.AssignmentPending
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO asignaciones_tareas (usuario_id, proyecto_id, supervisor_id, estado) VALUES (?, ?, ?, ?)",
		a.UserID, a.ProjectID, a.SupervisorID, a.State)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAssignmentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches one assignment.
func (r *AssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.Assignment, error) {
	a, err := scanAssignment(r.db.QueryRowContext(ctx, assignmentSelect+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	return a, err
}

// Accept marks the assignment of userID as accepted.  Accepting twice is a
// no-op.
func (r *AssignmentRepo) Accept(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE asignaciones_tareas SET estado = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND usuario_id = ?",
		model.AssignmentAccepted, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// ListByUser returns the assignments of a user, newest first.
func (r *AssignmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, assignmentSelect+" WHERE t.usuario_id = ? ORDER BY t.created_at DESC, t.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CountByUser returns how many projects a user is assigned to.
func (r *AssignmentRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM asignaciones_tareas WHERE usuario_id = ?", userID).Scan(&n)
	return n, err
}

// Exists reports whether userID is linked to projectID.
func (r *AssignmentRepo) Exists(ctx context.Context, userID, projectID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM asignaciones_tareas WHERE usuario_id = ? AND proyecto_id = ?", userID, projectID).Scan(&n)
	return n > 0, err
}

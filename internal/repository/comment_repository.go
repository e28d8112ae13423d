package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// CommentRepo persists activity comments.  Deletion is soft so replies keep
// a valid parent.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `SELECT c.id, c.actividad_id, c.usuario_id, c.comentario_padre_id, c.contenido, c.eliminado,
       c.created_at, c.updated_at, TRIM(CONCAT(COALESCE(u.nombre, ''), ' ', COALESCE(u.apellido, '')))
  FROM comentarios c
  LEFT JOIN usuarios u ON u.id = c.usuario_id`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var (
		c      model.Comment
		parent sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.ActivityID, &c.UserID, &parent, &c.Content, &c.Deleted, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName); err != nil {
		return nil, err
	}
	c.ParentID = uintPtr(parent)
	return &c, nil
}

// Create inserts a comment and reloads it so timestamps and author name are
// populated.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comentarios (actividad_id, usuario_id, comentario_padre_id, contenido) VALUES (?, ?, ?, ?)",
		c.ActivityID, c.UserID, nullableUint(c.ParentID), c.Content)
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
	*c = *fresh
	return nil
}

// GetByID fetches a comment including soft-deleted ones.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	return c, err
}

// ListByActivity returns all comments of an activity in creation order.
func (r *CommentRepo) ListByActivity(ctx context.Context, activityID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+" WHERE c.actividad_id = ? ORDER BY c.created_at ASC, c.id ASC", activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComments(rows)
}

// ListByActivities returns the non-deleted comments of several activities
// grouped by activity id.
func (r *CommentRepo) ListByActivities(ctx context.Context, activityIDs []uint64) (map[uint64][]model.Comment, error) {
	out := make(map[uint64][]model.Comment)
	if len(activityIDs) == 0 {
		return out, nil
	}
	q := commentSelect + " WHERE c.eliminado = 0 AND c.actividad_id IN (" + placeholders(len(activityIDs)) + ") ORDER BY c.created_at ASC, c.id ASC"
	rows, err := r.db.QueryContext(ctx, q, uintArgs(activityIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := collectComments(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.ActivityID] = append(out[c.ActivityID], c)
	}
	return out, nil
}

func collectComments(rows *sql.Rows) ([]model.Comment, error) {
	out := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// SoftDelete flags a comment as deleted.
func (r *CommentRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE comentarios SET eliminado = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

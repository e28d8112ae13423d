package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// DocumentRepo stores attachment metadata.  File bytes are handled by the
// storage package.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentColumns = "id, actividad_id, usuario_id, nombre_archivo, tipo_contenido, tamano_bytes, ruta, created_at"

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(&d.ID, &d.ActivityID, &d.UserID, &d.FileName, &d.ContentType, &d.SizeBytes, &d.StoragePath, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts document metadata and sets ID.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO documentos (actividad_id, usuario_id, nombre_archivo, tipo_contenido, tamano_bytes, ruta) VALUES (?, ?, ?, ?, ?, ?)",
		d.ActivityID, d.UserID, d.FileName, d.ContentType, d.SizeBytes, d.StoragePath)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches document metadata.
func (r *DocumentRepo) GetByID(ctx context.Context, id uint64) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documentos WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return d, err
}

// ListByActivity lists the documents attached to an activity.
func (r *DocumentRepo) ListByActivity(ctx context.Context, activityID uint64) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documentos WHERE actividad_id = ? ORDER BY id ASC", activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Delete removes document metadata.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documentos WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

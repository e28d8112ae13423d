package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/activity-tracker/internal/model"
)

// ProjectRepo provides CRUD operations for projects.  Projects are never
// removed; SetActive toggles the soft-delete flag.
type ProjectRepo struct {
    db *sql.DB
}

// NewProjectRepo constructs a new ProjectRepo using the provided DB handle.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
    return &ProjectRepo{db: db}
}

const projectColumns = `id, supervisor_id, nombre, COALESCE(descripcion, ''), activo, fecha_inicio, fecha_fin, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
    var (
        p          model.Project
        start, end sql.NullTime
    )
    if err := row.Scan(&p.ID, &p.SupervisorID, &p.Name, &p.Description, &p.Active, &start, &end, &p.CreatedAt, &p.UpdatedAt); err != nil {
        return nil, err
    }
    p.StartDate = timePtr(start)
    p.EndDate = timePtr(end)
    return &p, nil
}

// Create inserts a new active project and sets its ID.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
    const q = `INSERT INTO proyectos (supervisor_id, nombre, descripcion, activo, fecha_inicio, fecha_fin)
               VALUES (?, ?, ?, 1, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, p.SupervisorID, p.Name, p.Description, nullableDate(p.StartDate), nullableDate(p.EndDate))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    p.Active = true
    return nil
}

// GetByID fetches a project by primary key.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (*model.Project, error) {
    p, err := scanProject(r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM proyectos WHERE id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrProjectNotFound
    }
    return p, err
}

// Update modifies name, description and dates of a project owned by
// p.SupervisorID.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
    const q = `UPDATE proyectos SET nombre = ?, descripcion = ?, fecha_inicio = ?, fecha_fin = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND supervisor_id = ?`
    res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, nullableDate(p.StartDate), nullableDate(p.EndDate), p.ID, p.SupervisorID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return r.missOrForbidden(ctx, p.ID, p.SupervisorID)
    }
    return nil
}

// SetActive toggles the soft-delete flag of a project owned by supervisorID.
func (r *ProjectRepo) SetActive(ctx context.Context, id, supervisorID uint64, active bool) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE proyectos SET activo = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND supervisor_id = ?",
        active, id, supervisorID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return r.missOrForbidden(ctx, id, supervisorID)
    }
    return nil
}

// missOrForbidden is used after an owner-scoped write changed nothing.  The
// row may be missing, foreign, or already in the requested state; the last
// case is not an error.
func (r *ProjectRepo) missOrForbidden(ctx context.Context, id, supervisorID uint64) error {
    var owner uint64
    err := r.db.QueryRowContext(ctx, "SELECT supervisor_id FROM proyectos WHERE id = ?", id).Scan(&owner)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrProjectNotFound
    }
    if err != nil {
        return err
    }
    if owner != supervisorID {
        return ErrForbidden
    }
    return nil
}

// ListBySupervisor returns projects owned by a supervisor ordered by name.
func (r *ProjectRepo) ListBySupervisor(ctx context.Context, supervisorID uint64, includeInactive bool) ([]model.Project, error) {
    q := "SELECT " + projectColumns + " FROM proyectos WHERE supervisor_id = ?"
    if !includeInactive {
        q += " AND activo = 1"
    }
    q += " ORDER BY nombre ASC, id ASC"
    return r.list(ctx, q, supervisorID)
}

// ListForUser returns the projects a user is assigned to.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uint64, includeInactive bool) ([]model.Project, error) {
    q := `SELECT p.id, p.supervisor_id, p.nombre, COALESCE(p.descripcion, ''), p.activo, p.fecha_inicio, p.fecha_fin, p.created_at, p.updated_at
            FROM proyectos p
            JOIN asignaciones_tareas t ON t.proyecto_id = p.id
           WHERE t.usuario_id = ?`
    if !includeInactive {
        q += " AND p.activo = 1"
    }
    q += " ORDER BY p.nombre ASC, p.id ASC"
    return r.list(ctx, q, userID)
}

func (r *ProjectRepo) list(ctx context.Context, q string, args ...any) ([]model.Project, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Project{}
    for rows.Next() {
        p, err := scanProject(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *p)
    }
    return out, rows.Err()
}

// NamesByIDs resolves project names for the given ids.  Unknown ids are
// absent from the result.
func (r *ProjectRepo) NamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
    out := make(map[uint64]string, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    rows, err := r.db.QueryContext(ctx, "SELECT id, nombre FROM proyectos WHERE id IN ("+placeholders(len(ids))+")", uintArgs(ids)...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var (
            id   uint64
            name string
        )
        if err := rows.Scan(&id, &name); err != nil {
            return nil, err
        }
        out[id] = name
    }
    return out, rows.Err()
}

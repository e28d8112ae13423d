package model

import "time"

// Comment belongs to an activity and its author.  ParentID allows one level
// of replies; Deleted hides the content without removing the row so that
// replies keep their parent.
type Comment struct {
    ID         uint64    // comentarios.id
    ActivityID uint64    // comentarios.actividad_id
    UserID     uint64    // comentarios.usuario_id
    ParentID   *uint64   // comentarios.comentario_padre_id (nullable)
    Content    string    // comentarios.contenido
    Deleted    bool      // comentarios.eliminado
    CreatedAt  time.Time // comentarios.created_at
    UpdatedAt  time.Time // comentarios.updated_at

    AuthorName string
}

package model

import "time"

// Assignment states.
const (
    AssignmentPending  = "pendiente"
    AssignmentAccepted = "aceptada"
)

// Assignment links a user to a project (`asignaciones_tareas`).  The
// supervisor that created it is recorded so the link survives a later
// change of project owner.
type Assignment struct {
    ID           uint64    // asignaciones_tareas.id
    UserID       uint64    // asignaciones_tareas.usuario_id
    ProjectID    uint64    // asignaciones_tareas.proyecto_id
    SupervisorID uint64    // asignaciones_tareas.supervisor_id
    State        string    // asignaciones_tareas.estado
    CreatedAt    time.Time // asignaciones_tareas.created_at
    UpdatedAt    time.Time // asignaciones_tareas.updated_at

    ProjectName string
}

package model

import "time"

// Project groups activities under a supervisor.  Projects are never hard
// deleted; Active=false is the soft-delete state and blocks new assignments
// and new activities.
//
// Fields:
//  ID           – primary key.
//  SupervisorID – users.id of the owning supervisor.
//  Name         – display name.
//  Description  – optional free text.
//  Active       – soft-delete flag.
//  StartDate    – optional planned start.
//  EndDate      – optional planned end.
type Project struct {
    ID           uint64     // proyectos.id
    SupervisorID uint64     // proyectos.supervisor_id
    Name         string     // proyectos.nombre
    Description  string     // proyectos.descripcion
    Active       bool       // proyectos.activo
    StartDate    *time.Time // proyectos.fecha_inicio (nullable)
    EndDate      *time.Time // proyectos.fecha_fin (nullable)
    CreatedAt    time.Time  // proyectos.created_at
    UpdatedAt    time.Time  // proyectos.updated_at
}

package handler

import (
    "time"

    "github.com/iliyamo/activity-tracker/internal/model"
    "github.com/iliyamo/activity-tracker/internal/service"
)

// JSON shapes returned to clients.  Field names follow the Spanish API.

type activityView struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"usuarioId"`
    ProjectID   *uint64   `json:"proyectoId"`
    ProjectName string    `json:"proyecto,omitempty"`
    Date        string    `json:"fecha"`
    StartTime   string    `json:"horaInicio"`
    EndTime     string    `json:"horaFin"`
    Description string    `json:"descripcion"`
    Type        string    `json:"tipo"`
    Status      string    `json:"estado"`
    Hours       float64   `json:"horas"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

func toActivityView(a model.Activity) activityView {
    return activityView{
        ID:          a.ID,
        UserID:      a.UserID,
        ProjectID:   a.ProjectID,
        ProjectName: a.ProjectName,
        Date:        a.DateKey(),
        StartTime:   a.StartTime,
        EndTime:     a.EndTime,
        Description: a.Description,
        Type:        a.Type,
        Status:      string(a.Status),
        Hours:       a.Hours(),
        CreatedAt:   a.CreatedAt,
        UpdatedAt:   a.UpdatedAt,
    }
}

type projectView struct {
    ID           uint64  `json:"id"`
    SupervisorID uint64  `json:"supervisorId"`
    Name         string  `json:"nombre"`
    Description  string  `json:"descripcion"`
    Active       bool    `json:"activo"`
    StartDate    *string `json:"fechaInicio"`
    EndDate      *string `json:"fechaFin"`
}

func dateString(t *time.Time) *string {
    if t == nil {
        return nil
    }
    s := t.Format(model.DateLayout)
    return &s
}

func toProjectView(p model.Project) projectView {
    return projectView{
        ID:           p.ID,
        SupervisorID: p.SupervisorID,
        Name:         p.Name,
        Description:  p.Description,
        Active:       p.Active,
        StartDate:    dateString(p.StartDate),
        EndDate:      dateString(p.EndDate),
    }
}

type userView struct {
    ID           uint64  `json:"id"`
    Email        string  `json:"email"`
    FirstName    string  `json:"nombre"`
    LastName     string  `json:"apellido"`
    Role         string  `json:"rol"`
    SupervisorID *uint64 `json:"supervisorId"`
}

func toUserView(u model.User) userView {
    return userView{
        ID:           u.ID,
        Email:        u.Email,
        FirstName:    u.FirstName,
        LastName:     u.LastName,
        Role:         u.Role,
        SupervisorID: u.SupervisorID,
    }
}

type assignmentView struct {
    ID           uint64    `json:"id"`
    UserID       uint64    `json:"usuarioId"`
    ProjectID    uint64    `json:"proyectoId"`
    ProjectName  string    `json:"proyecto,omitempty"`
    SupervisorID uint64    `json:"supervisorId"`
    State        string    `json:"estado"`
    CreatedAt    time.Time `json:"createdAt"`
}

func toAssignmentView(a model.Assignment) assignmentView {
    return assignmentView{
        ID:           a.ID,
        UserID:       a.UserID,
        ProjectID:    a.ProjectID,
        ProjectName:  a.ProjectName,
        SupervisorID: a.SupervisorID,
        State:        a.State,
        CreatedAt:    a.CreatedAt,
    }
}

type commentView struct {
    ID         uint64        `json:"id"`
    ActivityID uint64        `json:"actividadId"`
    UserID     uint64        `json:"usuarioId"`
    AuthorName string        `json:"autor"`
    ParentID   *uint64       `json:"comentarioPadreId"`
    Content    string        `json:"contenido"`
    Deleted    bool          `json:"eliminado"`
    CreatedAt  time.Time     `json:"createdAt"`
    Replies    []commentView `json:"respuestas,omitempty"`
}

func toCommentView(c model.Comment) commentView {
    return commentView{
        ID:         c.ID,
        ActivityID: c.ActivityID,
        UserID:     c.UserID,
        AuthorName: c.AuthorName,
        ParentID:   c.ParentID,
        Content:    c.Content,
        Deleted:    c.Deleted,
        CreatedAt:  c.CreatedAt,
    }
}

func toThreadView(t service.CommentThread) commentView {
    v := toCommentView(t.Comment)
    v.Replies = make([]commentView, 0, len(t.Replies))
    for _, r := range t.Replies {
        v.Replies = append(v.Replies, toCommentView(r))
    }
    return v
}

type documentView struct {
    ID          uint64    `json:"id"`
    ActivityID  uint64    `json:"actividadId"`
    UserID      uint64    `json:"usuarioId"`
    FileName    string    `json:"nombreArchivo"`
    ContentType string    `json:"tipoContenido"`
    SizeBytes   int64     `json:"tamanoBytes"`
    CreatedAt   time.Time `json:"createdAt"`
}

func toDocumentView(d model.Document) documentView {
    return documentView{
        ID:          d.ID,
        ActivityID:  d.ActivityID,
        UserID:      d.UserID,
        FileName:    d.FileName,
        ContentType: d.ContentType,
        SizeBytes:   d.SizeBytes,
        CreatedAt:   d.CreatedAt,
    }
}

// mapSlice converts a slice with f, returning an empty (non-nil) slice for
// no input so JSON renders [] instead of null.
func mapSlice[T, V any](in []T, f func(T) V) []V {
    out := make([]V, 0, len(in))
    for _, v := range in {
        out = append(out, f(v))
    }
    return out
}

package model

import (
    "sort"
    "strings"
    "time"
)

// ActivityStatus is the lifecycle state of an activity.  Only two values are
// stored; legacy spellings are accepted on input through ParseStatus.
type ActivityStatus string

const (
    StatusDraft     ActivityStatus = "draft"
    StatusSubmitted ActivityStatus = "submitted"
)

// statusAliases maps every accepted spelling onto the canonical status.
// "enviada"/"enviado" and the old "completada" flag all mean submitted.
var statusAliases = map[string]ActivityStatus{
    "draft":      StatusDraft,
    "borrador":   StatusDraft,
    "pendiente":  StatusDraft,
    "submitted":  StatusSubmitted,
    "enviada":    StatusSubmitted,
    "enviado":    StatusSubmitted,
    "completada": StatusSubmitted,
}

// ParseStatus canonicalizes a status string.  The second result is false when
// the value is not a known spelling.
func ParseStatus(s string) (ActivityStatus, bool) {
    st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
    return st, ok
}

// StatusSpellings lists every stored spelling of a canonical status.  Rows
// written before the status was normalized may still carry the old values,
// so queries match on all of them.
func StatusSpellings(st ActivityStatus) []string {
    var out []string
    for k, v := range statusAliases {
        if v == st && k != "pendiente" && k != "completada" {
            out = append(out, k)
        }
    }
    sort.Strings(out)
    return out
}

// IsSubmitted reports whether the status is submitted under any spelling.
func (s ActivityStatus) IsSubmitted() bool {
    st, ok := ParseStatus(string(s))
    return ok && st == StatusSubmitted
}

// Activity is a single logged work item stored in the `actividades` table.
//
// Fields:
//  ID          – primary key.
//  UserID      – owner of the activity.
//  ProjectID   – optional project the work was done for.
//  Date        – calendar day (UTC midnight).
//  StartTime   – "HH:MM", 24-hour.
//  EndTime     – "HH:MM", 24-hour, strictly after StartTime.
//  Description – free text.
//  Type        – activity-type name (e.g. "Desarrollo", "Reunión").
//  Status      – draft or submitted.
type Activity struct {
    ID          uint64         // actividades.id
    UserID      uint64         // actividades.usuario_id
    ProjectID   *uint64        // actividades.proyecto_id (nullable)
    Date        time.Time      // actividades.fecha
    StartTime   string         // actividades.hora_inicio
    EndTime     string         // actividades.hora_fin
    Description string         // actividades.descripcion
    Type        string         // actividades.tipo
    Status      ActivityStatus // actividades.estado
    CreatedAt   time.Time      // actividades.created_at
    UpdatedAt   time.Time      // actividades.updated_at

    // ProjectName is filled by queries that join proyectos.
    ProjectName string
}

// DateKey returns the activity date as "YYYY-MM-DD".
func (a Activity) DateKey() string {
    return a.Date.Format(DateLayout)
}

// Hours is the duration between start and end in hours.  Malformed times
// count as zero.
func (a Activity) Hours() float64 {
    s, ok1 := minutesOfDay(a.StartTime)
    e, ok2 := minutesOfDay(a.EndTime)
    if !ok1 || !ok2 || e <= s {
        return 0
    }
    return float64(e-s) / 60.0
}

// ActivityFilter shapes the WHERE clause of activity queries.  Zero values
// mean "no constraint".
type ActivityFilter struct {
    UserID    uint64
    ProjectID *uint64
    From      *time.Time
    To        *time.Time
    Date      *time.Time
    Statuses  []ActivityStatus
    ExcludeID uint64
    Limit     int
    Offset    int
}

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

func minutesOfDay(hhmm string) (int, bool) {
    t, err := time.Parse("15:04", hhmm)
    if err != nil {
        return 0, false
    }
    return t.Hour()*60 + t.Minute(), true
}

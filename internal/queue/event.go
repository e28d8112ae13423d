// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both are durable and carry JSON bodies.
const (
    ActivitiesSubmittedQueue = "actividades.enviadas"
    CommentCreatedQueue      = "comentarios.creados"
)

// ActivitiesSubmittedEvent is published after a bulk submit changed at least
// one activity.  SupervisorID is zero when the owner has no supervisor.
type ActivitiesSubmittedEvent struct {
    UserID       uint64   `json:"user_id"`
    SupervisorID uint64   `json:"supervisor_id"`
    ActivityIDs  []uint64 `json:"activity_ids"`
    TotalHours   float64  `json:"total_hours"`
    SubmittedAt  string   `json:"submitted_at"`
}

// CommentCreatedEvent is published when a comment or reply is stored.
type CommentCreatedEvent struct {
    CommentID       uint64  `json:"comment_id"`
    ActivityID      uint64  `json:"activity_id"`
    ActivityOwnerID uint64  `json:"activity_owner_id"`
    AuthorID        uint64  `json:"author_id"`
    ParentID        *uint64 `json:"parent_id,omitempty"`
    CreatedAt       string  `json:"created_at"`
}

package service

import (
	"context"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// ActivityStore is the query layer for activities.
type ActivityStore interface {
	Create(ctx context.Context, a *model.Activity) error
	GetByID(ctx context.Context, id uint64) (*model.Activity, error)
	Update(ctx context.Context, a *model.Activity) error
	Delete(ctx context.Context, id, userID uint64) error
	Find(ctx context.Context, f model.ActivityFilter) ([]model.Activity, error)
	Count(ctx context.Context, f model.ActivityFilter) (int64, error)
	Submit(ctx context.Context, userID uint64, ids []uint64) ([]uint64, error)
}

// ProjectStore is the query layer for projects.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id uint64) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	SetActive(ctx context.Context, id, supervisorID uint64, active bool) error
	ListBySupervisor(ctx context.Context, supervisorID uint64, includeInactive bool) ([]model.Project, error)
	ListForUser(ctx context.Context, userID uint64, includeInactive bool) ([]model.Project, error)
	NamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

// UserStore is the query layer for users.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ListBySupervisor(ctx context.Context, supervisorID uint64) ([]model.User, error)
	UpdateSupervisor(ctx context.Context, userID uint64, supervisorID *uint64) error
}

// AssignmentStore is the query layer for project assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id uint64) (*model.Assignment, error)
	Accept(ctx context.Context, id, userID uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Assignment, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
	Exists(ctx context.Context, userID, projectID uint64) (bool, error)
}

// CommentStore is the query layer for comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id uint64) (*model.Comment, error)
	ListByActivity(ctx context.Context, activityID uint64) ([]model.Comment, error)
	ListByActivities(ctx context.Context, activityIDs []uint64) (map[uint64][]model.Comment, error)
	SoftDelete(ctx context.Context, id uint64) error
}

// DocumentStore is the query layer for document metadata.
type DocumentStore interface {
	Create(ctx context.Context, d *model.Document) error
	GetByID(ctx context.Context, id uint64) (*model.Document, error)
	ListByActivity(ctx context.Context, activityID uint64) ([]model.Document, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

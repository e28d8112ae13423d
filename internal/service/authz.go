package service

import (
	"github.com/iliyamo/activity-tracker/internal/model"
)

// Caller is the authenticated identity of a request.
type Caller struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the caller bypasses ownership checks.
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// IsSupervisor is true for supervisors and admins.
func (c Caller) IsSupervisor() bool {
	return c.Role == model.RoleSupervisor || c.Role == model.RoleAdmin
}

// ResourceKind names what is being accessed.
type ResourceKind string

const (
	KindActivity ResourceKind = "activity"
	KindDocument ResourceKind = "document"
	KindComment  ResourceKind = "comment"
	KindProject  ResourceKind = "project"
	KindUser     ResourceKind = "user"
)

// Action is the operation attempted on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionComment Action = "comment"
	ActionManage  Action = "manage"
	ActionExport  Action = "export"
)

// Resource carries the ownership facts Authorize needs.
//
// OwnerID is the owning user (activity owner, comment author, project
// supervisor, or the user itself for KindUser).  OwnerSupervisorID is the
// owner's supervisor when the owner is an employee.  Member marks a caller
// assigned to a project.
type Resource struct {
	Kind              ResourceKind
	OwnerID           uint64
	OwnerSupervisorID *uint64
	Member            bool
}

// ActivityResource describes an activity owned by owner.
func ActivityResource(a model.Activity, owner *model.User) Resource {
	r := Resource{Kind: KindActivity, OwnerID: a.UserID}
	if owner != nil {
		r.OwnerSupervisorID = owner.SupervisorID
	}
	return r
}

// UserResource describes a user profile and everything derived from it
// (statistics, reports).
func UserResource(u model.User) Resource {
	return Resource{Kind: KindUser, OwnerID: u.ID, OwnerSupervisorID: u.SupervisorID}
}

// ProjectResource describes a project; member is true when the caller is
// assigned to it.
func ProjectResource(p model.Project, member bool) Resource {
	return Resource{Kind: KindProject, OwnerID: p.SupervisorID, Member: member}
}

// Authorize is the single capability check used before any service call
// touches a resource.  Admins may do anything.  Owners have full control
// of their activities and documents while the owner's supervisor may read
// and comment.  Comment authors may delete their comments.  Project owners
// manage their projects and assigned users may read them.  A user may read
// their own profile; their supervisor may read and export it.
func Authorize(c Caller, r Resource, a Action) error {
	if c.ID == 0 {
		return ErrUnauthenticated
	}
	if c.IsAdmin() {
		return nil
	}
	supervises := r.OwnerSupervisorID != nil && *r.OwnerSupervisorID == c.ID

	switch r.Kind {
	case KindActivity, KindDocument:
		if r.OwnerID == c.ID {
			return nil
		}
		if supervises && (a == ActionRead || a == ActionComment) {
			return nil
		}
	case KindComment:
		if r.OwnerID == c.ID && (a == ActionRead || a == ActionDelete || a == ActionWrite) {
			return nil
		}
	case KindProject:
		if r.OwnerID == c.ID && c.Role == model.RoleSupervisor {
			return nil
		}
		if r.Member && a == ActionRead {
			return nil
		}
	case KindUser:
		if r.OwnerID == c.ID && a == ActionRead {
			return nil
		}
		if supervises && (a == ActionRead || a == ActionExport || a == ActionManage) {
			return nil
		}
	}
	return newError(ErrForbidden, "no tiene permisos para esta operación")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
)

// ProjectInput is the editable part of a project.
type ProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectService manages projects and the assignment of users to them.
type ProjectService struct {
	projects    ProjectStore
	assignments AssignmentStore
	users       UserStore
}

func NewProjectService(projects ProjectStore, assignments AssignmentStore, users UserStore) *ProjectService {
	return &ProjectService{projects: projects, assignments: assignments, users: users}
}

func validateProject(in *ProjectInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return Invalid("nombre", "nombre requerido")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return Invalid("fechaFin", "fechaFin no puede ser anterior a fechaInicio")
	}
	return nil
}

// Create stores a new active project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, caller Caller, in ProjectInput) (*model.Project, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if !caller.IsSupervisor() {
		return nil, newError(ErrForbidden, "solo un supervisor puede crear proyectos")
	}
	if err := validateProject(&in); err != nil {
		return nil, err
	}
	p := &model.Project{
		SupervisorID: caller.ID,
		Name:         in.Name,
		Description:  in.Description,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) load(ctx context.Context, caller Caller, id uint64, action Action) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, newError(ErrNotFound, "proyecto no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	member := false
	if action == ActionRead && p.SupervisorID != caller.ID && caller.ID != 0 {
		member, err = s.assignments.Exists(ctx, caller.ID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check assignment: %w", err)
		}
	}
	if err := Authorize(caller, ProjectResource(*p, member), action); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a project the caller owns or is assigned to.
func (s *ProjectService) Get(ctx context.Context, caller Caller, id uint64) (*model.Project, error) {
	return s.load(ctx, caller, id, ActionRead)
}

// Update changes name, description and dates.
func (s *ProjectService) Update(ctx context.Context, caller Caller, id uint64, in ProjectInput) (*model.Project, error) {
	p, err := s.load(ctx, caller, id, ActionManage)
	if err != nil {
		return nil, err
	}
	if err := validateProject(&in); err != nil {
		return nil, err
	}
	p.Name, p.Description, p.StartDate, p.EndDate = in.Name, in.Description, in.StartDate, in.EndDate
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// SetActive deactivates or reactivates a project.  Projects are never
// deleted.
func (s *ProjectService) SetActive(ctx context.Context, caller Caller, id uint64, active bool) (*model.Project, error) {
	p, err := s.load(ctx, caller, id, ActionManage)
	if err != nil {
		return nil, err
	}
	if err := s.projects.SetActive(ctx, p.ID, p.SupervisorID, active); err != nil {
		return nil, fmt.Errorf("set project active: %w", err)
	}
	p.Active = active
	return p, nil
}

// List returns the projects visible to the caller: owned ones for
// supervisors, assigned ones for everybody else.
func (s *ProjectService) List(ctx context.Context, caller Caller, includeInactive bool) ([]model.Project, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	var (
		out []model.Project
		err error
	)
	if caller.IsSupervisor() {
		out, err = s.projects.ListBySupervisor(ctx, caller.ID, includeInactive)
	} else {
		out, err = s.projects.ListForUser(ctx, caller.ID, includeInactive)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Assign links userID to a project owned by the caller.  The project must
// be active and the user must be supervised by the caller.
func (s *ProjectService) Assign(ctx context.Context, caller Caller, projectID, userID uint64) (*model.Assignment, error) {
	p, err := s.load(ctx, caller, projectID, ActionManage)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, newError(ErrInactiveProject, "el proyecto %q está inactivo y no admite asignaciones", p.Name)
	}
	if userID == 0 {
		return nil, Invalid("usuarioId", "usuarioId requerido")
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrNotFound, "usuario no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := Authorize(caller, UserResource(*u), ActionManage); err != nil {
		return nil, err
	}

	a := &model.Assignment{UserID: u.ID, ProjectID: p.ID, SupervisorID: caller.ID, State: model.AssignmentPending}
	if err := s.assignments.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrAssignmentExists) {
			return nil, newError(ErrConflict, "el usuario ya está asignado al proyecto")
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	a.ProjectName = p.Name
	return a, nil
}

// Assignments lists the caller's assignments.
func (s *ProjectService) Assignments(ctx context.Context, caller Caller) ([]model.Assignment, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	out, err := s.assignments.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// Accept marks one of the caller's assignments as accepted.
func (s *ProjectService) Accept(ctx context.Context, caller Caller, assignmentID uint64) (*model.Assignment, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if errors.Is(err, repository.ErrAssignmentNotFound) {
		return nil, newError(ErrNotFound, "asignación no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if a.UserID != caller.ID {
		return nil, newError(ErrForbidden, "la asignación pertenece a otro usuario")
	}
	if err := s.assignments.Accept(ctx, a.ID, caller.ID); err != nil {
		return nil, fmt.Errorf("accept assignment: %w", err)
	}
	a.State = model.AssignmentAccepted
	return a, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
	"github.com/iliyamo/activity-tracker/internal/utils"
)

// Registration is the input of UserService.Register.
type Registration struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         string
	SupervisorID *uint64
}

// UserService manages accounts and the supervision hierarchy.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// checkSupervisor enforces that supervisorID names a supervisor-role user.
func (s *UserService) checkSupervisor(ctx context.Context, supervisorID uint64) error {
	sup, err := s.users.GetByID(ctx, supervisorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Invalid("supervisorId", "el supervisor indicado no existe")
	}
	if err != nil {
		return fmt.Errorf("load supervisor: %w", err)
	}
	if sup.Role != model.RoleSupervisor {
		return Invalid("supervisorId", "el usuario indicado no tiene rol supervisor")
	}
	return nil
}

// Register creates an account.  Self-registration may only create
// funcionario or supervisor accounts; an empty role means funcionario.
func (s *UserService) Register(ctx context.Context, in Registration) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, Invalid("email", "email inválido")
	}
	if len([]rune(in.Password)) < utils.MinPasswordLen {
		return nil, Invalid("password", "la contraseña debe tener al menos %d caracteres", utils.MinPasswordLen)
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = model.RoleEmployee
	}
	if role != model.RoleEmployee && role != model.RoleSupervisor {
		return nil, Invalid("rol", "rol inválido: %q", in.Role)
	}
	if in.SupervisorID != nil {
		if role != model.RoleEmployee {
			return nil, Invalid("supervisorId", "solo un funcionario puede tener supervisor")
		}
		if err := s.checkSupervisor(ctx, *in.SupervisorID); err != nil {
			return nil, err
		}
	}

	u := &model.User{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		SupervisorID: in.SupervisorID,
	}
	if _, err := s.users.Create(ctx, u, in.Password, s.bcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, newError(ErrConflict, "el email ya está registrado")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks credentials.  Unknown emails, wrong passwords and
// inactive accounts are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrUnauthenticated, "credenciales inválidas")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, newError(ErrUnauthenticated, "credenciales inválidas")
	}
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrNotFound, "usuario no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// ListSupervised returns the users reporting to the caller.
func (s *UserService) ListSupervised(ctx context.Context, caller Caller) ([]model.User, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if !caller.IsSupervisor() {
		return nil, newError(ErrForbidden, "solo un supervisor puede listar supervisados")
	}
	out, err := s.users.ListBySupervisor(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list supervised: %w", err)
	}
	if out == nil {
		out = []model.User{}
	}
	return out, nil
}

// AssignSupervisor moves userID under supervisorID (nil detaches).  Admin
// only.
func (s *UserService) AssignSupervisor(ctx context.Context, caller Caller, userID uint64, supervisorID *uint64) (*model.User, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, newError(ErrForbidden, "solo un administrador puede cambiar supervisores")
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if supervisorID != nil {
		if *supervisorID == u.ID {
			return nil, Invalid("supervisorId", "un usuario no puede supervisarse a sí mismo")
		}
		if u.Role != model.RoleEmployee {
			return nil, Invalid("supervisorId", "solo un funcionario puede tener supervisor")
		}
		if err := s.checkSupervisor(ctx, *supervisorID); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateSupervisor(ctx, u.ID, supervisorID); err != nil {
		return nil, fmt.Errorf("update supervisor: %w", err)
	}
	u.SupervisorID = supervisorID
	return u, nil
}

// Package testsupport provides in-memory stand-ins for the query layer so
// services and handlers can be tested without MySQL.  The stores mirror the
// repository semantics, including the sentinel errors they return.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
	"github.com/iliyamo/activity-tracker/internal/utils"
)

// Store holds every table in memory.  The per-table views returned by the
// accessor methods share one lock.
type Store struct {
	mu          sync.Mutex
	nextID      uint64
	users       map[uint64]*model.User
	projects    map[uint64]*model.Project
	activities  map[uint64]*model.Activity
	assignments map[uint64]*model.Assignment
	comments    map[uint64]*model.Comment
	documents   map[uint64]*model.Document
	tokens      map[string]*model.RefreshToken

	// Err, when set, is returned by every Find call.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       map[uint64]*model.User{},
		projects:    map[uint64]*model.Project{},
		activities:  map[uint64]*model.Activity{},
		assignments: map[uint64]*model.Assignment{},
		comments:    map[uint64]*model.Comment{},
		documents:   map[uint64]*model.Document{},
		tokens:      map[string]*model.RefreshToken{},
	}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *Users             { return &Users{s} }
func (s *Store) Projects() *Projects       { return &Projects{s} }
func (s *Store) Activities() *Activities   { return &Activities{s} }
func (s *Store) Assignments() *Assignments { return &Assignments{s} }
func (s *Store) Comments() *Comments       { return &Comments{s} }
func (s *Store) Documents() *Documents     { return &Documents{s} }
func (s *Store) Tokens() *Tokens           { return &Tokens{s} }

// ---- seeding helpers ----

// AddUser inserts u as-is (password hash included) and returns its id.
func (s *Store) AddUser(u model.User) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	if u.Role == "" {
		u.Role = model.RoleEmployee
	}
	u.IsActive = true
	s.users[u.ID] = &u
	return u.ID
}

// AddProject inserts p as-is and returns its id.
func (s *Store) AddProject(p model.Project) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.projects[p.ID] = &p
	return p.ID
}

// AddActivity inserts a in any status and returns its id.
func (s *Store) AddActivity(a model.Activity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.Status == "" {
		a.Status = model.StatusDraft
	}
	s.activities[a.ID] = &a
	return a.ID
}

// AddComment inserts c and returns its id.
func (s *Store) AddComment(c model.Comment) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt = time.Now()
	s.comments[c.ID] = &c
	return c.ID
}

// Activity returns a copy of an activity, or nil.
func (s *Store) Activity(id uint64) *model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.activities[id]; ok {
		cp := *a
		return &cp
	}
	return nil
}

// ---- users ----

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	u.ID = r.s.id()
	u.PasswordHash = hash
	u.IsActive = true
	u.CreatedAt = time.Now()
	cp := *u
	r.s.users[u.ID] = &cp
	return u.ID, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Users) ListBySupervisor(_ context.Context, supervisorID uint64) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.User{}
	for _, u := range r.s.users {
		if u.SupervisorID != nil && *u.SupervisorID == supervisorID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Users) UpdateSupervisor(_ context.Context, userID uint64, supervisorID *uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.SupervisorID = supervisorID
	return nil
}

// ---- projects ----

type Projects struct{ s *Store }

func (r *Projects) Create(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.Active = true
	cp := *p
	r.s.projects[p.ID] = &cp
	return nil
}

func (r *Projects) GetByID(_ context.Context, id uint64) (*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Projects) Update(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.projects[p.ID]
	if !ok {
		return repository.ErrProjectNotFound
	}
	if cur.SupervisorID != p.SupervisorID {
		return repository.ErrForbidden
	}
	cur.Name, cur.Description, cur.StartDate, cur.EndDate = p.Name, p.Description, p.StartDate, p.EndDate
	return nil
}

func (r *Projects) SetActive(_ context.Context, id, supervisorID uint64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.projects[id]
	if !ok {
		return repository.ErrProjectNotFound
	}
	if cur.SupervisorID != supervisorID {
		return repository.ErrForbidden
	}
	cur.Active = active
	return nil
}

func (r *Projects) ListBySupervisor(_ context.Context, supervisorID uint64, includeInactive bool) ([]model.Project, error) {
	return r.list(func(p *model.Project) bool {
		return p.SupervisorID == supervisorID && (includeInactive || p.Active)
	}), nil
}

func (r *Projects) ListForUser(_ context.Context, userID uint64, includeInactive bool) ([]model.Project, error) {
	r.s.mu.Lock()
	assigned := map[uint64]bool{}
	for _, a := range r.s.assignments {
		if a.UserID == userID {
			assigned[a.ProjectID] = true
		}
	}
	r.s.mu.Unlock()
	return r.list(func(p *model.Project) bool {
		return assigned[p.ID] && (includeInactive || p.Active)
	}), nil
}

func (r *Projects) list(keep func(*model.Project) bool) []model.Project {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Project{}
	for _, p := range r.s.projects {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Projects) NamesByIDs(_ context.Context, ids []uint64) (map[uint64]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[uint64]string{}
	for _, id := range ids {
		if p, ok := r.s.projects[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

// ---- activities ----

type Activities struct{ s *Store }

func (r *Activities) withProjectName(a model.Activity) model.Activity {
	if a.ProjectID != nil {
		if p, ok := r.s.projects[*a.ProjectID]; ok {
			a.ProjectName = p.Name
		}
	}
	if st, ok := model.ParseStatus(string(a.Status)); ok {
		a.Status = st
	}
	return a
}

func (r *Activities) Create(_ context.Context, a *model.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	if a.Status == "" {
		a.Status = model.StatusDraft
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.s.activities[a.ID] = &cp
	*a = r.withProjectName(cp)
	return nil
}

func (r *Activities) GetByID(_ context.Context, id uint64) (*model.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, repository.ErrActivityNotFound
	}
	cp := r.withProjectName(*a)
	return &cp, nil
}

func (r *Activities) Update(_ context.Context, a *model.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.activities[a.ID]
	if !ok {
		return repository.ErrActivityNotFound
	}
	if cur.UserID != a.UserID || cur.Status.IsSubmitted() {
		return repository.ErrConflict
	}
	cur.ProjectID, cur.Date, cur.StartTime, cur.EndTime = a.ProjectID, a.Date, a.StartTime, a.EndTime
	cur.Description, cur.Type = a.Description, a.Type
	cur.UpdatedAt = time.Now()
	return nil
}

func (r *Activities) Delete(_ context.Context, id, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.activities[id]
	if !ok {
		return repository.ErrActivityNotFound
	}
	if cur.UserID != userID || cur.Status.IsSubmitted() {
		return repository.ErrConflict
	}
	delete(r.s.activities, id)
	return nil
}

func (r *Activities) match(a *model.Activity, f model.ActivityFilter) bool {
	day := func(t time.Time) string { return t.Format(model.DateLayout) }
	switch {
	case f.UserID != 0 && a.UserID != f.UserID:
		return false
	case f.ProjectID != nil && (a.ProjectID == nil || *a.ProjectID != *f.ProjectID):
		return false
	case f.Date != nil && day(a.Date) != day(*f.Date):
		return false
	case f.From != nil && day(a.Date) < day(*f.From):
		return false
	case f.To != nil && day(a.Date) > day(*f.To):
		return false
	case f.ExcludeID != 0 && a.ID == f.ExcludeID:
		return false
	}
	if len(f.Statuses) > 0 {
		st, _ := model.ParseStatus(string(a.Status))
		for _, want := range f.Statuses {
			if st == want {
				return true
			}
		}
		return false
	}
	return true
}

func (r *Activities) Find(_ context.Context, f model.ActivityFilter) ([]model.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []model.Activity{}
	for _, a := range r.s.activities {
		if r.match(a, f) {
			out = append(out, r.withProjectName(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DateKey(), out[j].DateKey()
		if di != dj {
			return di < dj
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []model.Activity{}, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, nil
}

func (r *Activities) Count(ctx context.Context, f model.ActivityFilter) (int64, error) {
	f.Limit, f.Offset = 0, 0
	list, err := r.Find(ctx, f)
	return int64(len(list)), err
}

func (r *Activities) Submit(_ context.Context, userID uint64, ids []uint64) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed []uint64
	for _, id := range ids {
		a, ok := r.s.activities[id]
		if !ok || a.UserID != userID || a.Status.IsSubmitted() {
			continue
		}
		a.Status = model.StatusSubmitted
		changed = append(changed, id)
	}
	return changed, nil
}

// ---- assignments ----

type Assignments struct{ s *Store }

func (r *Assignments) Create(_ context.Context, a *model.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.assignments {
		if other.UserID == a.UserID && other.ProjectID == a.ProjectID {
			return repository.ErrAssignmentExists
		}
	}
	a.ID = r.s.id()
	if a.State == "" {
		a.State = model.AssignmentPending
	}
	cp := *a
	r.s.assignments[a.ID] = &cp
	return nil
}

func (r *Assignments) GetByID(_ context.Context, id uint64) (*model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, repository.ErrAssignmentNotFound
	}
	cp := *a
	if p, ok := r.s.projects[a.ProjectID]; ok {
		cp.ProjectName = p.Name
	}
	return &cp, nil
}

func (r *Assignments) Accept(_ context.Context, id, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrAssignmentNotFound
	}
	if a.UserID != userID {
		return repository.ErrForbidden
	}
	a.State = model.AssignmentAccepted
	return nil
}

func (r *Assignments) ListByUser(_ context.Context, userID uint64) ([]model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Assignment{}
	for _, a := range r.s.assignments {
		if a.UserID == userID {
			cp := *a
			if p, ok := r.s.projects[a.ProjectID]; ok {
				cp.ProjectName = p.Name
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Assignments) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	list, err := r.ListByUser(ctx, userID)
	return int64(len(list)), err
}

func (r *Assignments) Exists(_ context.Context, userID, projectID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.UserID == userID && a.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

// ---- comments ----

type Comments struct{ s *Store }

func (r *Comments) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if u, ok := r.s.users[c.UserID]; ok {
		c.AuthorName = u.FullName()
	}
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *Comments) GetByID(_ context.Context, id uint64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Comments) ListByActivity(_ context.Context, activityID uint64) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Comment{}
	for _, c := range r.s.comments {
		if c.ActivityID == activityID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Comments) ListByActivities(ctx context.Context, activityIDs []uint64) (map[uint64][]model.Comment, error) {
	out := map[uint64][]model.Comment{}
	for _, id := range activityIDs {
		list, _ := r.ListByActivity(ctx, id)
		for _, c := range list {
			if !c.Deleted {
				out[id] = append(out[id], c)
			}
		}
	}
	return out, nil
}

func (r *Comments) SoftDelete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return repository.ErrCommentNotFound
	}
	c.Deleted = true
	return nil
}

// ---- documents ----

type Documents struct{ s *Store }

func (r *Documents) Create(_ context.Context, d *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	d.CreatedAt = time.Now()
	cp := *d
	r.s.documents[d.ID] = &cp
	return nil
}

func (r *Documents) GetByID(_ context.Context, id uint64) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *Documents) ListByActivity(_ context.Context, activityID uint64) ([]model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Document{}
	for _, d := range r.s.documents {
		if d.ActivityID == activityID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Documents) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(r.s.documents, id)
	return nil
}

// ---- refresh tokens ----

type Tokens struct{ s *Store }

func (r *Tokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[tokenHash] = &model.RefreshToken{ID: r.s.id(), UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	return nil
}

func (r *Tokens) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || now.After(t.ExpiresAt) {
		return 0, repository.ErrInvalidRefresh
	}
	return t.UserID, nil
}

func (r *Tokens) Rotate(_ context.Context, userID uint64, oldHash, newHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[oldHash]
	if !ok || t.UserID != userID || t.RevokedAt != nil {
		return repository.ErrInvalidRefresh
	}
	now := time.Now()
	t.RevokedAt = &now
	r.s.tokens[newHash] = &model.RefreshToken{ID: r.s.id(), UserID: userID, TokenHash: newHash, ExpiresAt: exp}
	return nil
}

func (r *Tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *Tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/activity-tracker/internal/logger"
	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/queue"
	"github.com/iliyamo/activity-tracker/internal/repository"
)

// Paging bounds for activity listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ActivityInput is the editable part of an activity.
type ActivityInput struct {
	ProjectID   *uint64
	Date        time.Time
	StartTime   string
	EndTime     string
	Description string
	Type        string
}

// ActivityQuery filters an activity listing.  UserID zero means the caller.
type ActivityQuery struct {
	UserID    uint64
	ProjectID *uint64
	From      *time.Time
	To        *time.Time
	Status    *model.ActivityStatus
	Page      int
	PageSize  int
}

// ActivityPage is one page of a listing.
type ActivityPage struct {
	Items    []model.Activity
	Total    int64
	Page     int
	PageSize int
}

// ActivityService implements the activity lifecycle: draft CRUD guarded by
// the overlap check, then bulk submission.
type ActivityService struct {
	activities ActivityStore
	projects   ProjectStore
	users      UserStore
	checker    *ScheduleChecker
	events     EventPublisher
	log        *logger.Logger
}

func NewActivityService(activities ActivityStore, projects ProjectStore, users UserStore, events EventPublisher, log *logger.Logger) *ActivityService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ActivityService{
		activities: activities,
		projects:   projects,
		users:      users,
		checker:    NewScheduleChecker(activities),
		events:     events,
		log:        log,
	}
}

// Checker exposes the overlap checker used by the service.
func (s *ActivityService) Checker() *ScheduleChecker { return s.checker }

func (s *ActivityService) validate(ctx context.Context, in *ActivityInput) error {
	if in.Date.IsZero() {
		return Invalid("fecha", "fecha requerida")
	}
	in.Date = truncateDay(in.Date)
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return Invalid("descripcion", "descripción requerida")
	}
	in.Type = strings.TrimSpace(in.Type)
	start, end, err := NormalizeRange(in.StartTime, in.EndTime)
	if err != nil {
		return err
	}
	in.StartTime, in.EndTime = start, end

	if in.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *in.ProjectID)
		if errors.Is(err, repository.ErrProjectNotFound) {
			return newError(ErrNotFound, "proyecto no encontrado")
		}
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if !p.Active {
			return newError(ErrInactiveProject, "el proyecto %q está inactivo", p.Name)
		}
	}
	return nil
}

// Create stores a new draft activity for the caller.
func (s *ActivityService) Create(ctx context.Context, caller Caller, in ActivityInput) (*model.Activity, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	overlap, err := s.checker.HasOverlap(ctx, caller.ID, in.Date, in.StartTime, in.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		overlapRejections.Inc()
		return nil, newError(ErrOverlap, "el horario se superpone con otra actividad del mismo día")
	}

	a := &model.Activity{
		UserID:      caller.ID,
		ProjectID:   in.ProjectID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		Type:        in.Type,
		Status:      model.StatusDraft,
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	activitiesCreated.Inc()
	return a, nil
}

// load fetches an activity and checks the caller may perform action on it.
func (s *ActivityService) load(ctx context.Context, caller Caller, id uint64, action Action) (*model.Activity, error) {
	a, err := s.activities.GetByID(ctx, id)
	if errors.Is(err, repository.ErrActivityNotFound) {
		return nil, newError(ErrNotFound, "actividad no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	var owner *model.User
	if a.UserID != caller.ID {
		owner, err = s.users.GetByID(ctx, a.UserID)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("load activity owner: %w", err)
		}
	}
	if err := Authorize(caller, ActivityResource(*a, owner), action); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns one activity visible to the caller.
func (s *ActivityService) Get(ctx context.Context, caller Caller, id uint64) (*model.Activity, error) {
	return s.load(ctx, caller, id, ActionRead)
}

// Update rewrites a draft activity of the caller.
func (s *ActivityService) Update(ctx context.Context, caller Caller, id uint64, in ActivityInput) (*model.Activity, error) {
	a, err := s.load(ctx, caller, id, ActionWrite)
	if err != nil {
		return nil, err
	}
	if a.Status.IsSubmitted() {
		return nil, newError(ErrImmutable, "la actividad ya fue enviada y no puede modificarse")
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	overlap, err := s.checker.HasOverlap(ctx, a.UserID, in.Date, in.StartTime, in.EndTime, a.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		overlapRejections.Inc()
		return nil, newError(ErrOverlap, "el horario se superpone con otra actividad del mismo día")
	}

	a.ProjectID = in.ProjectID
	a.Date = in.Date
	a.StartTime = in.StartTime
	a.EndTime = in.EndTime
	a.Description = in.Description
	a.Type = in.Type
	if err := s.activities.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, newError(ErrImmutable, "la actividad ya fue enviada y no puede modificarse")
		}
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return s.activities.GetByID(ctx, a.ID)
}

// Delete removes a draft activity of the caller.
func (s *ActivityService) Delete(ctx context.Context, caller Caller, id uint64) error {
	a, err := s.load(ctx, caller, id, ActionDelete)
	if err != nil {
		return err
	}
	if a.Status.IsSubmitted() {
		return newError(ErrImmutable, "la actividad ya fue enviada y no puede eliminarse")
	}
	if err := s.activities.Delete(ctx, a.ID, a.UserID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return newError(ErrImmutable, "la actividad ya fue enviada y no puede eliminarse")
		}
		if errors.Is(err, repository.ErrActivityNotFound) {
			return newError(ErrNotFound, "actividad no encontrada")
		}
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// List returns a page of activities of q.UserID (the caller by default).
// Listing another user's activities requires supervising that user.
func (s *ActivityService) List(ctx context.Context, caller Caller, q ActivityQuery) (*ActivityPage, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	target := q.UserID
	if target == 0 {
		target = caller.ID
	}
	if target != caller.ID {
		u, err := s.users.GetByID(ctx, target)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, newError(ErrNotFound, "usuario no encontrado")
		}
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		if err := Authorize(caller, UserResource(*u), ActionRead); err != nil {
			return nil, err
		}
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, Invalid("fechaInicio", "fechaInicio no puede ser posterior a fechaFin")
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	f := model.ActivityFilter{UserID: target, ProjectID: q.ProjectID, From: q.From, To: q.To}
	if q.Status != nil {
		f.Statuses = []model.ActivityStatus{*q.Status}
	}
	total, err := s.activities.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}
	f.Limit, f.Offset = size, (page-1)*size
	items, err := s.activities.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return &ActivityPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Submit moves the caller's listed draft activities to submitted and
// returns the ids that changed.  Foreign, unknown and already submitted ids
// are ignored.
func (s *ActivityService) Submit(ctx context.Context, caller Caller, ids []uint64, now time.Time) ([]uint64, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if len(ids) == 0 {
		return nil, Invalid("ids", "debe indicar al menos una actividad")
	}
	seen := make(map[uint64]bool, len(ids))
	uniq := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	changed, err := s.activities.Submit(ctx, caller.ID, uniq)
	if err != nil {
		return nil, fmt.Errorf("submit activities: %w", err)
	}
	if len(changed) == 0 {
		return []uint64{}, nil
	}
	activitiesSubmitted.Add(float64(len(changed)))
	s.publishSubmitted(ctx, caller.ID, changed, now)
	return changed, nil
}

func (s *ActivityService) publishSubmitted(ctx context.Context, userID uint64, ids []uint64, now time.Time) {
	if s.events == nil {
		return
	}
	ev := queue.ActivitiesSubmittedEvent{
		UserID:      userID,
		ActivityIDs: ids,
		SubmittedAt: now.UTC().Format(time.RFC3339),
	}
	if u, err := s.users.GetByID(ctx, userID); err == nil && u.SupervisorID != nil {
		ev.SupervisorID = *u.SupervisorID
	}
	for _, id := range ids {
		if a, err := s.activities.GetByID(ctx, id); err == nil {
			ev.TotalHours += a.Hours()
		}
	}
	if err := s.events.PublishActivitiesSubmitted(ctx, ev); err != nil {
		s.log.Warn("publish activities submitted failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
}

// ParseDate parses a "YYYY-MM-DD" request value.  field names the parameter
// in the error message.
func ParseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, Invalid(field, "%s debe tener formato YYYY-MM-DD", field)
	}
	return t, nil
}

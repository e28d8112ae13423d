package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
)

// TopProjects is how many entries ProjectCounts returns at most.
const TopProjects = 5

// MaxStatsRangeDays caps the span of a daily-count request.
const MaxStatsRangeDays = 366

// DayCount is the number of submitted activities on one calendar day.
type DayCount struct {
	Date  string `json:"fecha"`
	Total int    `json:"total"`
}

// ProjectCount is the number of activities logged against one project.
type ProjectCount struct {
	Name  string `json:"nombre"`
	Total int    `json:"total"`
}

// UserSummary is the supervisor's view of one supervised user.
type UserSummary struct {
	UserID           uint64  `json:"usuarioId"`
	Name             string  `json:"nombre"`
	TotalActivities  int     `json:"totalActividades"`
	Completed        int     `json:"completadas"`
	Pending          int     `json:"pendientes"`
	AssignedProjects int64   `json:"proyectosAsignados"`
	MonthHours       float64 `json:"horasMes"`
	Month            string  `json:"mes"`
}

// StatsService computes read-only aggregates over activities.
type StatsService struct {
	activities  ActivityStore
	projects    ProjectStore
	users       UserStore
	assignments AssignmentStore
}

func NewStatsService(activities ActivityStore, projects ProjectStore, users UserStore, assignments AssignmentStore) *StatsService {
	return &StatsService{activities: activities, projects: projects, users: users, assignments: assignments}
}

// ResolveTarget returns the user whose statistics are requested.  A zero
// target means the caller; any other user must be visible to the caller.
func (s *StatsService) ResolveTarget(ctx context.Context, caller Caller, target uint64) (uint64, error) {
	if caller.ID == 0 {
		return 0, ErrUnauthenticated
	}
	if target == 0 || target == caller.ID {
		return caller.ID, nil
	}
	u, err := s.users.GetByID(ctx, target)
	if errors.Is(err, repository.ErrUserNotFound) {
		return 0, newError(ErrNotFound, "usuario no encontrado")
	}
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if err := Authorize(caller, UserResource(*u), ActionRead); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// DailyCounts returns one entry per calendar day in [from, to] with the
// number of submitted activities of userID on that day.  Days without
// activity are present with total 0.
func (s *StatsService) DailyCounts(ctx context.Context, userID uint64, from, to time.Time) ([]DayCount, error) {
	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return nil, Invalid("fechaInicio", "fechaInicio no puede ser posterior a fechaFin")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > MaxStatsRangeDays {
		return nil, Invalid("fechaFin", "el rango no puede superar %d días", MaxStatsRangeDays)
	}

	list, err := s.activities.Find(ctx, model.ActivityFilter{
		UserID:   userID,
		From:     &from,
		To:       &to,
		Statuses: []model.ActivityStatus{model.StatusSubmitted},
	})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	out := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := from.AddDate(0, 0, i).Format(model.DateLayout)
		out[i] = DayCount{Date: key}
		index[key] = i
	}
	for _, a := range list {
		if !a.Status.IsSubmitted() {
			continue
		}
		if i, ok := index[a.DateKey()]; ok {
			out[i].Total++
		}
	}
	return out, nil
}

// ProjectCounts returns the projects with the most activities of userID,
// in any status, highest first.  Equal counts keep the order in which the
// projects first appear in the activity list.  Activities without a
// project are ignored.
func (s *StatsService) ProjectCounts(ctx context.Context, userID uint64) ([]ProjectCount, error) {
	list, err := s.activities.Find(ctx, model.ActivityFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	counts := map[uint64]int{}
	var order []uint64
	names := map[uint64]string{}
	for _, a := range list {
		if a.ProjectID == nil {
			continue
		}
		id := *a.ProjectID
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
		if a.ProjectName != "" {
			names[id] = a.ProjectName
		}
	}

	var missing []uint64
	for _, id := range order {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		resolved, err := s.projects.NamesByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("resolve project names: %w", err)
		}
		for id, n := range resolved {
			names[id] = n
		}
	}

	out := make([]ProjectCount, 0, len(order))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = fmt.Sprintf("Proyecto %d", id)
		}
		out = append(out, ProjectCount{Name: name, Total: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > TopProjects {
		out = out[:TopProjects]
	}
	return out, nil
}

// UserSummary describes targetID for its supervisor.  Hours are summed over
// the calendar month containing now.
func (s *StatsService) UserSummary(ctx context.Context, caller Caller, targetID uint64, now time.Time) (*UserSummary, error) {
	if caller.ID == 0 {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, targetID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrNotFound, "usuario no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !caller.IsAdmin() && (u.SupervisorID == nil || *u.SupervisorID != caller.ID) {
		return nil, newError(ErrForbidden, "el usuario no está bajo su supervisión")
	}

	all, err := s.activities.Find(ctx, model.ActivityFilter{UserID: u.ID})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	assigned, err := s.assignments.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	sum := &UserSummary{
		UserID:           u.ID,
		Name:             u.FullName(),
		TotalActivities:  len(all),
		AssignedProjects: assigned,
		Month:            monthStart.Format("2006-01"),
	}
	for _, a := range all {
		if a.Status.IsSubmitted() {
			sum.Completed++
		} else {
			sum.Pending++
		}
		d := truncateDay(a.Date)
		if !d.Before(monthStart) && d.Before(monthEnd) {
			sum.MonthHours += a.Hours()
		}
	}
	return sum, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/activity-tracker/internal/model"
)

func TestDailyCountsFillsEveryDay(t *testing.T) {
	f := newFixture(t)
	f.addActivity("2024-01-02", "09:00", "10:00", model.StatusSubmitted, nil)
	f.addActivity("2024-01-02", "11:00", "12:00", model.StatusDraft, nil)
	f.addActivity("2024-01-05", "09:00", "10:00", model.StatusSubmitted, nil)

	got, err := f.stats.DailyCounts(context.Background(), f.employee.ID, day("2024-01-01"), day("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, []DayCount{
		{Date: "2024-01-01", Total: 0},
		{Date: "2024-01-02", Total: 1},
		{Date: "2024-01-03", Total: 0},
	}, got)
}

func TestDailyCountsLengthAndSum(t *testing.T) {
	f := newFixture(t)
	submitted := 0
	for i := 0; i < 40; i++ {
		d := day("2024-02-01").AddDate(0, 0, i%29).Format(model.DateLayout)
		st := model.StatusDraft
		if i%3 == 0 {
			st = "enviado"
			submitted++
		}
		f.store.AddActivity(model.Activity{UserID: f.employee.ID, Date: day(d), StartTime: "08:00", EndTime: "09:00", Status: st})
	}

	from, to := day("2024-02-01"), day("2024-02-29")
	got, err := f.stats.DailyCounts(context.Background(), f.employee.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, got, int(to.Sub(from).Hours()/24)+1)

	sum := 0
	for i, d := range got {
		assert.Equal(t, from.AddDate(0, 0, i).Format(model.DateLayout), d.Date)
		sum += d.Total
	}
	assert.Equal(t, submitted, sum)
}

func TestDailyCountsRejectsReversedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.stats.DailyCounts(context.Background(), f.employee.ID, day("2024-01-03"), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.stats.DailyCounts(context.Background(), f.employee.ID, day("2024-01-03"), day("2024-01-03"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProjectCountsTopFiveStable(t *testing.T) {
	f := newFixture(t)
	names := []string{"Alfa", "Beta", "Gamma", "Delta", "Épsilon", "Zeta", "Eta"}
	counts := []int{2, 3, 2, 1, 3, 1, 1}
	ids := make([]uint64, len(names))
	for i, n := range names {
		ids[i] = f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: n, Active: true})
	}
	// one activity per project first so first-seen order follows names
	slot := 0
	for round := 0; round < 3; round++ {
		for i := range names {
			if counts[i] > round {
				d := day("2024-03-01").AddDate(0, 0, slot)
				f.store.AddActivity(model.Activity{UserID: f.employee.ID, ProjectID: &ids[i], Date: d, StartTime: "08:00", EndTime: "09:00"})
				slot++
			}
		}
	}
	f.addActivity("2024-01-01", "08:00", "09:00", model.StatusDraft, nil)

	got, err := f.stats.ProjectCounts(context.Background(), f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, []ProjectCount{
		{Name: "Beta", Total: 3},
		{Name: "Épsilon", Total: 3},
		{Name: "Alfa", Total: 2},
		{Name: "Gamma", Total: 2},
		{Name: "Delta", Total: 1},
	}, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Total, got[i].Total)
	}
}

func TestProjectCountsEmpty(t *testing.T) {
	f := newFixture(t)
	got, err := f.stats.ProjectCounts(context.Background(), f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Portal", Active: true})
	_, err := f.projects.Assign(ctx, f.supervisor, pid, f.employee.ID)
	require.NoError(t, err)

	f.addActivity("2025-03-03", "09:00", "10:30", model.StatusSubmitted, &pid)
	f.addActivity("2025-03-04", "09:00", "10:00", model.StatusDraft, nil)
	f.addActivity("2025-02-27", "09:00", "17:00", "completada", nil)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	sum, err := f.stats.UserSummary(ctx, f.supervisor, f.employee.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalActivities)
	assert.Equal(t, 2, sum.Completed)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, int64(1), sum.AssignedProjects)
	assert.InDelta(t, 2.5, sum.MonthHours, 1e-9)
	assert.Equal(t, "2025-03", sum.Month)
	assert.Equal(t, "Luis Pérez", sum.Name)

	again, err := f.stats.UserSummary(ctx, f.supervisor, f.employee.ID, now)
	require.NoError(t, err)
	assert.Equal(t, sum, again)

	feb, err := f.stats.UserSummary(ctx, f.supervisor, f.employee.ID, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, feb.MonthHours, 1e-9)
}

func TestUserSummaryAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	_, err := f.stats.UserSummary(ctx, f.outsider, f.employee.ID, now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.stats.UserSummary(ctx, f.employee, f.employee.ID, now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.stats.UserSummary(ctx, f.admin, f.employee.ID, now)
	assert.NoError(t, err)

	_, err = f.stats.UserSummary(ctx, f.supervisor, 999, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.stats.ResolveTarget(ctx, f.employee, 0)
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, id)

	id, err = f.stats.ResolveTarget(ctx, f.supervisor, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, id)

	_, err = f.stats.ResolveTarget(ctx, f.outsider, f.employee.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

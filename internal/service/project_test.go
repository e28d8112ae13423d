package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/activity-tracker/internal/model"
)

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, f.employee, ProjectInput{Name: "X"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.projects.Create(ctx, f.supervisor, ProjectInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := f.projects.Create(ctx, f.supervisor, ProjectInput{Name: "Portal", StartDate: ptr(day("2025-01-01")), EndDate: ptr(day("2025-12-31"))})
	require.NoError(t, err)
	assert.True(t, p.Active)

	_, err = f.projects.Update(ctx, f.outsider, p.ID, ProjectInput{Name: "Hack"})
	assert.ErrorIs(t, err, ErrForbidden)

	p, err = f.projects.Update(ctx, f.supervisor, p.ID, ProjectInput{Name: "Portal v2"})
	require.NoError(t, err)
	assert.Equal(t, "Portal v2", p.Name)

	_, err = f.projects.Update(ctx, f.supervisor, p.ID, ProjectInput{Name: "Y", StartDate: ptr(day("2025-02-01")), EndDate: ptr(day("2025-01-01"))})
	assert.ErrorIs(t, err, ErrValidation)

	p, err = f.projects.SetActive(ctx, f.supervisor, p.ID, false)
	require.NoError(t, err)
	assert.False(t, p.Active)

	_, err = f.projects.Assign(ctx, f.supervisor, p.ID, f.employee.ID)
	assert.ErrorIs(t, err, ErrInactiveProject)

	_, err = f.projects.SetActive(ctx, f.supervisor, p.ID, true)
	require.NoError(t, err)

	list, err := f.projects.List(ctx, f.supervisor, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Portal", Active: true})

	_, err := f.projects.Get(ctx, f.employee, pid)
	assert.ErrorIs(t, err, ErrForbidden, "not yet assigned")

	a, err := f.projects.Assign(ctx, f.supervisor, pid, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentPending, a.State)

	_, err = f.projects.Assign(ctx, f.supervisor, pid, f.employee.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.projects.Assign(ctx, f.supervisor, pid, f.outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden, "outsider is not supervised")

	_, err = f.projects.Get(ctx, f.employee, pid)
	assert.NoError(t, err)

	list, err := f.projects.List(ctx, f.employee, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.projects.Accept(ctx, f.supervisor, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	a, err = f.projects.Accept(ctx, f.employee, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentAccepted, a.State)

	mine, err := f.projects.Assignments(ctx, f.employee)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Portal", mine[0].ProjectName)
	assert.Equal(t, model.AssignmentAccepted, mine[0].State)
}

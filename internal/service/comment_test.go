package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/activity-tracker/internal/model"
)

func TestCommentThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	aid := f.addActivity("2025-03-10", "09:00", "10:00", model.StatusSubmitted, nil)

	top, err := f.comments.Create(ctx, f.supervisor, aid, "¿Cuánto falta?", nil, now)
	require.NoError(t, err)
	reply, err := f.comments.Create(ctx, f.employee, aid, "Poco", &top.ID, now)
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, f.supervisor, aid, "anidado", &reply.ID, now)
	assert.ErrorIs(t, err, ErrValidation, "only one level of replies")

	_, err = f.comments.Create(ctx, f.outsider, aid, "hola", nil, now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.comments.Create(ctx, f.employee, aid, "   ", nil, now)
	assert.ErrorIs(t, err, ErrValidation)

	threads, err := f.comments.List(ctx, f.employee, aid)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "¿Cuánto falta?", threads[0].Content)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "Poco", threads[0].Replies[0].Content)

	require.Len(t, f.events.Comments, 2)
	assert.Equal(t, f.employee.ID, f.events.Comments[0].ActivityOwnerID)
	assert.Equal(t, &top.ID, f.events.Comments[1].ParentID)
}

func TestCommentDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aid := f.addActivity("2025-03-10", "09:00", "10:00", model.StatusDraft, nil)
	c, err := f.comments.Create(ctx, f.supervisor, aid, "Revisar", nil, time.Now())
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, f.employee, aid, "Listo", &c.ID, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, f.comments.Delete(ctx, f.employee, c.ID), ErrForbidden)
	require.NoError(t, f.comments.Delete(ctx, f.supervisor, c.ID))
	require.NoError(t, f.comments.Delete(ctx, f.supervisor, c.ID))

	threads, err := f.comments.List(ctx, f.employee, aid)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.True(t, threads[0].Deleted)
	assert.Empty(t, threads[0].Content)
	assert.Len(t, threads[0].Replies, 1)

	_, err = f.comments.Create(ctx, f.employee, aid, "otra", &c.ID, time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, f.comments.Delete(ctx, f.supervisor, 999), ErrNotFound)
}

package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/activity-tracker/internal/model"
)

func TestDocumentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aid := f.addActivity("2025-03-10", "09:00", "10:00", model.StatusDraft, nil)

	doc, err := f.documents.Upload(ctx, f.employee, aid, Upload{FileName: "../acta.pdf", Body: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "acta.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, int64(8), doc.SizeBytes)

	list, err := f.documents.List(ctx, f.supervisor, aid)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	meta, rc, err := f.documents.Open(ctx, f.supervisor, doc.ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, doc.ID, meta.ID)

	_, _, err = f.documents.Open(ctx, f.outsider, doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, f.documents.Delete(ctx, f.supervisor, doc.ID), ErrForbidden)
	require.NoError(t, f.documents.Delete(ctx, f.employee, doc.ID))
	assert.Equal(t, 0, f.files.Len())

	_, _, err = f.documents.Open(ctx, f.employee, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentUploadLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aid := f.addActivity("2025-03-10", "09:00", "10:00", model.StatusDraft, nil)

	_, err := f.documents.Upload(ctx, f.employee, aid, Upload{FileName: "big.bin", Body: strings.NewReader(strings.Repeat("x", 2048))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Upload(ctx, f.employee, aid, Upload{FileName: "", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.Upload(ctx, f.supervisor, aid, Upload{FileName: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, f.files.Len())
}

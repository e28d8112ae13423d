package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenRemove(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key, n, err := st.Save(context.Background(), "Informe Final.PDF", strings.NewReader("hola"), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rc, err := st.Open(key)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hola", string(b))

	require.NoError(t, st.Remove(key))
	_, err = st.Open(key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, st.Remove(key))
}

func TestSaveRejectsOversize(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = st.Save(context.Background(), "a.txt", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOpenRejectsTraversal(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = st.Open("../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("x.PDF"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatementsSkipsComments(t *testing.T) {
	script := "-- header\nCREATE TABLE a (id INT);\n\n-- second\nCREATE TABLE b (\n  id INT\n);\n"
	stmts := splitStatements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b ("))
	assert.False(t, strings.HasSuffix(stmts[1], ";"))
}

func TestEmbeddedSchemaCoversAllTables(t *testing.T) {
	stmts := splitStatements(schemaSQL)
	require.Len(t, stmts, 7)
	for _, table := range []string{"usuarios", "refresh_tokens", "proyectos", "asignaciones_tareas", "actividades", "comentarios", "documentos"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN("app", "p@ss", "db", "3306", "actividades")
	assert.True(t, strings.HasPrefix(dsn, "app:p@ss@tcp(db:3306)/actividades?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	noPass := DSN("app", "", "db", "3306", "actividades")
	assert.True(t, strings.HasPrefix(noPass, "app@tcp(db:3306)/"), noPass)
}

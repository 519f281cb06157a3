package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	b, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "-- +goose Up")
	assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS secrets")

	b, err = fs.ReadFile(Migrations, "00002_secret_sealing.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "ADD COLUMN IF NOT EXISTS auth_tag")
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptsAreGooseAnnotated(t *testing.T) {
	files, err := fs.Glob(scripts, dir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		content, err := fs.ReadFile(scripts, name)
		require.NoError(t, err)
		text := string(content)
		assert.True(t, strings.HasPrefix(text, "-- +goose Up"), name)
		assert.Contains(t, text, "-- +goose Down", name)
	}
}

func TestTicketSequenceTableShipsWithSchema(t *testing.T) {
	content, err := fs.ReadFile(scripts, dir+"/00003_visits.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE service_ticket_sequences")
	assert.Contains(t, string(content), "turn_ticket_number_unique")
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsOrderedGooseFiles(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(FS(), ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"00001_catalog_items.sql",
		"00002_subscriptions.sql",
		"00003_approvals.sql",
	}, names)

	for _, name := range names {
		body, err := fs.ReadFile(FS(), name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"), "%s must start with a goose Up annotation", name)
		assert.Contains(t, string(body), "-- +goose Down", "%s must have a Down section", name)
	}
}

func TestFS_PendingSubscriptionIndexIsPartial(t *testing.T) {
	t.Parallel()

	body, err := fs.ReadFile(FS(), "00002_subscriptions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "ON subscriptions (user_id, item_id) WHERE notified_at IS NULL")
}

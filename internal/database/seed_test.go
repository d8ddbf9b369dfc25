package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
users:
  - id: 1
    name: Ann
    email: ann@example.com
  - id: 2
    name: Bob
    email: bob@example.com
items:
  - name: Drill
    description: Cordless drill
    available: true
    owner_id: 2
`

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Users, 2)
	require.Len(t, seed.Items, 1)

	db := setupTestDB(t)
	ctx := context.Background()

	applied, err := db.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.True(t, applied)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	item, err := db.GetItemByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, users[1].ID, item.OwnerID)
	assert.True(t, item.Available)

	applied, err = db.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestSeedErrors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	db := setupTestDB(t)
	seed := &Seed{}
	applied, err := db.ApplySeed(context.Background(), seed)
	require.NoError(t, err)
	assert.False(t, applied)

	seed, err = loadSeedString(t, "users:\n  - id: 1\n    name: A\n    email: a@example.com\nitems:\n  - name: X\n    description: x\n    owner_id: 7\n")
	require.NoError(t, err)
	_, err = db.ApplySeed(context.Background(), seed)
	assert.Error(t, err)

	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func loadSeedString(t *testing.T, content string) (*Seed, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return LoadSeed(path)
}

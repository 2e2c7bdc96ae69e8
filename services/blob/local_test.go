package blobsvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "backup_gym_1.json", strings.NewReader(`{"gym_id":1}`), 12, "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_gym_1.json"), loc)

	content, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"gym_id":1}`, string(content))

	// existing backups are never overwritten
	_, err = s.Put(context.Background(), "backup_gym_1.json", strings.NewReader(`{}`), 2, "application/json")
	assert.Error(t, err)

	// names cannot escape the directory
	loc, err = s.Put(context.Background(), "../escape.json", strings.NewReader(`{}`), 2, "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.json"), loc)
}

package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/form-agent/internal/fieldtype"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "profile.json"))
	ctx := context.Background()

	rec := &Record{FirstName: "Ada", Email: "ada@example.com"}
	rec.SetCustomAnswer("Why us?", "The mission.")
	rec.LearnMapping("Work Email", fieldtype.Email)

	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded.FirstName)
	v, ok := loaded.CustomAnswer("Why us?")
	require.True(t, ok)
	assert.Equal(t, "The mission.", v)
	assert.Equal(t, fieldtype.Email, loaded.LearnedMappings["work email"])
}

func TestFileStore_AbsentFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Record{}, rec)
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	store := NewFileStore(path)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

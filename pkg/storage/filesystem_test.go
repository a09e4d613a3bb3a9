package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStreamAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name := UniqueName("名单 2024.XLSX")
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	rel, err := store.SaveStream(name, strings.NewReader("roster"), 1024)
	require.NoError(t, err)
	data, err := os.ReadFile(store.Path(rel))
	require.NoError(t, err)
	assert.Equal(t, "roster", string(data))

	require.NoError(t, store.Delete(rel))
	_, err = os.Stat(store.Path(rel))
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageSaveStreamLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("big.csv", strings.NewReader("0123456789"), 5)
	require.True(t, errors.Is(err, ErrTooLarge))
	_, statErr := os.Stat(store.Path("big.csv"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.SaveStream("exact.csv", strings.NewReader("01234"), 5)
	require.NoError(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.csv", []byte("x"))
	require.Error(t, err)
	_, err = store.Save("/etc/passwd", []byte("x"))
	require.Error(t, err)
	assert.Empty(t, store.Path("../escape.csv"))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.csv", []byte("x"))
	require.NoError(t, err)
	_, err = store.Save("new.csv", []byte("y"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, deleted)
	_, err = os.Stat(filepath.Join(dir, "new.csv"))
	require.NoError(t, err)
}

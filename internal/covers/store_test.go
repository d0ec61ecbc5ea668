package covers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "covers"))
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/covers/"), "unexpected url %q", url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(store.Dir(), filepath.Base(url))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	require.NoError(t, store.Remove(context.Background(), url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing an unknown URL is not an error.
	assert.NoError(t, store.Remove(context.Background(), "/covers/missing.png"))
}

package discussion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCategoryID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"daily_digest_category_id": "DIC_kwDOtest"}`), 0o644))

	id, err := LoadCategoryID(path)
	require.NoError(t, err)
	assert.Equal(t, "DIC_kwDOtest", id)
}

func TestLoadCategoryID_Missing(t *testing.T) {
	t.Parallel()

	id, err := LoadCategoryID(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestLoadCategoryID_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := LoadCategoryID(path)
	require.Error(t, err)
}

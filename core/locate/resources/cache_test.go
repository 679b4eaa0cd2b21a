package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.resources")
	defer teardown()
	//
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	_, err := CacheDirPath(testconfig.Conf{})
	assert.True(t, core.HasCode(err, core.EINVALID), "expected missing app-key to be an error")
	conf := testconfig.Conf{"app-key": "glyphset-test"}
	dir, err := CacheDirPath(conf, "fonts", "fc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("glyphset-test", "fonts", "fc"), rel(t, dir))
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func rel(t *testing.T, dir string) string {
	base, err := os.UserCacheDir()
	require.NoError(t, err)
	r, err := filepath.Rel(base, dir)
	require.NoError(t, err)
	return r
}

package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFragments(t *testing.T) {
	r := New()
	for _, name := range []string{"empty-state", "select-option", "layer-card", "source-card", "toggle-switch"} {
		assert.NotNil(t, r.templates.Lookup(name), name)
	}

	html, err := r.Render("select-option", map[string]string{"Value": "a.geojson", "Label": "<a>"})
	require.NoError(t, err)
	assert.Equal(t, `<option value="a.geojson">&lt;a&gt;</option>`, html)

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
}

func TestNewDirAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{define "greet"}}hi {{.}}{{end}}`), 0o644))

	r, err := NewDir(dir)
	require.NoError(t, err)
	html, err := r.Render("greet", "there")
	require.NoError(t, err)
	assert.Equal(t, "hi there", html)

	require.NoError(t, os.WriteFile(path, []byte(`{{define "greet"}}bye {{.}}{{end}}`), 0o644))
	require.NoError(t, r.Reload())
	html, _ = r.Render("greet", "now")
	assert.Equal(t, "bye now", html)

	_, err = NewDir(t.TempDir())
	assert.Error(t, err, "no fragments")
}

package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\nlogs/**/*.bak\n"
	require.NoError(t, os.WriteFile(ig, []byte(content), 0o644))

	m, err := Load(ig)
	require.NoError(t, err)
	cases := map[string]bool{
		"node_modules/pkg/index.js": true,
		"a/node_modules/x.js":       true,
		"certs/key.pem":             true,
		"secret.env":                true,
		"logs/2024/01/app.bak":      true,
		"src/app.go":                false,
		"node_modules":              false,
		"other/app.bak":             false,
	}
	for p, want := range cases {
		assert.Equal(t, want, m.Match(p), p)
	}
}

func TestLoadMissing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.False(t, m.Match("anything.txt"))
}

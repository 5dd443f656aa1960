package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	filterFile := filepath.Join(dir, "doopie.rules")

	content := `# This is a comment
+ keep.log
- *.log

- .git/
~ \.(jpg|png)$
noprefix.jpg
`
	require.NoError(t, os.WriteFile(filterFile, []byte(content), 0o644))

	c := NewChain()
	require.NoError(t, c.LoadFile(filterFile))

	assert.Len(t, c.rules, 4)
	assert.Len(t, c.regexes, 1)
	assert.True(t, c.rules[0].Include)
	assert.False(t, c.rules[1].Include)
	assert.False(t, c.rules[2].Include)
	assert.False(t, c.rules[3].Include)

	assert.True(t, c.Match("photo.jpg", false, 100))
	assert.False(t, c.Match("keep.log", false, 100)) // included by glob, but not by the regex
	assert.False(t, c.Match("app.log", false, 100))
	assert.False(t, c.Match(".git", true, 0))
	assert.False(t, c.Match("noprefix.jpg", false, 100))
}

func TestLoadFileEmpty(t *testing.T) {
	dir := t.TempDir()
	filterFile := filepath.Join(dir, "empty.rules")
	require.NoError(t, os.WriteFile(filterFile, []byte("# only comments\n\n"), 0o644))

	c := NewChain()
	require.NoError(t, c.LoadFile(filterFile))
	assert.True(t, c.Empty())
}

func TestLoadFileNotExists(t *testing.T) {
	c := NewChain()
	assert.Error(t, c.LoadFile("/nonexistent/path"))
}

func TestLoadFileBadRegex(t *testing.T) {
	dir := t.TempDir()
	filterFile := filepath.Join(dir, "bad.rules")
	require.NoError(t, os.WriteFile(filterFile, []byte("- *.tmp\n~ ([\n"), 0o644))

	c := NewChain()
	err := c.LoadFile(filterFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

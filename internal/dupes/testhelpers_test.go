package dupes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates path (and its parents) with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// createDupTree populates root with:
//
//	a.txt           "hello world"   duplicate of sub/a-copy.txt
//	sub/a-copy.txt  "hello world"
//	b.txt           "hello there"   same size as a.txt, different content
//	c.bin           "xyz"           unique by size
//	sub/deep/d.txt  "twin"          duplicate of e.txt
//	e.txt           "twin"
func createDupTree(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world")
	writeFile(t, filepath.Join(root, "sub", "a-copy.txt"), "hello world")
	writeFile(t, filepath.Join(root, "b.txt"), "hello there")
	writeFile(t, filepath.Join(root, "c.bin"), "xyz")
	writeFile(t, filepath.Join(root, "sub", "deep", "d.txt"), "twin")
	writeFile(t, filepath.Join(root, "e.txt"), "twin")
}

// resolvedTempDir returns a symlink-free temporary directory so paths
// compare equal with the scan's resolved root.
func resolvedTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func entryPaths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func skipPaths(skips []Skip) []string {
	out := make([]string, len(skips))
	for i, s := range skips {
		out[i] = s.Path
	}
	return out
}

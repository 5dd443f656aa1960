package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/doopie/internal/dupes"
)

// isolateConfig points the config lookup at an empty directory so a
// developer's own config never leaks into tests.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func resolvedTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRun_Version(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"--version"}, &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Equal(t, "doopie dev\n", out.String())
}

func TestRun_RequiresDirectory(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "Error:")
}

func TestRun_MissingDirectory(t *testing.T) {
	isolateConfig(t)
	dir := resolvedTempDir(t)
	missing := filepath.Join(dir, "nope")

	var out, errOut bytes.Buffer
	code := run([]string{"--no-progress", missing}, &out, &errOut)

	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "root path does not exist")
	assert.NoFileExists(t, filepath.Join(missing, dupes.DuplicateListName))
	assert.NoFileExists(t, filepath.Join(dir, dupes.DuplicateListName))
	assert.Empty(t, out.String())
}

func TestRun_NotADirectory(t *testing.T) {
	isolateConfig(t)
	dir := resolvedTempDir(t)
	file := filepath.Join(dir, "file.txt")
	writeTree(t, dir, map[string]string{"file.txt": "x"})

	var out, errOut bytes.Buffer
	code := run([]string{file}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "not a directory")
}

func TestRun_WritesDuplicateList(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{
		"a.txt":       "identical",
		"sub/b.txt":   "identical",
		"c.txt":       "different",
		"tiny.txt":    "x",
		"sub/d/e.bin": "other bytes",
	})

	var out, errOut bytes.Buffer
	code := run([]string{"--no-progress", root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	outPath := filepath.Join(root, dupes.DuplicateListName)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.txt"),
	}, readLines(t, outPath))

	s := out.String()
	assert.Contains(t, s, "Report of scanning "+root)
	assert.Contains(t, s, outPath+" was successfully written")
	assert.Contains(t, errOut.String(), "done")
}

func TestRun_RescanIgnoresOwnOutput(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{"a": "same", "b": "same"})
	outPath := filepath.Join(root, dupes.DuplicateListName)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"-q", root}, &out, &errOut))
	first := readLines(t, outPath)

	require.Equal(t, 0, run([]string{"-q", root}, &out, &errOut))
	assert.Equal(t, first, readLines(t, outPath))
	assert.Len(t, first, 2)
}

func TestRun_QuietWritesNothingToStdout(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{"a": "same", "b": "same"})

	var out, errOut bytes.Buffer
	code := run([]string{"-q", root}, &out, &errOut)
	require.Equal(t, 0, code)
	assert.Empty(t, out.String())
	assert.FileExists(t, filepath.Join(root, dupes.DuplicateListName))
}

func TestRun_OutputAndGroupsFlags(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	elsewhere := resolvedTempDir(t)
	writeTree(t, root, map[string]string{"a": "same", "b": "same", "c": "diff"})
	outPath := filepath.Join(elsewhere, "dupes.txt")
	groupsPath := filepath.Join(elsewhere, "groups.yaml")

	var out, errOut bytes.Buffer
	code := run([]string{
		"--no-progress", "--hash", "sha256",
		"-o", outPath, "--groups", groupsPath, root,
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assert.NoFileExists(t, filepath.Join(root, dupes.DuplicateListName))
	assert.Len(t, readLines(t, outPath), 2)

	doc, err := dupes.ReadGroups(groupsPath)
	require.NoError(t, err)
	assert.Equal(t, "sha256", doc.Algorithm)
	assert.Equal(t, root, doc.Root)
	require.Len(t, doc.Sets, 1)
	assert.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, doc.Sets[0].Paths)
	assert.Contains(t, out.String(), groupsPath+" was successfully written")
}

func TestRun_BandwidthLimit(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{"a": "same", "b": "same", "c": "diff"})

	var out, errOut bytes.Buffer
	code := run([]string{"-q", "--bwlimit", "1M", root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Len(t, readLines(t, filepath.Join(root, dupes.DuplicateListName)), 2)
}

func TestRun_PatternFlags(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{
		"keep/a.jpg":   "photo",
		"keep/b.jpg":   "photo",
		"keep/a.txt":   "notes",
		"keep/b.txt":   "notes",
		"cache/c.jpg":  "photo",
		"cache/d.jpg":  "photo",
		"other/e.jpeg": "photo",
	})

	var out, errOut bytes.Buffer
	code := run([]string{"-q", "-r", `\.jpg$`, "-i", "cache/", root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assert.Equal(t, []string{
		filepath.Join(root, "keep", "a.jpg"),
		filepath.Join(root, "keep", "b.jpg"),
	}, readLines(t, filepath.Join(root, dupes.DuplicateListName)))
}

func TestRun_InvalidFlags(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"regex", []string{"-r", "(", root}, "invalid --regex"},
		{"min size", []string{"--min-size", "lots", root}, "invalid --min-size"},
		{"hash", []string{"--hash", "md5", root}, "invalid --hash"},
		{"bwlimit", []string{"--bwlimit", "fast", root}, "invalid --bwlimit"},
		{"filter file", []string{"--filter", filepath.Join(root, "missing.rules"), root}, "load filter file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(append([]string{"-q"}, tt.args...), &out, &errOut)
			assert.Equal(t, 2, code)
			assert.Contains(t, errOut.String(), tt.want)
			assert.NoFileExists(t, filepath.Join(root, dupes.DuplicateListName))
		})
	}
}

func TestRun_ConfigDefaults(t *testing.T) {
	cfgDir := isolateConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfgDir, "doopie"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "doopie", "config.toml"), []byte(`
[defaults]
min_size = "4"
ignore = ["*.log"]
`), 0o644))

	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{
		"a":     "xy",
		"b":     "xy",
		"c":     "long enough",
		"d":     "long enough",
		"e.log": "long enough",
	})

	var out, errOut bytes.Buffer
	code := run([]string{"-q", root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assert.Equal(t, []string{
		filepath.Join(root, "c"),
		filepath.Join(root, "d"),
	}, readLines(t, filepath.Join(root, dupes.DuplicateListName)))

	// An explicit flag wins over the config file.
	code = run([]string{"-q", "--min-size", "0", root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Len(t, readLines(t, filepath.Join(root, dupes.DuplicateListName)), 4)
}

func TestRun_LogFile(t *testing.T) {
	isolateConfig(t)
	root := resolvedTempDir(t)
	writeTree(t, root, map[string]string{"a": "same", "b": "same"})
	logPath := filepath.Join(resolvedTempDir(t), "doopie.log")

	var out, errOut bytes.Buffer
	code := run([]string{"-q", "--log", logPath, root}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scan_id"`)
	assert.Contains(t, string(data), `"msg":"doopie.event"`)
}

func TestScanError(t *testing.T) {
	var exitErr *exitError

	err := scanError(fmt.Errorf("enumerate /x: %w", context.Canceled))
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.code)

	err = scanError(fmt.Errorf("wrap: %w", dupes.ErrRootUnreadable))
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.code)
	assert.True(t, errors.Is(err, dupes.ErrRootUnreadable))
}

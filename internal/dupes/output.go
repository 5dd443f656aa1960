package dupes

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DuplicateListName is the file name of the duplicate list.
const DuplicateListName = "duplicate_files.txt"

// DefaultOutputPath returns where the duplicate list goes: the scan root,
// or the current working directory when inCwd is set.
func DefaultOutputPath(root string, inCwd bool) (string, error) {
	if !inCwd {
		return filepath.Join(root, DuplicateListName), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	return filepath.Join(wd, DuplicateListName), nil
}

// WriteDuplicateList writes every duplicate file's absolute path, one per
// line, to path. Any prior content is replaced. The list is written to a
// temporary file in the same directory and renamed into place.
func WriteDuplicateList(path string, cls Classification) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		for _, e := range cls.DuplicateFiles() {
			if _, err := w.WriteString(e.Path + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// GroupsDocument is the grouped form of the duplicate list, keeping which
// files are copies of which.
type GroupsDocument struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	ScanID      string       `yaml:"scan_id"`
	Root        string       `yaml:"root"`
	Algorithm   string       `yaml:"algorithm"`
	Sets        []GroupEntry `yaml:"sets"`
}

// GroupEntry is one duplicate set in a GroupsDocument.
type GroupEntry struct {
	Digest      string   `yaml:"digest"`
	Paths       []string `yaml:"paths"`
	Size        int64    `yaml:"size"`
	Reclaimable int64    `yaml:"reclaimable"`
}

// NewGroupsDocument builds the grouped document for a finished scan.
func NewGroupsDocument(report ScanReport, cls Classification, now time.Time) GroupsDocument {
	doc := GroupsDocument{
		GeneratedAt: now.UTC(),
		ScanID:      report.ScanID,
		Root:        report.Root,
		Algorithm:   string(report.Algorithm),
		Sets:        make([]GroupEntry, 0, len(cls.Duplicates)),
	}
	for _, set := range cls.Duplicates {
		paths := make([]string, len(set.Entries))
		for i, e := range set.Entries {
			paths[i] = e.Path
		}
		doc.Sets = append(doc.Sets, GroupEntry{
			Digest:      set.Digest.String(),
			Size:        set.Size,
			Reclaimable: set.Reclaimable(),
			Paths:       paths,
		})
	}
	return doc
}

// WriteGroups writes doc as YAML to path, replacing any prior content.
func WriteGroups(path string, doc GroupsDocument) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	})
}

// ReadGroups loads a document written by WriteGroups.
func ReadGroups(path string) (GroupsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GroupsDocument{}, err
	}
	var doc GroupsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return GroupsDocument{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// tempPattern is the os.CreateTemp pattern for an artifact's staging file.
func tempPattern(path string) string {
	return "." + filepath.Base(path) + ".*.tmp"
}

// isStagingFile reports whether path looks like a staging file left for
// artifact by writeAtomic, for example after the process was killed
// before the rename.
func isStagingFile(artifact, path string) bool {
	if filepath.Dir(path) != filepath.Dir(artifact) {
		return false
	}
	name := filepath.Base(path)
	prefix := "." + filepath.Base(artifact) + "."
	return len(name) > len(prefix)+len(".tmp") &&
		strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".tmp")
}

func writeAtomic(path string, write func(*bufio.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPattern(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

package filter

import (
	"fmt"
	"regexp"
)

// Rule represents a single include or exclude glob rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain decides which entries of a scanned tree are considered at all.
// Glob rules are evaluated in order and the first match wins. Regex rules
// restrict files (never directories) to paths matching at least one
// expression. Size bounds apply to files only.
type Chain struct {
	rules   []Rule
	regexes []*regexp.Regexp
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given glob pattern.
func (c *Chain) AddExclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: false})
	return nil
}

// AddInclude adds an include rule for the given glob pattern.
func (c *Chain) AddInclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: true})
	return nil
}

// AddRegex restricts files to root-relative paths matching expr. Multiple
// expressions are OR-ed.
func (c *Chain) AddRegex(expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", expr, err)
	}
	c.regexes = append(c.regexes, re)
	return nil
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	return len(c.rules) == 0 && len(c.regexes) == 0 && c.minSize == 0 && c.maxSize == 0
}

// Match reports whether the entry should be scanned. relPath is slash
// separated and relative to the scan root. A false result for a directory
// prunes the whole subtree.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}
	return c.MatchPath(relPath, isDir)
}

// MatchPath is Match without the size bounds, for entries whose size is
// unknown or meaningless (vanished files, sockets, devices).
func (c *Chain) MatchPath(relPath string, isDir bool) bool {
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			if !rule.Include {
				return false
			}
			break
		}
	}

	if isDir || len(c.regexes) == 0 {
		return true
	}
	for _, re := range c.regexes {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

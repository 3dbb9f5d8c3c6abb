package assets

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/openmined/cdnsync/internal/utils"
	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName holds extra exclude rules, in gitignore syntax, at the asset root
const IgnoreFileName = ".cdnignore"

var defaultIgnoreLines = []string{
	IgnoreFileName,
	// VCS
	".git/",
	".svn/",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	// editors and temp files
	"*.swp",
	"*~",
	"*.tmp",
}

// Include narrows discovery to matching files. Empty lists match everything.
type Include struct {
	Directories []string `mapstructure:"directories" yaml:"directories,omitempty"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions,omitempty"`
	Patterns    []string `mapstructure:"patterns" yaml:"patterns,omitempty"`
}

// Exclude removes files from discovery. Patterns use gitignore syntax.
type Exclude struct {
	Directories []string `mapstructure:"directories" yaml:"directories,omitempty"`
	Files       []string `mapstructure:"files" yaml:"files,omitempty"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions,omitempty"`
	Patterns    []string `mapstructure:"patterns" yaml:"patterns,omitempty"`
	Hidden      *bool    `mapstructure:"hidden" yaml:"hidden,omitempty"`
}

type Rules struct {
	Include Include `mapstructure:"include" yaml:"include,omitempty"`
	Exclude Exclude `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

func (r Rules) Validate() error {
	for _, p := range r.Include.Patterns {
		if !doublestar.ValidatePattern(p) {
			return &PatternError{Pattern: p}
		}
	}
	return nil
}

type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid include pattern " + e.Pattern
}

// matcher is the compiled form of Rules
type matcher struct {
	includeDirs []string
	includeExts map[string]bool
	includeGlob []string

	excludeDirs  []string
	excludeFiles map[string]bool
	excludeExts  map[string]bool
	ignore       *gitignore.GitIgnore
	hidden       bool
}

func compile(r Rules, extraIgnore []string) *matcher {
	m := &matcher{
		includeDirs:  cleanDirs(r.Include.Directories),
		includeExts:  extSet(r.Include.Extensions),
		includeGlob:  r.Include.Patterns,
		excludeDirs:  cleanDirs(r.Exclude.Directories),
		excludeFiles: make(map[string]bool, len(r.Exclude.Files)),
		excludeExts:  extSet(r.Exclude.Extensions),
		hidden:       r.Exclude.Hidden == nil || *r.Exclude.Hidden,
	}
	for _, f := range r.Exclude.Files {
		m.excludeFiles[strings.Trim(path.Clean(strings.ReplaceAll(f, "\\", "/")), "/")] = true
	}

	lines := make([]string, 0, len(defaultIgnoreLines)+len(r.Exclude.Patterns)+len(extraIgnore))
	lines = append(lines, defaultIgnoreLines...)
	lines = append(lines, r.Exclude.Patterns...)
	lines = append(lines, extraIgnore...)
	m.ignore = gitignore.CompileIgnoreLines(lines...)

	return m
}

// skipDir reports whether a directory (slash-separated, relative) is pruned
func (m *matcher) skipDir(rel string) bool {
	if m.hidden && utils.IsHidden(rel) {
		return true
	}
	if hasDirPrefix(rel, m.excludeDirs) || matchesDirName(rel, m.excludeDirs) {
		return true
	}
	return m.ignore.MatchesPath(rel + "/")
}

// keepFile reports whether a regular file (slash-separated, relative) is an asset
func (m *matcher) keepFile(rel string) bool {
	if m.hidden && utils.IsHidden(rel) {
		return false
	}
	if len(m.includeDirs) > 0 && !hasDirPrefix(rel, m.includeDirs) {
		return false
	}

	ext := strings.ToLower(path.Ext(rel))
	if len(m.includeExts) > 0 && !m.includeExts[ext] {
		return false
	}
	if len(m.includeGlob) > 0 && !matchAny(m.includeGlob, rel) {
		return false
	}

	if m.excludeExts[ext] {
		return false
	}
	if m.excludeFiles[rel] || m.excludeFiles[path.Base(rel)] {
		return false
	}
	if hasDirPrefix(rel, m.excludeDirs) {
		return false
	}
	return !m.ignore.MatchesPath(rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// hasDirPrefix reports whether rel is inside any of dirs
func hasDirPrefix(rel string, dirs []string) bool {
	for _, d := range dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

// matchesDirName matches single-segment entries against the last path segment,
// so "node_modules" prunes it at any depth
func matchesDirName(rel string, dirs []string) bool {
	base := path.Base(rel)
	for _, d := range dirs {
		if !strings.Contains(d, "/") && d == base {
			return true
		}
	}
	return false
}

func cleanDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(path.Clean(strings.ReplaceAll(d, "\\", "/")), "/")
		if d != "" && d != "." {
			out = append(out, d)
		}
	}
	return out
}

func extSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

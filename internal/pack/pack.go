// Package pack copies build outputs into the install layout according to
// an ordered list of packaging rules.
package pack

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/goplus/recipe/internal/fsutil"
	"github.com/goplus/recipe/recipe"
)

// Engine applies packaging rules.
type Engine struct {
	logger *log.Logger
}

// New returns an Engine logging to logger; nil discards the log.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger}
}

// Apply runs New(nil).Apply.
func Apply(rules []recipe.PackagingRule, artifacts *recipe.ArtifactSet, installRoot string) ([]string, error) {
	return New(nil).Apply(rules, artifacts, installRoot)
}

// Apply evaluates rules in order against artifacts and copies every match
// under installRoot. Within a rule, matches are copied in lexicographic
// order of their path below the rule's source root. A later copy to the
// same destination overwrites an earlier one, so the last rule and the last
// match win.
//
// A rule matching nothing is not an error and creates nothing. A missing
// source root or a failed copy yields a *recipe.PackagingIOError.
//
// Apply returns the installed files, relative to installRoot, sorted.
func (e *Engine) Apply(rules []recipe.PackagingRule, artifacts *recipe.ArtifactSet, installRoot string) ([]string, error) {
	installed := make(map[string]bool)
	for _, rule := range rules {
		srcRoot := filepath.Join(artifacts.Root, filepath.FromSlash(rule.Src))
		matches, err := match(srcRoot, rule.Pattern)
		if err != nil {
			var ioErr *recipe.PackagingIOError
			if errors.As(err, &ioErr) {
				return nil, err
			}
			return nil, &recipe.PackagingIOError{Path: srcRoot, Err: err}
		}
		if len(matches) == 0 {
			e.logger.Debug("rule matched nothing", "rule", rule.String())
			continue
		}

		dstRoot := filepath.Join(installRoot, filepath.FromSlash(rule.Dst))
		for _, m := range matches {
			rel := m
			if rule.Flatten {
				rel = path.Base(m)
			}
			dst := filepath.Join(dstRoot, filepath.FromSlash(rel))
			if err := fsutil.CopyFile(filepath.Join(srcRoot, filepath.FromSlash(m)), dst); err != nil {
				return nil, &recipe.PackagingIOError{Path: dst, Err: err}
			}
			if out, err := filepath.Rel(installRoot, dst); err == nil {
				installed[filepath.ToSlash(out)] = true
			}
		}
		e.logger.Debug("rule applied", "rule", rule.String(), "files", len(matches))
	}

	files := make([]string, 0, len(installed))
	for f := range installed {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

// match returns the regular files under root matching pattern, as sorted
// slash-separated paths relative to root. A wildcard pattern without "/" is
// matched against the file name at any depth; a literal name or a pattern
// with "/" against the relative path, with "**" spanning directories.
func match(root, pattern string) ([]string, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &recipe.PackagingIOError{Path: root, Err: errors.New("source root is not a directory")}
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	byName := !strings.Contains(pattern, "/") && strings.ContainsAny(pattern, "*?[{")
	var matches []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isFile(p, d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		subject := rel
		if byName {
			subject = path.Base(rel)
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	return matches, nil
}

// isFile reports whether the entry is a regular file or a symlink to one.
func isFile(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Package vcs fetches the source tree of a package version from a git
// remote.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Source pins a source tree: a ref of a remote and, once known, the commit
// it points to.
type Source struct {
	Remote string
	Ref    string // tag, branch or "HEAD"
	Commit string
}

func (s Source) String() string {
	if s.Commit == "" {
		return s.Remote + "@" + s.Ref
	}
	return fmt.Sprintf("%s@%s (%s)", s.Remote, s.Ref, shortHash(s.Commit))
}

// Git fetches sources with the git command.
type Git struct {
	path   string
	logger *log.Logger
}

// Option configures Git.
type Option func(*Git)

// WithGitPath sets the git executable.
func WithGitPath(path string) Option {
	return func(g *Git) { g.path = path }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Git) { g.logger = l }
}

// New returns a Git running "git" from PATH.
func New(opts ...Option) *Git {
	g := &Git{path: "git"}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	return g
}

// Refs lists HEAD and the tags of remote, by name ("HEAD", "v2.5.0"), with
// the commit each one points to. Annotated tags map to their commit, not
// to the tag object.
func (g *Git) Refs(ctx context.Context, remote string) (map[string]string, error) {
	out, err := g.output(ctx, "", "ls-remote", remote, "HEAD", "refs/tags/*")
	if err != nil {
		return nil, fmt.Errorf("list refs of %s: %w", remote, err)
	}
	refs := make(map[string]string)
	peeled := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		hash, name, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		name = strings.TrimPrefix(name, "refs/tags/")
		if tag, ok := strings.CutSuffix(name, "^{}"); ok {
			refs[tag] = hash
			peeled[tag] = true
			continue
		}
		if !peeled[name] {
			refs[name] = hash
		}
	}
	return refs, nil
}

// Resolve picks the source of version in remote: the tag "v<version>" or
// "<version>" when one exists, HEAD otherwise.
func (g *Git) Resolve(ctx context.Context, remote, version string) (Source, error) {
	refs, err := g.Refs(ctx, remote)
	if err != nil {
		return Source{}, err
	}
	for _, tag := range []string{"v" + version, version} {
		if commit, ok := refs[tag]; ok {
			return Source{Remote: remote, Ref: tag, Commit: commit}, nil
		}
	}
	commit, ok := refs["HEAD"]
	if !ok {
		return Source{}, fmt.Errorf("no tag of %s and no HEAD in %s", version, remote)
	}
	g.logger.Warn("no tag for version, using HEAD", "remote", remote, "version", version)
	return Source{Remote: remote, Ref: "HEAD", Commit: commit}, nil
}

// Fetch checks src out into dir with a shallow fetch of its ref and
// returns src with the commit checked out. dir is created when missing. A
// checkout already at src.Commit is left untouched.
func (g *Git) Fetch(ctx context.Context, src Source, dir string) (Source, error) {
	if src.Commit != "" && g.head(ctx, dir) == src.Commit {
		g.logger.Debug("source up to date", "dir", dir, "commit", shortHash(src.Commit))
		return src, nil
	}
	if err := g.init(ctx, dir); err != nil {
		return src, err
	}
	if err := g.run(ctx, dir, "fetch", "--quiet", "--depth", "1", src.Remote, src.Ref); err != nil {
		return src, fmt.Errorf("fetch %s: %w", src, err)
	}
	if err := g.run(ctx, dir, "checkout", "--quiet", "--force", "--detach", "FETCH_HEAD"); err != nil {
		return src, fmt.Errorf("checkout %s: %w", src, err)
	}
	commit := g.head(ctx, dir)
	if commit == "" {
		return src, fmt.Errorf("checkout %s: no commit in %s", src, dir)
	}
	if src.Commit != "" && commit != src.Commit {
		return src, fmt.Errorf("%s moved to %s while fetching", src, shortHash(commit))
	}
	src.Commit = commit
	g.logger.Debug("source fetched", "source", src.String(), "dir", dir)
	return src, nil
}

func (g *Git) init(ctx context.Context, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return g.run(ctx, dir, "init", "--quiet")
}

// head returns the commit checked out in dir, "" if there is none.
func (g *Git) head(ctx context.Context, dir string) string {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return ""
	}
	out, err := g.output(ctx, dir, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (g *Git) run(ctx context.Context, dir string, args ...string) error {
	_, err := g.output(ctx, dir, args...)
	return err
}

func (g *Git) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.path, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.New(msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

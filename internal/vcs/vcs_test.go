package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	args = append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// newRemote creates a repository with two tagged commits and returns its
// path and the commit hash of each tag.
func newRemote(t *testing.T) (string, map[string]string) {
	t.Helper()
	dir := t.TempDir()
	git(t, dir, "init", "--quiet")

	commits := make(map[string]string)
	for _, tag := range []string{"v2.4.0", "v2.5.0"} {
		if err := os.WriteFile(filepath.Join(dir, "VERSION"), []byte(tag), 0o644); err != nil {
			t.Fatal(err)
		}
		git(t, dir, "add", "VERSION")
		git(t, dir, "commit", "--quiet", "-m", tag)
		git(t, dir, "tag", tag)
		commits[tag] = git(t, dir, "rev-parse", "HEAD")
	}
	return dir, commits
}

func TestRefs(t *testing.T) {
	requireGit(t)
	remote, commits := newRemote(t)
	git(t, remote, "tag", "-a", "-m", "annotated", "v2.5.0-annotated", commits["v2.4.0"])

	refs, err := New().Refs(context.Background(), remote)
	if err != nil {
		t.Fatalf("Refs: %v", err)
	}
	want := map[string]string{
		"HEAD":             commits["v2.5.0"],
		"v2.4.0":           commits["v2.4.0"],
		"v2.5.0":           commits["v2.5.0"],
		"v2.5.0-annotated": commits["v2.4.0"],
	}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("Refs = %v, want %v", refs, want)
	}
}

func TestResolve(t *testing.T) {
	requireGit(t)
	remote, commits := newRemote(t)
	g := New()
	ctx := context.Background()

	src, err := g.Resolve(ctx, remote, "2.4.0")
	if err != nil {
		t.Fatalf("Resolve(2.4.0): %v", err)
	}
	if src.Ref != "v2.4.0" || src.Commit != commits["v2.4.0"] {
		t.Errorf("Resolve(2.4.0) = %+v", src)
	}

	src, err = g.Resolve(ctx, remote, "3.0.0")
	if err != nil {
		t.Fatalf("Resolve(3.0.0): %v", err)
	}
	if src.Ref != "HEAD" || src.Commit != commits["v2.5.0"] {
		t.Errorf("Resolve(3.0.0) = %+v, want HEAD at %s", src, commits["v2.5.0"])
	}
}

func TestFetch(t *testing.T) {
	requireGit(t)
	remote, commits := newRemote(t)
	g := New()
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "sources", "clickhouse-cpp@2.4.0")
	src, err := g.Fetch(ctx, Source{Remote: remote, Ref: "v2.4.0"}, dir)
	if err != nil {
		t.Fatalf("Fetch (clone): %v", err)
	}
	if src.Commit != commits["v2.4.0"] {
		t.Errorf("Commit = %s, want %s", src.Commit, commits["v2.4.0"])
	}
	if got := git(t, dir, "rev-parse", "HEAD"); got != commits["v2.4.0"] {
		t.Errorf("HEAD = %s, want %s", got, commits["v2.4.0"])
	}

	src, err = g.Fetch(ctx, Source{Remote: remote, Ref: "v2.5.0"}, dir)
	if err != nil {
		t.Fatalf("Fetch (update): %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "VERSION"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v2.5.0" {
		t.Errorf("VERSION = %q after update, want v2.5.0", data)
	}

	// A checkout at the wanted commit needs no remote.
	if err := os.RemoveAll(remote); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Fetch(ctx, src, dir); err != nil {
		t.Errorf("Fetch of an up to date checkout: %v", err)
	}
}

func TestFetchBadRef(t *testing.T) {
	requireGit(t)
	remote, _ := newRemote(t)

	_, err := New().Fetch(context.Background(), Source{Remote: remote, Ref: "v9.9.9"}, filepath.Join(t.TempDir(), "x"))
	if err == nil {
		t.Fatal("Fetch of an unknown ref succeeded")
	}
}

func TestFetchMovedRef(t *testing.T) {
	requireGit(t)
	remote, commits := newRemote(t)

	src := Source{Remote: remote, Ref: "v2.5.0", Commit: commits["v2.4.0"]}
	if _, err := New().Fetch(context.Background(), src, filepath.Join(t.TempDir(), "x")); err == nil || !strings.Contains(err.Error(), "moved") {
		t.Errorf("Fetch of a moved ref: err = %v", err)
	}
}

func TestSourceString(t *testing.T) {
	src := Source{Remote: "https://github.com/ClickHouse/clickhouse-cpp", Ref: "v2.5.0"}
	if got := src.String(); got != "https://github.com/ClickHouse/clickhouse-cpp@v2.5.0" {
		t.Errorf("String = %q", got)
	}
	src.Commit = "0123456789abcdef0123"
	if got := src.String(); !strings.HasSuffix(got, "(0123456789ab)") {
		t.Errorf("String = %q", got)
	}
}

func TestWithGitPath(t *testing.T) {
	g := New(WithGitPath("/nonexistent/git"))
	if _, err := g.Refs(context.Background(), "."); err == nil {
		t.Fatal("Refs with a missing git binary succeeded")
	}
}

package gitx

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	return f.out, f.err
}

func TestExtractModifiedUsesCachedForStaged(t *testing.T) {
	fr := &fakeRunner{out: "-old\n+new\n"}
	e := &DiffExtractor{Runner: fr, Dir: "."}

	p := e.Extract(context.Background(), FileChange{Path: "a.txt", StagedKind: KindModified, Staged: true})
	if p.Failed() || p.Binary() {
		t.Fatalf("Expected textual payload, got %+v", p)
	}
	if len(fr.calls) != 1 {
		t.Fatalf("Expected 1 git call, got %d", len(fr.calls))
	}
	joined := strings.Join(fr.calls[0], " ")
	if !strings.Contains(joined, "--cached") {
		t.Errorf("Expected --cached for staged diff, got %q", joined)
	}

	fr.calls = nil
	e.Extract(context.Background(), FileChange{Path: "a.txt", WorktreeKind: KindModified})
	if strings.Contains(strings.Join(fr.calls[0], " "), "--cached") {
		t.Errorf("Expected no --cached for worktree diff")
	}
}

func TestExtractRenamePassesOldPath(t *testing.T) {
	fr := &fakeRunner{out: "diff --git old.txt new.txt\n"}
	e := &DiffExtractor{Runner: fr, Dir: "."}

	e.Extract(context.Background(), FileChange{
		Path: "new.txt", RenamedFrom: "old.txt", StagedKind: KindRenamed, Staged: true,
	})
	joined := strings.Join(fr.calls[0], " ")
	if !strings.Contains(joined, "old.txt") || !strings.Contains(joined, "new.txt") {
		t.Errorf("Expected both rename paths in args, got %q", joined)
	}
}

func TestExtractBinaryMarker(t *testing.T) {
	fr := &fakeRunner{out: "diff --git img.png img.png\nBinary files img.png and img.png differ\n"}
	e := &DiffExtractor{Runner: fr, Dir: "."}

	p := e.Extract(context.Background(), FileChange{Path: "img.png", WorktreeKind: KindModified})
	if !p.Binary() {
		t.Errorf("Expected binary payload for binary diff marker")
	}

	fr.out = "diff --git img.png img.png\nGIT binary patch\nliteral 99\n"
	p = e.Extract(context.Background(), FileChange{Path: "img.png", WorktreeKind: KindModified})
	if !p.Binary() {
		t.Errorf("Expected binary payload for GIT binary patch marker")
	}
}

func TestExtractRunnerFailureYieldsErrorSentinel(t *testing.T) {
	fr := &fakeRunner{err: errors.New("boom")}
	e := &DiffExtractor{Runner: fr, Dir: "."}

	p := e.Extract(context.Background(), FileChange{Path: "a.txt", WorktreeKind: KindModified})
	if !p.Failed() {
		t.Errorf("Expected error-sentinel payload, got %+v", p)
	}
}

func TestExtractDeletedUsesSentinelText(t *testing.T) {
	fr := &fakeRunner{}
	e := &DiffExtractor{Runner: fr, Dir: "."}

	p := e.Extract(context.Background(), FileChange{Path: "gone.txt", StagedKind: KindDeleted, Staged: true})
	if p.Text != deletedDiffText {
		t.Errorf("Expected deleted sentinel text, got %q", p.Text)
	}
	if len(fr.calls) != 0 {
		t.Errorf("Expected no git call for deleted file, got %d", len(fr.calls))
	}
}

func TestExtractTruncationKeepsLeadingPortion(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, "+line number with some content")
	}
	fr := &fakeRunner{out: strings.Join(lines, "\n")}
	e := &DiffExtractor{Runner: fr, Dir: ".", MaxBytes: 200}

	p := e.Extract(context.Background(), FileChange{Path: "big.txt", WorktreeKind: KindModified})
	if !p.Truncated {
		t.Fatalf("Expected truncated payload")
	}
	if len(p.Text) > 200 {
		t.Errorf("Expected at most 200 bytes, got %d", len(p.Text))
	}
	if !strings.HasPrefix(fr.out, p.Text) {
		t.Errorf("Expected leading portion of the diff to be kept")
	}
	if strings.HasSuffix(p.Text, "\n") {
		t.Errorf("Expected truncation to cut at a line boundary without trailing newline")
	}
}

func TestExtractUntrackedRendersAdditions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fresh.txt"), []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := &DiffExtractor{Runner: &fakeRunner{}, Dir: dir}

	p := e.Extract(context.Background(), FileChange{Path: "fresh.txt", WorktreeKind: KindUntracked})
	if p.Text != "+one\n+two" {
		t.Errorf("Expected addition lines, got %q", p.Text)
	}
}

func TestExtractUntrackedBinaryFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{0x00, 0x9f, 0x92, 0x96}, 0o644); err != nil {
		t.Fatal(err)
	}
	e := &DiffExtractor{Runner: &fakeRunner{}, Dir: dir}

	p := e.Extract(context.Background(), FileChange{Path: "blob.bin", WorktreeKind: KindUntracked})
	if !p.Binary() {
		t.Errorf("Expected binary payload for file with NUL bytes")
	}
}

func TestExtractUntrackedMissingFile(t *testing.T) {
	e := &DiffExtractor{Runner: &fakeRunner{}, Dir: t.TempDir()}

	p := e.Extract(context.Background(), FileChange{Path: "nope.txt", WorktreeKind: KindUntracked})
	if !p.Failed() {
		t.Errorf("Expected error-sentinel payload for unreadable file")
	}
}

// Integration coverage against a real repository.

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, string(out))
		}
	}
	run("init")
	run("config", "user.email", "you@example.com")
	run("config", "user.name", "Your Name")
	return dir
}

func TestStatusAndDiffAgainstRealRepo(t *testing.T) {
	requireGit(t)
	dir := setupTestRepo(t)
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, string(out))
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "a.txt")
	run("commit", "-m", "init")

	// unstaged modification plus a staged new file
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("new\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "b.txt")

	ctx := context.Background()
	runner := NewExecRunner("")
	doc, err := Status(ctx, runner, dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	byPath := map[string]FileChange{}
	for _, c := range doc.Changes {
		byPath[c.Path] = c
	}
	a, ok := byPath["a.txt"]
	if !ok || a.Kind() != KindModified || a.Staged {
		t.Fatalf("Expected unstaged modification of a.txt, got %+v", a)
	}
	b, ok := byPath["b.txt"]
	if !ok || b.Kind() != KindAdded || !b.Staged {
		t.Fatalf("Expected staged addition of b.txt, got %+v", b)
	}

	e := &DiffExtractor{Runner: runner, Dir: dir}
	p := e.Extract(ctx, a)
	if !strings.Contains(p.Text, "+two") {
		t.Errorf("Expected worktree diff to contain +two, got %q", p.Text)
	}
	p = e.Extract(ctx, b)
	if !strings.Contains(p.Text, "+new") {
		t.Errorf("Expected staged diff to contain +new, got %q", p.Text)
	}
}

func TestStatusQuotedPathAgainstRealRepo(t *testing.T) {
	requireGit(t)
	dir := setupTestRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "file with spaces.txt"), []byte("content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Status(context.Background(), NewExecRunner(""), dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(doc.Changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(doc.Changes))
	}
	if doc.Changes[0].Path != "file with spaces.txt" {
		t.Errorf("Expected unquoted path, got %q", doc.Changes[0].Path)
	}
}

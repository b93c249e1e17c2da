package gitx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Sentinel texts standing in for diff content that cannot be summarized.
// Downstream treats the error sentinel the same as a summarization failure.
const (
	binarySentinel = "\x00binary\x00"
	errorSentinel  = "\x00error\x00"

	deletedDiffText = "This file was deleted."
)

// DiffPayload is the unit of work sent to the summarizer: one file's diff
// text, or a sentinel when no textual diff exists.
type DiffPayload struct {
	Path      string
	Text      string
	Truncated bool
}

// Binary reports whether the payload stands for a binary file change.
func (p DiffPayload) Binary() bool { return p.Text == binarySentinel }

// Failed reports whether diff extraction failed for this payload.
func (p DiffPayload) Failed() bool { return p.Text == errorSentinel }

// BinaryPayload returns the payload used for non-textual diffs.
func BinaryPayload(path string) DiffPayload {
	return DiffPayload{Path: path, Text: binarySentinel}
}

// ErrorPayload returns the payload used when the diff could not be obtained.
func ErrorPayload(path string) DiffPayload {
	return DiffPayload{Path: path, Text: errorSentinel}
}

// DiffExtractor obtains per-file diffs from the VCS collaborator. Process
// failures surface as error-sentinel payloads, never as returned errors, so
// one broken file degrades only its own annotation.
type DiffExtractor struct {
	Runner   Runner
	Dir      string
	MaxBytes int
}

// Extract returns the diff payload for one changed file.
func (e *DiffExtractor) Extract(ctx context.Context, c FileChange) DiffPayload {
	switch c.Kind() {
	case KindUntracked:
		return e.untrackedPayload(c)
	case KindDeleted:
		return e.finish(c.Path, deletedDiffText)
	default:
		return e.diffPayload(ctx, c)
	}
}

func (e *DiffExtractor) diffPayload(ctx context.Context, c FileChange) DiffPayload {
	args := []string{"diff", "--no-color", "--no-prefix"}
	if c.Staged {
		args = append(args, "--cached", "--find-renames")
	}
	args = append(args, "--")
	if c.RenamedFrom != "" {
		args = append(args, c.RenamedFrom)
	}
	args = append(args, c.Path)

	out, err := e.Runner.Run(ctx, e.Dir, args...)
	if err != nil {
		return ErrorPayload(c.Path)
	}
	if isBinaryDiff(out) {
		return BinaryPayload(c.Path)
	}
	return e.finish(c.Path, out)
}

// untrackedPayload renders a file git has never seen as pure additions, the
// same shape the summarizer gets for added files.
func (e *DiffExtractor) untrackedPayload(c FileChange) DiffPayload {
	content, err := os.ReadFile(filepath.Join(e.Dir, filepath.FromSlash(c.Path)))
	if err != nil {
		return ErrorPayload(c.Path)
	}
	if len(content) == 0 {
		return e.finish(c.Path, "")
	}
	if looksBinary(content) {
		return BinaryPayload(c.Path)
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	return e.finish(c.Path, "+"+strings.Join(lines, "\n+"))
}

// finish applies the size bound, keeping the leading portion of the diff.
func (e *DiffExtractor) finish(path, text string) DiffPayload {
	p := DiffPayload{Path: path, Text: text}
	if e.MaxBytes > 0 && len(text) > e.MaxBytes {
		cut := text[:e.MaxBytes]
		if i := strings.LastIndexByte(cut, '\n'); i > 0 {
			cut = cut[:i]
		}
		p.Text = cut
		p.Truncated = true
	}
	return p
}

// isBinaryDiff recognizes git's binary markers in diff output.
func isBinaryDiff(diff string) bool {
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ") {
			return true
		}
		if line == "GIT binary patch" {
			return true
		}
	}
	return false
}

// looksBinary applies the content heuristic used for untracked files: a NUL
// byte or invalid UTF-8 means no line diff is possible.
func looksBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	for _, b := range content {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(content)
}

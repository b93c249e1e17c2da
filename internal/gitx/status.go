package gitx

import (
	"context"
	"fmt"
	"strings"
)

// ChangeKind classifies one column of a porcelain status code pair.
type ChangeKind int

const (
	KindNone ChangeKind = iota
	KindModified
	KindAdded
	KindDeleted
	KindRenamed
	KindCopied
	KindUntracked
	KindUnmerged
)

func (k ChangeKind) String() string {
	switch k {
	case KindModified:
		return "modified"
	case KindAdded:
		return "added"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindCopied:
		return "copied"
	case KindUntracked:
		return "untracked"
	case KindUnmerged:
		return "unmerged"
	default:
		return "none"
	}
}

// FileChange is one changed path from the status listing. Porcelain reports
// the staged and worktree columns independently; both kinds are kept, and
// Kind() prefers the staged one for the primary annotation.
type FileChange struct {
	Path         string
	StagedKind   ChangeKind
	WorktreeKind ChangeKind
	RenamedFrom  string
	Staged       bool
}

// Kind returns the change kind used for the primary annotation: the staged
// column when it carries a change, otherwise the worktree column.
func (c FileChange) Kind() ChangeKind {
	if c.StagedKind != KindNone {
		return c.StagedKind
	}
	return c.WorktreeKind
}

// Line is one line of the original status text. Entry is the index into the
// parsed change list, or -1 for passthrough lines (branch headers, blanks,
// anything the grammar does not recognize).
type Line struct {
	Raw   string
	Entry int
}

// StatusDoc is the parsed status listing: the original lines in order plus
// the ordered change list they reference.
type StatusDoc struct {
	Lines   []Line
	Changes []FileChange
}

// Status runs the VCS status command and parses its output.
func Status(ctx context.Context, r Runner, dir string) (*StatusDoc, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain=v1", "--branch")
	if err != nil {
		return nil, fmt.Errorf("status listing: %w", err)
	}
	return ParseStatus(out), nil
}

// ParseStatus turns raw porcelain v1 status text into a StatusDoc. Parsing is
// best effort: a line that does not match the status grammar becomes a
// passthrough line, never an error. Joining the raw lines back with newlines
// reproduces the input byte-for-byte.
func ParseStatus(raw string) *StatusDoc {
	doc := &StatusDoc{}
	for _, line := range strings.Split(raw, "\n") {
		change, ok := parseStatusLine(line)
		if !ok {
			doc.Lines = append(doc.Lines, Line{Raw: line, Entry: -1})
			continue
		}
		doc.Lines = append(doc.Lines, Line{Raw: line, Entry: len(doc.Changes)})
		doc.Changes = append(doc.Changes, change)
	}
	return doc
}

// parseStatusLine parses one `XY path` or `XY old -> new` line.
func parseStatusLine(line string) (FileChange, bool) {
	if len(line) < 4 || line[2] != ' ' {
		return FileChange{}, false
	}
	x, y := line[0], line[1]
	field := line[3:]

	// Untracked and ignored use doubled markers. Ignored entries carry no
	// diff to summarize, so they pass through untouched.
	if x == '?' && y == '?' {
		path, rest, perr := parsePathToken(field)
		if perr != nil || rest != "" || path == "" {
			return FileChange{}, false
		}
		return FileChange{Path: path, WorktreeKind: KindUntracked}, true
	}
	if x == '!' && y == '!' {
		return FileChange{}, false
	}

	stagedKind, ok := columnKind(x)
	if !ok {
		return FileChange{}, false
	}
	worktreeKind, ok := columnKind(y)
	if !ok {
		return FileChange{}, false
	}
	if stagedKind == KindNone && worktreeKind == KindNone {
		return FileChange{}, false
	}
	if isUnmergedPair(x, y) {
		stagedKind, worktreeKind = KindUnmerged, KindUnmerged
	}

	change := FileChange{
		StagedKind:   stagedKind,
		WorktreeKind: worktreeKind,
		Staged:       stagedKind != KindNone,
	}

	if stagedKind == KindRenamed || stagedKind == KindCopied ||
		worktreeKind == KindRenamed || worktreeKind == KindCopied {
		old, new, perr := parseRenameField(field)
		if perr != nil {
			return FileChange{}, false
		}
		change.Path = new
		change.RenamedFrom = old
		return change, true
	}

	path, rest, perr := parsePathToken(field)
	if perr != nil || rest != "" || path == "" {
		return FileChange{}, false
	}
	change.Path = path
	return change, true
}

func columnKind(c byte) (ChangeKind, bool) {
	switch c {
	case ' ', '.':
		return KindNone, true
	case 'M', 'T':
		return KindModified, true
	case 'A':
		return KindAdded, true
	case 'D':
		return KindDeleted, true
	case 'R':
		return KindRenamed, true
	case 'C':
		return KindCopied, true
	case 'U':
		return KindUnmerged, true
	default:
		return KindNone, false
	}
}

// isUnmergedPair reports whether the code pair denotes a merge conflict
// (any U, or the doubled add/delete forms).
func isUnmergedPair(x, y byte) bool {
	if x == 'U' || y == 'U' {
		return true
	}
	return (x == 'A' && y == 'A') || (x == 'D' && y == 'D')
}

// parseRenameField splits an `old -> new` field into both paths, where either
// side may be quoted.
func parseRenameField(field string) (old, new string, err error) {
	old, rest, err := parsePathToken(field)
	if err != nil {
		return "", "", err
	}
	const arrow = " -> "
	if !strings.HasPrefix(rest, arrow) {
		return "", "", fmt.Errorf("missing rename arrow in %q", field)
	}
	new, rest, err = parsePathToken(rest[len(arrow):])
	if err != nil {
		return "", "", err
	}
	if rest != "" || old == "" || new == "" {
		return "", "", fmt.Errorf("malformed rename field %q", field)
	}
	return old, new, nil
}

// parsePathToken consumes one path from the front of field: either a C-quoted
// string, or everything up to a rename arrow or end of field.
func parsePathToken(field string) (path, rest string, err error) {
	if strings.HasPrefix(field, `"`) {
		end := closingQuote(field)
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quote in %q", field)
		}
		path, err = UnquotePath(field[:end+1])
		if err != nil {
			return "", "", err
		}
		return path, field[end+1:], nil
	}
	if i := strings.Index(field, " -> "); i >= 0 {
		return field[:i], field[i:], nil
	}
	return field, "", nil
}

// closingQuote finds the index of the unescaped closing quote, or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// UnquotePath decodes a git C-style quoted path (surrounding double quotes,
// backslash escapes, octal byte escapes) to the literal path. Unquoted input
// is returned unchanged.
func UnquotePath(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("unterminated quoted path %q", s)
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash in quoted path %q", s)
		}
		switch e := body[i]; e {
		case '"', '\\':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := int(e - '0')
			for d := 1; d < 3 && i+1 < len(body); d++ {
				next := body[i+1]
				if next < '0' || next > '7' {
					break
				}
				n = n*8 + int(next-'0')
				i++
			}
			if n > 0xff {
				return "", fmt.Errorf("octal escape out of range in %q", s)
			}
			b.WriteByte(byte(n))
		default:
			return "", fmt.Errorf("unknown escape \\%c in quoted path %q", e, s)
		}
	}
	return b.String(), nil
}

// QuotePath re-encodes a literal path the way git quotes it: paths containing
// spaces, quotes, backslashes, control bytes, or non-ASCII bytes are wrapped
// in double quotes with backslash and octal escapes. Plain paths come back
// unchanged, so Unquote followed by Quote round-trips.
func QuotePath(path string) string {
	if !needsQuote(path) {
		return path
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuote(path string) bool {
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == ' ' || c == '"' || c == '\\' || c < 0x20 || c >= 0x7f {
			return true
		}
	}
	return false
}

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/howinator/git-hud/internal/gitx"
	"github.com/howinator/git-hud/internal/summarize"
)

// FallbackAnnotation marks status lines whose summary could not be produced.
const FallbackAnnotation = "summary unavailable"

// Annotate re-emits the original status text with per-file summaries appended
// in parentheses after each recognized line. Passthrough lines (branch
// headers, blanks, unparsed lines) come out byte-for-byte verbatim; with a
// nil summary list the whole document is reproduced unchanged.
func Annotate(doc *gitx.StatusDoc, sums []summarize.FileSummary) string {
	var b strings.Builder
	for i, line := range doc.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Raw)
		if sums == nil || line.Entry < 0 || line.Entry >= len(sums) {
			continue
		}
		b.WriteString(annotation(sums[line.Entry]))
	}
	return b.String()
}

func annotation(s summarize.FileSummary) string {
	switch s.Outcome {
	case summarize.OutcomeOK:
		return " (" + s.Text + ")"
	case summarize.OutcomeSkippedBinary:
		return " (" + summarize.BinaryChangedText + ")"
	default:
		return " (" + FallbackAnnotation + ")"
	}
}

// Long reconstructs the familiar human `git status` layout with summaries
// inline: branch header, staged / unstaged / untracked sections with their
// hint lines, green staged and red unstaged coloring.
func Long(doc *gitx.StatusDoc, sums []summarize.FileSummary, color bool) string {
	r := newLongRenderer(color)
	var b strings.Builder

	r.writeBranchHeader(&b, doc)

	var hasStaged, hasUnstaged, hasUntracked bool
	for _, c := range doc.Changes {
		switch {
		case c.Kind() == gitx.KindUntracked:
			hasUntracked = true
		default:
			if c.Staged {
				hasStaged = true
			}
			if c.WorktreeKind != gitx.KindNone && c.WorktreeKind != gitx.KindUntracked {
				hasUnstaged = true
			}
		}
	}

	if hasStaged {
		b.WriteString("Changes to be committed:\n")
		b.WriteString("  (use \"git restore --staged <file>...\" to unstage)\n")
		for i, c := range doc.Changes {
			if !c.Staged || c.Kind() == gitx.KindUntracked {
				continue
			}
			r.writeEntry(&b, r.green, c.StagedKind, c, summaryFor(sums, i))
		}
		b.WriteByte('\n')
	}

	if hasUnstaged {
		b.WriteString("Changes not staged for commit:\n")
		b.WriteString("  (use \"git add <file>...\" to update what will be committed)\n")
		b.WriteString("  (use \"git restore <file>...\" to discard changes in working directory)\n")
		for i, c := range doc.Changes {
			if c.WorktreeKind == gitx.KindNone || c.WorktreeKind == gitx.KindUntracked {
				continue
			}
			r.writeEntry(&b, r.red, c.WorktreeKind, c, summaryFor(sums, i))
		}
		b.WriteByte('\n')
	}

	if hasUntracked {
		b.WriteString("Untracked files:\n")
		b.WriteString("  (use \"git add <file>...\" to include in what will be committed)\n")
		for i, c := range doc.Changes {
			if c.Kind() != gitx.KindUntracked {
				continue
			}
			fmt.Fprintf(&b, "\t%s\n", r.red.Render(gitx.QuotePath(c.Path)))
			if s := summaryFor(sums, i); s != nil && s.Outcome == summarize.OutcomeOK {
				fmt.Fprintf(&b, "\t  (%s)\n", s.Text)
			}
		}
		b.WriteByte('\n')
	}

	if !hasStaged && hasUnstaged {
		b.WriteString("no changes added to commit (use \"git add\" and/or \"git commit -a\")\n")
	}

	return b.String()
}

type longRenderer struct {
	green lipgloss.Style
	red   lipgloss.Style
}

func newLongRenderer(color bool) longRenderer {
	if !color {
		return longRenderer{green: lipgloss.NewStyle(), red: lipgloss.NewStyle()}
	}
	return longRenderer{
		green: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		red:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// writeBranchHeader turns the porcelain `## ...` line back into the long-form
// branch greeting.
func (r longRenderer) writeBranchHeader(b *strings.Builder, doc *gitx.StatusDoc) {
	for _, line := range doc.Lines {
		if !strings.HasPrefix(line.Raw, "## ") {
			continue
		}
		head := strings.TrimPrefix(line.Raw, "## ")
		var bracket string
		if i := strings.Index(head, " ["); i >= 0 {
			bracket = strings.TrimSuffix(head[i+2:], "]")
			head = head[:i]
		}
		branch := head
		if i := strings.Index(head, "..."); i >= 0 {
			branch = head[:i]
		}
		fmt.Fprintf(b, "On branch %s\n", branch)
		if bracket != "" {
			fmt.Fprintf(b, "Your branch is %s\n", bracket)
		}
		b.WriteByte('\n')
		return
	}
}

func (r longRenderer) writeEntry(b *strings.Builder, style lipgloss.Style, kind gitx.ChangeKind, c gitx.FileChange, s *summarize.FileSummary) {
	label := longLabel(kind)
	if c.RenamedFrom != "" {
		fmt.Fprintf(b, "\t%s %s -> %s", style.Render(label+":"), gitx.QuotePath(c.RenamedFrom), gitx.QuotePath(c.Path))
	} else {
		fmt.Fprintf(b, "\t%s %s", style.Render(label+":"), gitx.QuotePath(c.Path))
	}
	if s != nil {
		b.WriteString(annotation(*s))
	}
	b.WriteByte('\n')
}

func summaryFor(sums []summarize.FileSummary, i int) *summarize.FileSummary {
	if i < 0 || i >= len(sums) {
		return nil
	}
	return &sums[i]
}

func longLabel(kind gitx.ChangeKind) string {
	switch kind {
	case gitx.KindAdded:
		return "new file"
	case gitx.KindDeleted:
		return "deleted"
	case gitx.KindRenamed:
		return "renamed"
	case gitx.KindCopied:
		return "copied"
	case gitx.KindUnmerged:
		return "unmerged"
	default:
		return "modified"
	}
}

package summarize

import (
	"context"
	"strings"
	"sync"

	"github.com/howinator/git-hud/internal/gitx"
	"github.com/howinator/git-hud/internal/logging"
)

// Outcome classifies how a file's summary attempt ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeSkippedBinary
	OutcomeFailed
)

// BinaryChangedText is the fixed annotation for non-textual diffs.
const BinaryChangedText = "binary file changed"

// FileSummary is the per-file result merged back into the status output.
type FileSummary struct {
	Path    string
	Text    string
	Outcome Outcome
}

// DiffSource obtains the diff payload for one changed file.
type DiffSource interface {
	Extract(ctx context.Context, c gitx.FileChange) gitx.DiffPayload
}

// Orchestrator drives DiffSource and Summarizer over all changed files with a
// fixed worker count, returning summaries in input order regardless of
// completion order. A task failure degrades only its own file.
type Orchestrator struct {
	Diffs      DiffSource
	Summarizer Summarizer
	Workers    int
	Log        logging.Logger
}

// Run produces one FileSummary per change, index-aligned with the input.
func (o *Orchestrator) Run(ctx context.Context, changes []gitx.FileChange) []FileSummary {
	log := o.Log
	if log == nil {
		log = logging.Nop()
	}

	results := make([]FileSummary, len(changes))
	for i, c := range changes {
		results[i] = FileSummary{Path: c.Path, Outcome: OutcomeFailed}
	}
	if len(changes) == 0 {
		return results
	}

	// Whole-run precondition: without a credential there is nothing to call,
	// so every entry fails synchronously and no diff work happens.
	if o.Summarizer == nil || !o.Summarizer.Configured() {
		log.Debug("summarizer not configured, skipping all remote calls")
		return results
	}

	workers := o.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(changes) {
		workers = len(changes)
	}

	// Workers drain indexed jobs and write results by index; distinct indices
	// mean no lock beyond the channel itself.
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.summarizeOne(ctx, changes[i])
			}
		}()
	}
	for i := range changes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (o *Orchestrator) summarizeOne(ctx context.Context, c gitx.FileChange) FileSummary {
	payload := o.Diffs.Extract(ctx, c)

	switch {
	case payload.Failed():
		if o.Log != nil {
			o.Log.Debug("diff extraction failed", "path", c.Path)
		}
		return FileSummary{Path: c.Path, Outcome: OutcomeFailed}
	case payload.Binary():
		return FileSummary{Path: c.Path, Text: BinaryChangedText, Outcome: OutcomeSkippedBinary}
	case strings.TrimSpace(payload.Text) == "":
		return FileSummary{Path: c.Path, Outcome: OutcomeFailed}
	}

	text, err := o.Summarizer.Summarize(ctx, payload)
	if err != nil {
		if o.Log != nil {
			o.Log.Debug("summarize failed", "path", c.Path, "err", err)
		}
		return FileSummary{Path: c.Path, Outcome: OutcomeFailed}
	}
	return FileSummary{Path: c.Path, Text: text, Outcome: OutcomeOK}
}

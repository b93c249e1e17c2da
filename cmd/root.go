package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/howinator/git-hud/internal/config"
	"github.com/howinator/git-hud/internal/gitx"
	"github.com/howinator/git-hud/internal/logging"
	"github.com/howinator/git-hud/internal/render"
	"github.com/howinator/git-hud/internal/summarize"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	flagDir         string
	flagShort       bool
	flagNoSummary   bool
	flagNoColor     bool
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "git-hud",
	Short: "git status with a one-line AI summary of each change",
	Long: `git-hud prints your git status with a short natural-language summary of what
changed in each file, so you can re-enter a working tree faster than a bare
list of filenames allows.

Summaries are generated by the Anthropic API from each file's diff. The status
listing itself never depends on the remote service: when a summary cannot be
produced, the plain status line is shown with a fallback marker.

Get started:
  1. Set your API key: export ANTHROPIC_API_KEY="your-key"
  2. Install the alias:  git-hud install
  3. Run "git hud" in any repository`,
	SilenceUsage: true,
	RunE:         runHud,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagDir, "dir", "C", "", "run as if started in this directory")
	rootCmd.Flags().BoolVar(&flagShort, "short", false, "annotate the porcelain status lines instead of the long layout")
	rootCmd.Flags().BoolVar(&flagNoSummary, "no-summary", false, "print the status without contacting the summarizer")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "max in-flight summary requests (default 4)")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("git-hud %s\n", Version)
	},
}

func runHud(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
	log := logging.ForRun(cfg.Debug)
	ctx := cmd.Context()

	runner := gitx.NewExecRunner("")
	root, err := gitx.RepoRoot(ctx, runner, flagDir)
	if err != nil {
		return fmt.Errorf("not a git repository (or git is unavailable): %w", err)
	}

	statusDone := logging.Timed(log, "status")
	doc, err := gitx.Status(ctx, runner, root)
	statusDone()
	if err != nil {
		return err
	}

	var sums []summarize.FileSummary
	if !flagNoSummary && len(doc.Changes) > 0 {
		client := summarize.NewClient(cfg.APIKey, cfg.Model, time.Duration(cfg.TimeoutSeconds)*time.Second)
		if !client.Configured() {
			log.Warn("no API key configured, showing plain status", "env", config.EnvAPIKey)
		}
		orch := &summarize.Orchestrator{
			Diffs:      &gitx.DiffExtractor{Runner: runner, Dir: root, MaxBytes: cfg.MaxDiffBytes},
			Summarizer: client,
			Workers:    cfg.Concurrency,
			Log:        log,
		}
		summarizeDone := logging.Timed(log, "summarize")
		sums = orch.Run(ctx, doc.Changes)
		summarizeDone()
	}

	if flagShort {
		fmt.Print(render.Annotate(doc, sums))
		return nil
	}

	color := !flagNoColor && isatty.IsTerminal(os.Stdout.Fd())
	fmt.Print(render.Long(doc, sums, color))
	return nil
}

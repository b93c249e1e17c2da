package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/howinator/git-hud/internal/config"
	"github.com/howinator/git-hud/internal/gitx"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Show configuration and environment status",
	Long:  `Display the current configuration and check that git and the API credential are available.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("git-hud %s\n\n", Version)

	cfg := config.Load()
	if cfg.IsConfigured() {
		fmt.Printf("API Key:      %s (configured)\n", config.MaskAPIKey(cfg.APIKey))
	} else {
		fmt.Println("API Key:      Not configured")
		fmt.Printf("  Set with: export %s=\"your-api-key\"\n", config.EnvAPIKey)
	}
	fmt.Printf("Model:        %s\n", cfg.Model)
	fmt.Printf("Concurrency:  %d\n", cfg.Concurrency)
	fmt.Printf("Timeout:      %ds\n", cfg.TimeoutSeconds)
	fmt.Printf("Diff bound:   %d bytes\n", cfg.MaxDiffBytes)
	fmt.Printf("Debug:        %v\n", cfg.Debug)
	fmt.Println()

	if path, err := exec.LookPath("git"); err == nil {
		fmt.Printf("git:          %s\n", path)
	} else {
		fmt.Println("git:          Not found on PATH")
		return nil
	}

	runner := gitx.NewExecRunner("")
	if root, err := gitx.RepoRoot(cmd.Context(), runner, ""); err == nil {
		fmt.Printf("Repository:   %s\n", root)
	} else {
		fmt.Println("Repository:   Current directory is not a git work tree")
	}

	return nil
}

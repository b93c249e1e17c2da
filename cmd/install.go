package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var flagRemoveAlias bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the \"git hud\" alias",
	Long: `Register a global git alias so the tool runs as "git hud".

The alias is written to your global git configuration and points at this
binary. Use --remove to uninstall it again.

Prerequisites:
  1. Set your API key: export ANTHROPIC_API_KEY="your-key"
  2. Have git on your PATH`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&flagRemoveAlias, "remove", false, "remove the alias instead of installing it")
}

func runInstall(cmd *cobra.Command, args []string) error {
	if flagRemoveAlias {
		out, err := exec.Command("git", "config", "--global", "--unset", "alias.hud").CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to remove alias: %s", string(out))
		}
		fmt.Println("Removed the \"git hud\" alias")
		return nil
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exePath, err = filepath.EvalSymlinks(exePath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	alias := "!" + exePath
	out, err := exec.Command("git", "config", "--global", "alias.hud", alias).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to write alias: %s", string(out))
	}

	fmt.Println("Successfully installed the \"git hud\" alias")
	fmt.Printf("Alias target: %s\n", exePath)
	fmt.Println("\nMake sure you have set your API key:")
	fmt.Println("  export ANTHROPIC_API_KEY=\"your-api-key\"")

	return nil
}

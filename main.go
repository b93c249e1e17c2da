package main

import (
	"os"

	"github.com/howinator/git-hud/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"pathwatch/cmd/pathwatch/cmd"
)

// Version information (set via ldflags at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, buildTime, gitCommit)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

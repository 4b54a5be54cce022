package main

import (
	"os"

	"github.com/genoassist-br/genoassist/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(version, commit, date)
	os.Exit(cli.ExitCode(cmd.Execute()))
}

// Command codeit runs source files on the execution service, either through
// a codeit server or directly, and manages locally saved sources.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "codeit",
		Usage: "run code on a remote execution service",
		Commands: []*cli.Command{
			languagesCommand(),
			runCommand(),
			downloadCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

// Flags shared by commands that work on the local store.
var (
	dbFlag = &cli.StringFlag{
		Name:    "db",
		Usage:   "local bolt store",
		Value:   defaultDBPath(),
		Sources: cli.EnvVars("CODEIT_DB"),
	}
	backendFlag = &cli.StringFlag{
		Name:    "backend",
		Usage:   "execution backend (piston, judge0)",
		Value:   "piston",
		Sources: cli.EnvVars("CODEIT_BACKEND"),
	}
	runURLFlag = &cli.StringFlag{
		Name:    "run-url",
		Usage:   "execution service url",
		Sources: cli.EnvVars("CODEIT_RUN_URL"),
	}
	runTokenFlag = &cli.StringFlag{
		Name:    "run-token",
		Usage:   "execution service auth token",
		Sources: cli.EnvVars("CODEIT_RUN_TOKEN"),
	}
)

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codeit.db"
	}
	return home + string(os.PathSeparator) + ".codeit.db"
}

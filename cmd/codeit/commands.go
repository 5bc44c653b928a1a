package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/workflow"
	codeit "github.com/gsarma/codeit/sdk"
)

// cliNamespace is the store namespace the CLI saves sources under.
const cliNamespace = "cli"

func languagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "list supported languages",
		Action: func(_ context.Context, cmd *cli.Command) error {
			versions := language.DefaultVersions()
			bold := color.New(color.Bold).SprintFunc()
			for _, d := range language.All() {
				fmt.Fprintf(cmd.Root().Writer, "%-8s %-8s .%-5s %s\n", bold(d.ID), d.Label, d.Ext, versions.Version(d.ID))
			}
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a source file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "language id (default from file extension)"},
			&cli.StringFlag{Name: "stdin", Usage: "file whose content is passed as stdin"},
			&cli.StringFlag{Name: "server", Usage: "codeit server url", Value: "http://localhost:8080", Sources: cli.EnvVars("CODEIT_SERVER")},
			&cli.BoolFlag{Name: "direct", Usage: "call the execution service directly instead of a server"},
			&cli.DurationFlag{Name: "timeout", Usage: "run timeout", Value: 30 * time.Second},
			dbFlag, backendFlag, runURLFlag, runTokenFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("missing FILE")
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			lang := cmd.String("lang")
			if lang == "" {
				if lang, err = langFromFile(path); err != nil {
					return err
				}
			}
			var stdin string
			if p := cmd.String("stdin"); p != "" {
				b, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				stdin = string(b)
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()
			in := runInput{Language: lang, Source: string(src), Stdin: stdin}
			var rep report
			if cmd.Bool("direct") {
				rep, err = runDirect(ctx, cmd, in)
			} else {
				rep, err = runRemote(ctx, cmd.String("server"), in)
			}
			rep.print(cmd.Root().Writer)
			return err
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "print the locally saved source of a language",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "language id", Value: language.Default},
			&cli.BoolFlag{Name: "save", Usage: "write code.<ext> to the current directory instead of printing"},
			dbFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := store.OpenBolt(cmd.String("db"))
			if err != nil {
				return err
			}
			defer db.Close()

			s, err := workflow.New(ctx, workflow.Deps{Store: store.Scope(db, cliNamespace)})
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.SelectLanguage(ctx, cmd.String("lang")); err != nil {
				return err
			}
			f := s.Download()
			if !cmd.Bool("save") {
				_, err := cmd.Root().Writer.Write(f.Content)
				return err
			}
			if err := os.WriteFile(f.Name, f.Content, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, color.GreenString("saved %s", f.Name))
			return nil
		},
	}
}

// langFromFile picks the language whose extension matches path.
func langFromFile(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "cc", "cxx":
		ext = "cpp"
	}
	for _, d := range language.All() {
		if d.Ext == ext {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("cannot infer language from %q, use --lang", path)
}

type runInput struct {
	Language string
	Source   string
	Stdin    string
}

// runDirect runs in a local session backed by the bolt store, so the source
// is saved just like in the editor.
func runDirect(ctx context.Context, cmd *cli.Command, in runInput) (report, error) {
	db, err := store.OpenBolt(cmd.String("db"))
	if err != nil {
		return report{}, err
	}
	defer db.Close()

	provider, err := code.NewProvider(cmd.String("backend"), cmd.String("run-url"), cmd.String("run-token"), cmd.Duration("timeout"))
	if err != nil {
		return report{}, err
	}
	s, err := workflow.New(ctx, workflow.Deps{
		Store:    store.Scope(db, cliNamespace),
		Provider: provider,
	})
	if err != nil {
		return report{}, err
	}
	defer s.Close()

	if err := s.SelectLanguage(ctx, in.Language); err != nil {
		return report{}, err
	}
	if err := s.SetSource(ctx, in.Source); err != nil {
		return report{}, err
	}
	s.SetStdin(in.Stdin)
	runErr := s.Run(ctx)
	return reportFromSnapshot(s.Snapshot()), runErr
}

// runRemote runs in a throwaway server session.
func runRemote(ctx context.Context, server string, in runInput) (report, error) {
	client, err := codeit.New(server)
	if err != nil {
		return report{}, err
	}
	s, err := client.Sessions.Create(ctx)
	if err != nil {
		return report{}, err
	}
	defer client.Sessions.Delete(context.WithoutCancel(ctx), s.ID)

	if _, err := client.Sessions.SelectLanguage(ctx, s.ID, in.Language); err != nil {
		return report{}, err
	}
	if _, err := client.Sessions.SetSource(ctx, s.ID, in.Source); err != nil {
		return report{}, err
	}
	if _, err := client.Sessions.SetStdin(ctx, s.ID, in.Stdin); err != nil {
		return report{}, err
	}
	got, runErr := client.Sessions.Run(ctx, s.ID)
	if got == nil {
		return report{}, runErr
	}
	return reportFromSession(got), runErr
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/session"
	"github.com/mind-engage/practice-exam/internal/ui"
)

// runTake builds the handler for the take command.
func runTake(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		cfg := loadConfig()
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "Catalog API base URL")
		flags.StringVar(&cfg.SessionStore, "store", cfg.SessionStore, "Progress store (file|sqlite|redis|memory)")
		fresh := flags.Bool("fresh", false, "Discard saved progress and start over")
		if code, done := parseArgs(cmd, flags, args, stdout, stderr); done {
			return code
		}
		if flags.NArg() > 1 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args()[1:], " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if !isTerminal(stdout) {
			fmt.Fprintln(stderr, "take needs an interactive terminal")
			return ExitError
		}
		noColor := !useColor(cfg, stdout)

		ctx := context.Background()
		reader := newCatalogReader(cfg)

		examID := flags.Arg(0)
		if examID == "" {
			list, err := reader.ListQuizzes(ctx)
			if err != nil {
				fmt.Fprintf(stderr, "List failed: %v\n", err)
				return ExitError
			}
			final, err := runProgram(ui.NewSelector(list, noColor), stdout)
			if err != nil {
				fmt.Fprintf(stderr, "UI failed: %v\n", err)
				return ExitError
			}
			if sel, ok := final.(ui.SelectorModel); ok {
				examID = sel.Chosen()
			}
			if examID == "" {
				return ExitOK
			}
		}

		quiz, err := reader.GetQuizDetail(ctx, examID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			fmt.Fprintf(stderr, "Quiz not found: %s\n", examID)
			return ExitError
		case err != nil:
			fmt.Fprintf(stderr, "Load quiz failed: %v\n", err)
			return ExitError
		}

		repo, closer, err := openRepository(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Open progress store failed: %v\n", err)
			return ExitError
		}
		defer closer.Close()

		logger, closeLog, err := sessionLogger(cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		defer closeLog()

		machine := session.NewMachine(quiz, repo, session.WithLogger(logger))
		if *fresh {
			if err := machine.Restart(ctx); err != nil {
				fmt.Fprintf(stderr, "Warning: %v\n", err)
			}
		}
		resumed, err := machine.Resume(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: saved progress could not be read: %v\n", err)
		}

		model := ui.NewExam(ctx, machine, ui.ExamOptions{NoColor: noColor, Resumed: resumed})
		if _, err := runProgram(model, stdout); err != nil {
			fmt.Fprintf(stderr, "UI failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"
)

// runReset builds the handler for the reset command.
func runReset(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		cfg := loadConfig()
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.StringVar(&cfg.SessionStore, "store", cfg.SessionStore, "Progress store (file|sqlite|redis|memory)")
		if code, done := parseArgs(cmd, flags, args, stdout, stderr); done {
			return code
		}
		if flags.NArg() != 1 {
			fmt.Fprintln(stderr, "reset needs exactly one exam id")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		examID := flags.Arg(0)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		repo, closer, err := openRepository(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Open progress store failed: %v\n", err)
			return ExitError
		}
		defer closer.Close()

		if err := repo.Clear(ctx, examID); err != nil {
			fmt.Fprintf(stderr, "Reset failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Progress for %s cleared\n", examID)
		return ExitOK
	}
}

package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// runList builds the handler for the list command.
func runList(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		cfg := loadConfig()
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "Catalog API base URL")
		asJSON := flags.Bool("json", false, "Print the catalog as JSON")
		if code, done := parseArgs(cmd, flags, args, stdout, stderr); done {
			return code
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		list, err := newCatalogReader(cfg).ListQuizzes(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "List failed: %v\n", err)
			return ExitError
		}

		if *asJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(list); err != nil {
				fmt.Fprintf(stderr, "List failed: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		if len(list) == 0 {
			fmt.Fprintln(stdout, "No quizzes in the catalog.")
			return ExitOK
		}
		fmt.Fprintf(stdout, "%-16s %-40s %-8s %5s %9s\n", "EXAM", "NAME", "VERSION", "QS", "PASS")
		for _, q := range list {
			pass := strconv.FormatFloat(q.PassingScore, 'f', -1, 64) + "/" + strconv.FormatFloat(q.TotalPoints, 'f', -1, 64)
			name := q.ExamName
			if q.IsOfficial {
				name += " *"
			}
			fmt.Fprintf(stdout, "%-16s %-40s %-8s %5d %9s\n", q.ExamID, name, q.Version, q.TotalQuestions, pass)
		}
		return ExitOK
	}
}

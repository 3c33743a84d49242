package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/db"
)

// runImport builds the handler for the import command.
func runImport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		cfg := loadConfig()
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "Catalog database driver (sqlite|postgres)")
		flags.StringVar(&cfg.DBDSN, "dsn", cfg.DBDSN, "Catalog database DSN")
		if code, done := parseArgs(cmd, flags, args, stdout, stderr); done {
			return code
		}
		if flags.NArg() == 0 {
			fmt.Fprintln(stderr, "import needs at least one quiz file")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			fmt.Fprintf(stderr, "Open database failed: %v\n", err)
			return ExitError
		}
		defer dbh.Close()
		store := catalog.NewSQLStore(dbh)

		failed := 0
		for _, path := range flags.Args() {
			q, err := catalog.LoadFile(path)
			if err == nil {
				err = store.PutQuiz(ctx, q)
			}
			if err != nil {
				failed++
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(stderr, "%s: invalid quiz:\n%s\n", path, verr.Error())
				} else {
					fmt.Fprintf(stderr, "%s: %v\n", path, err)
				}
				continue
			}
			fmt.Fprintf(stdout, "Imported %s (%d questions, %s points) from %s\n",
				q.ExamID, len(q.Questions), fmtPoints(q), path)
		}
		if failed > 0 {
			fmt.Fprintf(stderr, "%d of %d file(s) failed\n", failed, flags.NArg())
			return ExitError
		}
		return ExitOK
	}
}

func fmtPoints(q catalog.Quiz) string {
	total := q.TotalPoints
	if total == 0 {
		for _, qq := range q.Questions {
			total += qq.Points
		}
	}
	return fmt.Sprintf("%g", total)
}

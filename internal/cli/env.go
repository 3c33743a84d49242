package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/client"
	"github.com/mind-engage/practice-exam/internal/config"
	"github.com/mind-engage/practice-exam/internal/session"
	"github.com/mind-engage/practice-exam/internal/storage"
)

// Seams replaced by tests.
var (
	loadConfig = config.FromEnv

	newCatalogReader = func(cfg config.Config) catalog.Reader {
		return client.New(cfg.APIBaseURL)
	}

	openRepository = func(ctx context.Context, cfg config.Config) (session.Repository, io.Closer, error) {
		return storage.Open(ctx, cfg)
	}

	runProgram = func(model tea.Model, stdout io.Writer) (tea.Model, error) {
		return tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(stdout)).Run()
	}

	// isTerminal reports whether a writer is a TTY.
	isTerminal = defaultIsTerminal
)

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

// useColor decides whether styled output goes to stdout.
func useColor(cfg config.Config, stdout io.Writer) bool {
	return !cfg.NoColor && isTerminal(stdout)
}

// sessionLogger writes persistence warnings to LOG_FILE, or nowhere, so they
// never land on top of the full-screen UI.
func sessionLogger(cfg config.Config) (*log.Logger, func(), error) {
	if cfg.LogFile == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "quiz ", log.LstdFlags), func() { _ = f.Close() }, nil
}

// parseArgs parses flags for cmd. done reports that the caller should return code.
func parseArgs(cmd *Command, flags *flag.FlagSet, args []string, stdout, stderr io.Writer) (code int, done bool) {
	if wantsHelp(args) {
		printCommandUsage(cmd, stdout)
		return ExitOK, true
	}
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, true
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, true
	}
	return ExitOK, false
}

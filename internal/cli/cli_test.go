package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/config"
	"github.com/mind-engage/practice-exam/internal/db"
	"github.com/mind-engage/practice-exam/internal/session"
	"github.com/mind-engage/practice-exam/internal/storage"
	"github.com/mind-engage/practice-exam/internal/ui"
)

const quizJSON = `{
  "examId": "ctfl-a",
  "examName": "Sample Exam A",
  "version": "1.1",
  "passingScore": 2,
  "questions": [
    {"id": "1", "questionText": "Pick B", "selectType": "single", "correctAnswer": "B", "points": 1,
     "options": [{"key": "A", "text": "a"}, {"key": "B", "text": "b"}],
     "explanation": {"A": "no", "B": "yes"}},
    {"id": "2", "questionText": "Pick A and C", "selectType": "multiple", "correctAnswer": "C,A", "points": 2,
     "options": [{"key": "A", "text": "a"}, {"key": "B", "text": "b"}, {"key": "C", "text": "c"}],
     "explanation": {"A": "yes", "B": "no", "C": "yes"}}
  ]
}`

// withSeams swaps the package seams for the duration of a test.
func withSeams(t *testing.T, store catalog.Reader, repo session.Repository, tty bool) {
	t.Helper()
	origCfg, origReader, origRepo, origRun, origTTY := loadConfig, newCatalogReader, openRepository, runProgram, isTerminal
	t.Cleanup(func() {
		loadConfig, newCatalogReader, openRepository, runProgram, isTerminal = origCfg, origReader, origRepo, origRun, origTTY
	})
	loadConfig = func() config.Config { return config.Config{SessionStore: "memory", NoColor: true} }
	newCatalogReader = func(config.Config) catalog.Reader { return store }
	openRepository = func(context.Context, config.Config) (session.Repository, io.Closer, error) {
		return repo, io.NopCloser(nil), nil
	}
	isTerminal = func(io.Writer) bool { return tty }
}

func sampleStore(t *testing.T) catalog.Store {
	t.Helper()
	q, err := catalog.Parse([]byte(quizJSON), true)
	if err != nil {
		t.Fatal(err)
	}
	store, err := catalog.NewInMemoryStore(q)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRootHelp(t *testing.T) {
	var out, err bytes.Buffer
	code := Run([]string{"--help"}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	for _, cmd := range commands {
		if !strings.Contains(out.String(), cmd.Name) {
			t.Fatalf("expected command %q in output", cmd.Name)
		}
	}
}

func TestNoArgsShowsUsage(t *testing.T) {
	var out, err bytes.Buffer
	if code := Run(nil, &out, &err); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage output, got %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	var out, err bytes.Buffer
	if code := Run([]string{"nope"}, &out, &err); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(err.String(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %q", err.String())
	}
}

func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		var out, err bytes.Buffer
		if code := Run([]string{cmd.Name, "--help"}, &out, &err); code != ExitOK {
			t.Fatalf("%s: exit %d", cmd.Name, code)
		}
		if !strings.Contains(out.String(), "quiz "+cmd.Name) {
			t.Fatalf("%s: usage %q", cmd.Name, out.String())
		}
	}
	var out, err bytes.Buffer
	if code := Run([]string{"help", "reset"}, &out, &err); code != ExitOK || !strings.Contains(out.String(), "quiz reset") {
		t.Fatalf("help reset: %d %q", code, out.String())
	}
}

func TestList(t *testing.T) {
	withSeams(t, sampleStore(t), storage.NewMemoryStore(), false)
	var out, err bytes.Buffer
	if code := Run([]string{"list"}, &out, &err); code != ExitOK {
		t.Fatalf("exit %d: %s", code, err.String())
	}
	if !strings.Contains(out.String(), "ctfl-a") || !strings.Contains(out.String(), "2/3") {
		t.Fatalf("output %q", out.String())
	}

	out.Reset()
	if code := Run([]string{"list", "--json"}, &out, &err); code != ExitOK {
		t.Fatalf("json exit %d", code)
	}
	var rows []catalog.QuizSummary
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil || len(rows) != 1 || rows[0].TotalQuestions != 2 {
		t.Fatalf("json rows %+v err %v", rows, err)
	}
}

func TestTakeNeedsTerminal(t *testing.T) {
	withSeams(t, sampleStore(t), storage.NewMemoryStore(), false)
	var out, err bytes.Buffer
	if code := Run([]string{"take", "ctfl-a"}, &out, &err); code != ExitError {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(err.String(), "interactive terminal") {
		t.Fatalf("stderr %q", err.String())
	}
}

func TestTakeUnknownQuiz(t *testing.T) {
	withSeams(t, sampleStore(t), storage.NewMemoryStore(), true)
	var out, err bytes.Buffer
	if code := Run([]string{"take", "nope"}, &out, &err); code != ExitError {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(err.String(), "Quiz not found: nope") {
		t.Fatalf("stderr %q", err.String())
	}
}

func TestTakeResumesSavedProgress(t *testing.T) {
	repo := storage.NewMemoryStore()
	ctx := context.Background()
	_ = repo.Save(ctx, "ctfl-a", session.Snapshot{
		Version:   session.SnapshotVersion,
		Answers:   map[string][]string{"1": {"B"}},
		Confirmed: []string{"1"},
		Position:  1,
		StartedAt: time.Now().Add(-time.Minute).UTC(),
		Order:     []string{"2", "1"},
	})
	withSeams(t, sampleStore(t), repo, true)

	var ran ui.ExamModel
	runProgram = func(m tea.Model, _ io.Writer) (tea.Model, error) {
		ran = m.(ui.ExamModel)
		return m, nil
	}
	var out, err bytes.Buffer
	if code := Run([]string{"take", "ctfl-a"}, &out, &err); code != ExitOK {
		t.Fatalf("exit %d: %s", code, err.String())
	}
	s := ran.Machine().Session()
	if s.State != session.StateInProgress || s.Position != 1 || !s.Confirmed["1"] {
		t.Fatalf("session %+v", s)
	}
	if ran.Status() != "Resumed saved progress." {
		t.Fatalf("status %q", ran.Status())
	}
}

func TestTakeFreshDiscardsProgress(t *testing.T) {
	repo := storage.NewMemoryStore()
	_ = repo.Save(context.Background(), "ctfl-a", session.Snapshot{Order: []string{"1", "2"}})
	withSeams(t, sampleStore(t), repo, true)

	var ran ui.ExamModel
	runProgram = func(m tea.Model, _ io.Writer) (tea.Model, error) {
		ran = m.(ui.ExamModel)
		return m, nil
	}
	var out, err bytes.Buffer
	if code := Run([]string{"take", "--fresh", "ctfl-a"}, &out, &err); code != ExitOK {
		t.Fatalf("exit %d: %s", code, err.String())
	}
	if ran.Machine().State() != session.StateNotStarted {
		t.Fatalf("state %s", ran.Machine().State())
	}
}

func TestTakeSelectorQuit(t *testing.T) {
	withSeams(t, sampleStore(t), storage.NewMemoryStore(), true)
	calls := 0
	runProgram = func(m tea.Model, _ io.Writer) (tea.Model, error) {
		calls++
		if _, ok := m.(ui.SelectorModel); !ok {
			t.Fatalf("expected selector, got %T", m)
		}
		return m, nil
	}
	var out, err bytes.Buffer
	if code := Run([]string{"take"}, &out, &err); code != ExitOK || calls != 1 {
		t.Fatalf("exit %d calls %d", code, calls)
	}
}

func TestReset(t *testing.T) {
	repo := storage.NewMemoryStore()
	ctx := context.Background()
	_ = repo.Save(ctx, "ctfl-a", session.Snapshot{Order: []string{"1"}})
	withSeams(t, sampleStore(t), repo, false)

	var out, err bytes.Buffer
	if code := Run([]string{"reset", "ctfl-a"}, &out, &err); code != ExitOK {
		t.Fatalf("exit %d: %s", code, err.String())
	}
	if _, found, _ := repo.Load(ctx, "ctfl-a"); found {
		t.Fatal("snapshot still stored")
	}
	if code := Run([]string{"reset"}, &out, &err); code != ExitUsage {
		t.Fatalf("missing id: exit %d", code)
	}
}

func TestImport(t *testing.T) {
	withSeams(t, nil, nil, false)
	dir := t.TempDir()
	good := filepath.Join(dir, "a.json")
	bad := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(good, []byte(quizJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("examId: x\nexamName: X\nquestions: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dsn := "file:cli_import_test?mode=memory&cache=shared"
	ctx := context.Background()
	keep, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = keep.Close() })

	var out, errOut bytes.Buffer
	code := Run([]string{"import", "--driver", "sqlite", "--dsn", dsn, good, bad}, &out, &errOut)
	if code != ExitError {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "Imported ctfl-a (2 questions, 3 points)") {
		t.Fatalf("stdout %q", out.String())
	}
	if !strings.Contains(errOut.String(), "b.yaml: invalid quiz") || !strings.Contains(errOut.String(), "1 of 2 file(s) failed") {
		t.Fatalf("stderr %q", errOut.String())
	}

	q, err := catalog.NewSQLStore(keep).GetQuizDetail(ctx, "ctfl-a")
	if err != nil || len(q.Questions) != 2 {
		t.Fatalf("stored quiz %+v err %v", q, err)
	}
}

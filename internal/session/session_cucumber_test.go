//go:build cucumber

package session_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/scoring"
	"github.com/mind-engage/practice-exam/internal/session"
	"github.com/mind-engage/practice-exam/internal/storage"
)

// TestSessionScenarios runs the exam session feature scenarios.
func TestSessionScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "session",
		ScenarioInitializer: InitializeSessionScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "session.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeSessionScenario wires steps for the session scenarios.
func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	state := &sessionScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^the two-question quiz$`, state.givenQuiz)
	ctx.Step(`^the exam has started$`, state.givenStarted)
	ctx.Step(`^I answer "([^"]+)" with "([^"]+)"$`, state.whenAnswer)
	ctx.Step(`^I confirm "([^"]+)"$`, state.whenConfirm)
	ctx.Step(`^I move to the next question$`, state.whenNext)
	ctx.Step(`^I finish the exam$`, state.whenFinish)
	ctx.Step(`^I restart the exam$`, state.whenRestart)
	ctx.Step(`^the score is (\d+) correct for (\d+) points$`, state.thenScore)
	ctx.Step(`^the exam is passed$`, state.thenPassed(true))
	ctx.Step(`^the exam is failed$`, state.thenPassed(false))
	ctx.Step(`^the live tally is (\d+) right and (\d+) wrong$`, state.thenTally)
	ctx.Step(`^the session is not started$`, state.thenNotStarted)
	ctx.Step(`^no progress is stored$`, state.thenNothingStored)
}

type sessionScenarioState struct {
	quiz    catalog.Quiz
	repo    *storage.MemoryStore
	machine *session.Machine
}

// reset clears scenario state.
func (s *sessionScenarioState) reset() {
	s.quiz = catalog.Quiz{}
	s.repo = storage.NewMemoryStore()
	s.machine = nil
}

func (s *sessionScenarioState) givenQuiz() error {
	s.quiz = twoQuestionQuiz()
	s.machine = session.NewMachine(s.quiz, s.repo,
		session.WithRand(rand.New(rand.NewSource(1))),
		session.WithClock(func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }),
		session.WithLogger(log.New(io.Discard, "", 0)),
	)
	return nil
}

func (s *sessionScenarioState) givenStarted() error {
	return s.machine.Start(context.Background())
}

// whenAnswer selects every comma separated key in turn.
func (s *sessionScenarioState) whenAnswer(questionID, keys string) error {
	for _, k := range strings.Split(keys, ",") {
		if err := s.machine.SelectAnswer(context.Background(), questionID, strings.TrimSpace(k)); err != nil {
			return err
		}
	}
	return nil
}

func (s *sessionScenarioState) whenConfirm(questionID string) error {
	return s.machine.Confirm(context.Background(), questionID)
}

func (s *sessionScenarioState) whenNext() error { return s.machine.GoNext(context.Background()) }

func (s *sessionScenarioState) whenFinish() error { return s.machine.Finish(context.Background()) }

func (s *sessionScenarioState) whenRestart() error { return s.machine.Restart(context.Background()) }

func (s *sessionScenarioState) thenScore(correct, points int) error {
	v := s.machine.View()
	if v.Result == nil {
		return fmt.Errorf("exam is not finished (state %s)", v.State)
	}
	want := scoring.Score{CorrectCount: correct, TotalPoints: float64(points)}
	if v.Result.Score != want {
		return fmt.Errorf("score %+v, want %+v", v.Result.Score, want)
	}
	if v.Result.Score.TotalPoints > s.quiz.TotalPoints {
		return fmt.Errorf("score exceeds quiz total %v", s.quiz.TotalPoints)
	}
	return nil
}

func (s *sessionScenarioState) thenPassed(want bool) func() error {
	return func() error {
		v := s.machine.View()
		if v.Result == nil || v.Result.Passed != want {
			return fmt.Errorf("passed=%v, want %v", v.Result != nil && v.Result.Passed, want)
		}
		return nil
	}
}

func (s *sessionScenarioState) thenTally(right, wrong int) error {
	got := s.machine.View().Tally
	if got != (scoring.Tally{Right: right, Wrong: wrong}) {
		return fmt.Errorf("tally %+v", got)
	}
	return nil
}

func (s *sessionScenarioState) thenNotStarted() error {
	if st := s.machine.State(); st != session.StateNotStarted {
		return fmt.Errorf("state %s", st)
	}
	return nil
}

func (s *sessionScenarioState) thenNothingStored() error {
	if _, found, err := s.repo.Load(context.Background(), s.quiz.ExamID); err != nil || found {
		return fmt.Errorf("snapshot found=%v err=%v", found, err)
	}
	return nil
}

// Package session implements the lifecycle of one exam attempt.
//
// A Session is a value: every transition returns a new Session and leaves the
// receiver untouched. Machine holds the current value, applies intents and
// writes a snapshot after each change.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/scoring"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

var (
	// ErrInvalidState rejects an intent raised outside its legal state.
	ErrInvalidState = errors.New("invalid session state")
	// ErrNotFound is returned for question ids or option keys the quiz does not have.
	ErrNotFound = errors.New("not found")
	// ErrPersistence marks a snapshot write/read failure. The in-memory
	// session is unaffected when it is returned from a transition.
	ErrPersistence = errors.New("session persistence failed")
)

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string // save|load|clear
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

type Session struct {
	AttemptID    string
	QuizID       string
	State        State
	Answers      scoring.Answers
	Confirmed    map[string]bool
	Explanations map[string]bool
	Order        []string // question ids in presentation order
	Position     int
	StartedAt    time.Time
	Elapsed      time.Duration // frozen by Finish
	Reviewing    bool
}

// New returns the NotStarted session for a quiz.
func New(quizID string) Session {
	return Session{
		QuizID:       quizID,
		State:        StateNotStarted,
		Answers:      scoring.Answers{},
		Confirmed:    map[string]bool{},
		Explanations: map[string]bool{},
	}
}

func (s Session) clone() Session {
	out := s
	out.Answers = make(scoring.Answers, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = append(scoring.Answer(nil), v...)
	}
	out.Confirmed = copyFlags(s.Confirmed)
	out.Explanations = copyFlags(s.Explanations)
	out.Order = append([]string(nil), s.Order...)
	return out
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func (s Session) requireInProgress(intent string) error {
	if s.State != StateInProgress {
		return invalid("%s requires an exam in progress (state %s)", intent, s.State)
	}
	return nil
}

// start moves NotStarted to InProgress with the given order and start time.
func (s Session) start(attemptID string, order []string, now time.Time) (Session, error) {
	if s.State != StateNotStarted {
		return s, invalid("start requires a session that has not started (state %s)", s.State)
	}
	out := New(s.QuizID)
	out.AttemptID = attemptID
	out.State = StateInProgress
	out.Order = append([]string(nil), order...)
	out.StartedAt = now.UTC()
	return out, nil
}

// selectAnswer applies the toggle rules for q and reopens a confirmed question.
func (s Session) selectAnswer(q catalog.Question, key string) (Session, error) {
	if err := s.requireInProgress("select answer"); err != nil {
		return s, err
	}
	if !q.HasOption(key) {
		return s, fmt.Errorf("%w: option %q on question %s", ErrNotFound, key, q.ID)
	}
	out := s.clone()
	current := out.Answers[q.ID]
	var next scoring.Answer
	switch q.SelectType {
	case catalog.SelectMultiple:
		if current.Contains(key) {
			for _, k := range current {
				if k != key {
					next = append(next, k)
				}
			}
		} else {
			next = append(append(next, current...), key)
		}
		next = scoring.Canonical(next)
	default:
		if len(current) == 1 && current[0] == key {
			next = nil
		} else {
			next = scoring.Answer{key}
		}
	}
	if len(next) == 0 {
		delete(out.Answers, q.ID)
	} else {
		out.Answers[q.ID] = next
	}
	if out.Confirmed[q.ID] {
		delete(out.Confirmed, q.ID)
		delete(out.Explanations, q.ID)
	}
	return out, nil
}

func (s Session) confirm(questionID string) (Session, error) {
	if err := s.requireInProgress("confirm"); err != nil {
		return s, err
	}
	if len(s.Answers[questionID]) == 0 {
		return s, invalid("question %s has no answer to confirm", questionID)
	}
	if s.Confirmed[questionID] {
		return s, nil
	}
	out := s.clone()
	out.Confirmed[questionID] = true
	return out, nil
}

func (s Session) toggleExplanation(questionID string) (Session, error) {
	if err := s.requireInProgress("toggle explanation"); err != nil {
		return s, err
	}
	if !s.Confirmed[questionID] {
		return s, invalid("question %s is not confirmed", questionID)
	}
	out := s.clone()
	if out.Explanations[questionID] {
		delete(out.Explanations, questionID)
	} else {
		out.Explanations[questionID] = true
	}
	return out, nil
}

// goTo moves to index i clamped to the order. Moving forward hides the
// explanation of the question landed on.
func (s Session) goTo(i int) (Session, error) {
	if err := s.requireInProgress("navigate"); err != nil {
		return s, err
	}
	if len(s.Order) == 0 {
		return s, nil
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.Order)-1 {
		i = len(s.Order) - 1
	}
	if i == s.Position {
		return s, nil
	}
	out := s.clone()
	if i > out.Position {
		delete(out.Explanations, out.Order[i])
	}
	out.Position = i
	return out, nil
}

func (s Session) finish(now time.Time) (Session, error) {
	if err := s.requireInProgress("finish"); err != nil {
		return s, err
	}
	out := s.clone()
	out.State = StateFinished
	out.Elapsed = elapsedSince(out.StartedAt, now)
	return out, nil
}

func (s Session) review(on bool) (Session, error) {
	if s.State != StateFinished {
		return s, invalid("review is only available after finishing (state %s)", s.State)
	}
	out := s.clone()
	out.Reviewing = on
	return out, nil
}

// ElapsedAt reports the time spent at instant now. It is recomputed from the
// fixed start time while in progress and frozen once finished.
func (s Session) ElapsedAt(now time.Time) time.Duration {
	switch s.State {
	case StateInProgress:
		return elapsedSince(s.StartedAt, now)
	case StateFinished:
		return s.Elapsed
	default:
		return 0
	}
}

func elapsedSince(start, now time.Time) time.Duration {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return now.Sub(start).Truncate(time.Second)
}

// CurrentQuestionID returns the id at the current position, or "".
func (s Session) CurrentQuestionID() string {
	if s.Position < 0 || s.Position >= len(s.Order) {
		return ""
	}
	return s.Order[s.Position]
}

// ConfirmedSet returns the confirmed flags as a map suitable for scoring.LiveTally.
func (s Session) ConfirmedSet() map[string]bool { return copyFlags(s.Confirmed) }

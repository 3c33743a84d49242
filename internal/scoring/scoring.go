// Package scoring holds the pure correctness and point rules for a quiz attempt.
package scoring

import (
	"math"
	"sort"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// Answer is a submitted answer: one key for single-select questions, the
// selected keys in sorted order for multiple-select. Empty means unanswered.
type Answer []string

// Answers maps question id to the submitted answer.
type Answers map[string]Answer

// Canonical returns a sorted copy of a, dropping duplicates.
func Canonical(a Answer) Answer {
	if len(a) == 0 {
		return nil
	}
	out := append(Answer(nil), a...)
	sort.Strings(out)
	j := 0
	for i := range out {
		if i > 0 && out[i] == out[i-1] {
			continue
		}
		out[j] = out[i]
		j++
	}
	return out[:j]
}

// Contains reports whether key is part of the answer.
func (a Answer) Contains(key string) bool {
	for _, k := range a {
		if k == key {
			return true
		}
	}
	return false
}

type Score struct {
	CorrectCount int     `json:"correctCount"`
	TotalPoints  float64 `json:"totalPoints"`
}

type Tally struct {
	Right int `json:"rightCount"`
	Wrong int `json:"wrongCount"`
}

// IsCorrect applies the exact-match rule. Multiple-select answers are
// compared as sorted sets; there is no partial credit.
func IsCorrect(q catalog.Question, a Answer) bool {
	if len(a) == 0 {
		return false
	}
	switch q.SelectType {
	case catalog.SelectMultiple:
		return equalKeys(Canonical(a), Canonical(Answer(q.CorrectAnswer)))
	default:
		return len(a) == 1 && len(q.CorrectAnswer) == 1 && a[0] == q.CorrectAnswer[0]
	}
}

func equalKeys(a, b Answer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ScoreSession walks every question of the quiz in catalog order, so the
// presentation order of a session never affects the result.
func ScoreSession(quiz catalog.Quiz, answers Answers) Score {
	var s Score
	for _, q := range quiz.Questions {
		if IsCorrect(q, answers[q.ID]) {
			s.CorrectCount++
			s.TotalPoints += q.Points
		}
	}
	return s
}

// LiveTally counts right and wrong answers among confirmed questions only.
// Answered but unconfirmed questions are left out of both counts.
func LiveTally(quiz catalog.Quiz, answers Answers, confirmed map[string]bool) Tally {
	var t Tally
	for _, q := range quiz.Questions {
		if !confirmed[q.ID] {
			continue
		}
		a := answers[q.ID]
		if len(a) == 0 {
			continue
		}
		if IsCorrect(q, a) {
			t.Right++
		} else {
			t.Wrong++
		}
	}
	return t
}

func Passed(score, passingScore float64) bool { return score >= passingScore }

// Percentage is score as a rounded share of totalPoints; 0 when there is nothing to score.
func Percentage(score, totalPoints float64) int {
	if totalPoints <= 0 {
		return 0
	}
	return int(math.Round(score / totalPoints * 100))
}

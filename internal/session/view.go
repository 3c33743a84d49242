package session

import (
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/scoring"
)

// View is everything the presentation layer needs to draw the current state.
type View struct {
	State     State
	Reviewing bool

	Position int // zero-based index into the presentation order
	Total    int
	Question catalog.Question
	Answer   scoring.Answer

	Confirmed          bool
	ExplanationVisible bool
	CurrentCorrect     bool // meaningful once Confirmed

	Tally    scoring.Tally
	Answered int
	Progress int // answered share of the quiz, in percent
	Elapsed  time.Duration

	Result *Result // set once finished
}

// Result is the final score of a finished session.
type Result struct {
	Score          scoring.Score
	TotalPoints    float64
	PassingScore   float64
	Passed         bool
	Percentage     int
	TotalQuestions int
	Elapsed        time.Duration
	Review         []scoring.ReviewItem
}

// View renders the current session at the machine's clock.
func (m *Machine) View() View {
	return BuildView(m.quiz, m.cur, m.now())
}

// BuildView derives a View from a quiz and a session value at instant now.
func BuildView(quiz catalog.Quiz, s Session, now time.Time) View {
	total := quiz.TotalQuestions
	if total == 0 {
		total = len(quiz.Questions)
	}
	v := View{
		State:     s.State,
		Reviewing: s.Reviewing,
		Position:  s.Position,
		Total:     len(s.Order),
		Tally:     scoring.LiveTally(quiz, s.Answers, s.Confirmed),
		Elapsed:   s.ElapsedAt(now),
	}
	for _, a := range s.Answers {
		if len(a) > 0 {
			v.Answered++
		}
	}
	if total > 0 {
		v.Progress = v.Answered * 100 / total
	}
	if id := s.CurrentQuestionID(); id != "" {
		if q, ok := quiz.Question(id); ok {
			v.Question = q
			v.Answer = s.Answers[id]
			v.Confirmed = s.Confirmed[id]
			v.ExplanationVisible = s.Explanations[id]
			v.CurrentCorrect = scoring.IsCorrect(q, v.Answer)
		}
	}
	if s.State == StateFinished {
		score := scoring.ScoreSession(quiz, s.Answers)
		v.Result = &Result{
			Score:          score,
			TotalPoints:    quiz.TotalPoints,
			PassingScore:   quiz.PassingScore,
			Passed:         scoring.Passed(score.TotalPoints, quiz.PassingScore),
			Percentage:     scoring.Percentage(score.TotalPoints, quiz.TotalPoints),
			TotalQuestions: total,
			Elapsed:        s.Elapsed,
			Review:         scoring.Review(quiz, s.Answers),
		}
	}
	return v
}

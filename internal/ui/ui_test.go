package ui

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/session"
	"github.com/mind-engage/practice-exam/internal/storage"
)

func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                 "0:00",
		59 * time.Second:                  "0:59",
		61 * time.Second:                  "1:01",
		59*time.Minute + 59*time.Second:   "59:59",
		time.Hour:                         "1:00:00",
		2*time.Hour + 3*time.Minute + 4e9: "2:03:04",
		-time.Second:                      "0:00",
	}
	for d, want := range cases {
		if got := FormatElapsed(d); got != want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", d, got, want)
		}
	}
}

func attachment(t *testing.T, kind string, v any) *catalog.Attachment {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return &catalog.Attachment{Kind: kind, Raw: raw}
}

func TestRenderCode(t *testing.T) {
	out := RenderVisualAid(attachment(t, KindCode, map[string]any{
		"type": "code", "language": "python", "code": "x = 1\nif x > 0:\n    print(x)\n",
	}), true)
	for _, want := range []string{"Code (python)", "1 x = 1", "3     print(x)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderVisualAid(attachment(t, KindBoundaryValues, map[string]any{
		"title":   "Ages",
		"headers": []string{"Partition", "Min", "Max"},
		"rows":    [][]any{{"child", 0, 12}, {"adult", 18, 64.5}},
	}), true)
	for _, want := range []string{"Ages", "Partition", "child", "12", "64.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDecisionTable(t *testing.T) {
	out := RenderVisualAid(attachment(t, KindDecisionTable, map[string]any{
		"conditions": []map[string]any{{"name": "Member", "rules": []any{true, false}}},
		"actions":    []map[string]any{{"name": "Discount", "rules": []any{"X", "-"}}},
		"legend":     map[string]string{"T": "true", "F": "false"},
	}), true)
	for _, want := range []string{"Decision Table", "R1", "R2", "Member", "Discount", "Legend: F = false, T = true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDiagram(t *testing.T) {
	out := RenderVisualAid(attachment(t, KindStateTransitionDiagram, map[string]any{
		"states":      []map[string]any{{"id": "s0", "label": "Idle", "isInitial": true}, {"id": "s1", "label": "Busy"}},
		"transitions": []map[string]any{{"from": "s0", "to": "s1", "event": "go", "action": "work"}},
	}), true)
	if !strings.Contains(out, "[Idle (initial)]") || !strings.Contains(out, "Idle --go--> Busy / work") {
		t.Fatalf("diagram:\n%s", out)
	}
}

func TestRenderUnknownKindFallsBackToJSON(t *testing.T) {
	out := RenderVisualAid(attachment(t, "mystery", map[string]any{"a": 1}), true)
	if !strings.Contains(out, `"a": 1`) {
		t.Fatalf("raw:\n%s", out)
	}
	if RenderVisualAid(nil, true) != "" {
		t.Fatal("nil attachment must render empty")
	}
}

func TestRenderCalculation(t *testing.T) {
	out := RenderCalculation(attachment(t, "", map[string]any{
		"formula": "coverage = covered / total", "given": map[string]any{"total": 8, "covered": 6},
		"result": "75%",
	}), true)
	for _, want := range []string{"Formula: coverage = covered / total", "covered = 6", "total = 8", "Result: 75%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func examQuiz() catalog.Quiz {
	return catalog.Quiz{
		ExamID: "ctfl", ExamName: "Foundation", TotalQuestions: 2, TotalPoints: 3, PassingScore: 2,
		Questions: []catalog.Question{
			{
				ID: "q1", Text: "Single", SelectType: catalog.SelectSingle, CorrectAnswer: catalog.AnswerKey{"B"}, Points: 1,
				Options:     []catalog.Option{{Key: "A", Text: "alpha"}, {Key: "B", Text: "beta"}},
				Explanation: map[string]string{"A": "wrong", "B": "right"},
			},
			{
				ID: "q2", Text: "Multiple", SelectType: catalog.SelectMultiple, CorrectAnswer: catalog.AnswerKey{"A", "C"}, Points: 2,
				Options:     []catalog.Option{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}, {Key: "C", Text: "c"}},
				Explanation: map[string]string{"A": "yes", "B": "no", "C": "yes"},
			},
		},
	}
}

func newExam(t *testing.T) (ExamModel, *storage.MemoryStore) {
	t.Helper()
	repo := storage.NewMemoryStore()
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	m := session.NewMachine(examQuiz(), repo,
		session.WithRand(rand.New(rand.NewSource(3))),
		session.WithClock(func() time.Time { return start }),
		session.WithLogger(log.New(io.Discard, "", 0)),
	)
	return NewExam(context.Background(), m, ExamOptions{NoColor: true}), repo
}

func press(m ExamModel, keys ...string) (ExamModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m = next.(ExamModel)
		cmd = c
	}
	return m, cmd
}

func TestExamStartSchedulesTick(t *testing.T) {
	m, _ := newExam(t)
	if m.Init() != nil {
		t.Fatal("no tick before start")
	}
	if !strings.Contains(m.View(), "Press s to start") {
		t.Fatalf("intro:\n%s", m.View())
	}
	m, cmd := press(m, "s")
	if m.Machine().State() != session.StateInProgress {
		t.Fatalf("state %s", m.Machine().State())
	}
	if cmd == nil {
		t.Fatal("start must schedule the timer")
	}
	if !strings.Contains(m.View(), "Question 1 of 2") {
		t.Fatalf("question view:\n%s", m.View())
	}
}

func TestExamTickStopsAfterFinish(t *testing.T) {
	m, _ := newExam(t)
	m, _ = press(m, "s")
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(ExamModel)
	if cmd == nil {
		t.Fatal("tick must reschedule while in progress")
	}
	m, _ = press(m, "f", "f")
	if m.Machine().State() != session.StateFinished {
		t.Fatalf("state %s", m.Machine().State())
	}
	if _, cmd := m.Update(tickMsg(time.Now())); cmd != nil {
		t.Fatal("tick must not reschedule once finished")
	}
}

func TestExamAnswerConfirmExplain(t *testing.T) {
	m, repo := newExam(t)
	m, _ = press(m, "s")
	qid := m.Machine().View().Question.ID

	m, _ = press(m, "c")
	if m.Status() != "Select an answer before confirming." {
		t.Fatalf("status %q", m.Status())
	}
	m, _ = press(m, "1", "c", "e")
	v := m.Machine().View()
	if !v.Confirmed || !v.ExplanationVisible || len(v.Answer) != 1 || v.Answer[0] != "A" {
		t.Fatalf("view %+v", v)
	}
	if !strings.Contains(m.View(), "Explanation") {
		t.Fatalf("explanation hidden:\n%s", m.View())
	}
	snap, found, _ := repo.Load(context.Background(), "ctfl")
	if !found || len(snap.Confirmed) != 1 || snap.Confirmed[0] != qid {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestExamCursorSelectsAndNavigationResetsCursor(t *testing.T) {
	m, _ := newExam(t)
	m, _ = press(m, "s", "j", "space")
	v := m.Machine().View()
	if len(v.Answer) != 1 || v.Answer[0] != "B" {
		t.Fatalf("answer %v", v.Answer)
	}
	m, _ = press(m, "n")
	if m.Machine().View().Position != 1 || m.cursor != 0 {
		t.Fatalf("position %d cursor %d", m.Machine().View().Position, m.cursor)
	}
	m, _ = press(m, "n")
	if m.Machine().View().Position != 1 {
		t.Fatal("next past the end must clamp")
	}
}

func TestExamFinishNeedsSecondPress(t *testing.T) {
	m, _ := newExam(t)
	m, _ = press(m, "s", "f")
	if m.Machine().State() != session.StateInProgress {
		t.Fatal("one press must not finish")
	}
	if !strings.Contains(m.Status(), "2 question(s) unanswered") {
		t.Fatalf("status %q", m.Status())
	}
	m, _ = press(m, "n", "f")
	if m.Machine().State() != session.StateInProgress {
		t.Fatal("another key in between cancels the pending finish")
	}
}

func TestExamResultsAndReview(t *testing.T) {
	m, _ := newExam(t)
	m, _ = press(m, "s")
	for i := 0; i < 2; i++ {
		q := m.Machine().View().Question
		if q.ID == "q1" {
			m, _ = press(m, "2")
		} else {
			m, _ = press(m, "1", "3")
		}
		m, _ = press(m, "n")
	}
	m, _ = press(m, "f", "f")
	out := m.View()
	for _, want := range []string{"PASSED", "100%", "Score:          3 / 3", "Correct:        2 of 2", "Time:           0:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	m, _ = press(m, "v")
	if !m.Machine().View().Reviewing || !strings.Contains(m.View(), "Answer Review") {
		t.Fatalf("review:\n%s", m.View())
	}
	m, _ = press(m, "j")
	if !strings.Contains(m.View(), "2 / 2") {
		t.Fatalf("review cursor:\n%s", m.View())
	}
	m, _ = press(m, "esc")
	if m.Machine().View().Reviewing {
		t.Fatal("esc must close the review")
	}
	m, _ = press(m, "r")
	if m.Machine().State() != session.StateNotStarted {
		t.Fatalf("restart: %s", m.Machine().State())
	}
}

func TestSelectorChoosesQuiz(t *testing.T) {
	quizzes := []catalog.QuizSummary{
		{ExamID: "a", ExamName: "First", TotalQuestions: 40, TotalPoints: 40, PassingScore: 26},
		{ExamID: "b", ExamName: "Second", TotalQuestions: 20, TotalPoints: 20, PassingScore: 13, IsOfficial: true},
	}
	m := NewSelector(quizzes, true)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(SelectorModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(SelectorModel)
	if m.Chosen() != "b" || cmd == nil {
		t.Fatalf("chosen %q", m.Chosen())
	}
	rows := SelectorRows(quizzes)
	if rows[1][4] != "13/20" || rows[1][5] != "yes" {
		t.Fatalf("row %v", rows[1])
	}
}

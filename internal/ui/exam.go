package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mind-engage/practice-exam/internal/session"
)

// ExamModel drives one exam attempt through a session.Machine.
type ExamModel struct {
	ctx     context.Context
	machine *session.Machine
	keys    keyMap
	help    help.Model
	noColor bool
	width   int

	cursor       int    // highlighted option on the current question
	reviewCursor int    // highlighted item on the review screen
	pending      string // intent waiting for a second key press
	status       string
	warn         bool
	ticking      bool
}

// ExamOptions configures the exam model.
type ExamOptions struct {
	NoColor bool
	// Resumed marks a machine rehydrated from a stored snapshot.
	Resumed bool
}

// NewExam wraps machine for the terminal.
func NewExam(ctx context.Context, machine *session.Machine, opts ExamOptions) ExamModel {
	h := help.New()
	m := ExamModel{
		ctx:     ctx,
		machine: machine,
		keys:    defaultKeys(),
		help:    h,
		noColor: opts.NoColor,
	}
	if opts.Resumed {
		m.status = "Resumed saved progress."
	}
	return m
}

// Init starts the clock when the attempt is already running.
func (m ExamModel) Init() tea.Cmd {
	if m.machine.State() == session.StateInProgress {
		return tick()
	}
	return nil
}

// tickMsg carries a clock tick.
type tickMsg time.Time

// tick schedules the next one-second repaint of the timer.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles key presses and timer ticks.
func (m ExamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.help.Width = typed.Width
		return m, nil
	case tickMsg:
		// no reschedule once the attempt has left InProgress
		if m.machine.State() != session.StateInProgress {
			m.ticking = false
			return m, nil
		}
		m.ticking = true
		return m, tick()
	case tea.KeyMsg:
		if key.Matches(typed, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(typed, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		switch m.machine.State() {
		case session.StateNotStarted:
			return m.updateNotStarted(typed)
		case session.StateInProgress:
			return m.updateInProgress(typed)
		case session.StateFinished:
			return m.updateFinished(typed)
		}
	}
	return m, nil
}

func (m ExamModel) updateNotStarted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Start) {
		m.report(m.machine.Start(m.ctx))
		m.cursor = 0
		return m, m.startTicking()
	}
	return m, nil
}

func (m ExamModel) updateInProgress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.machine.View()
	qid := v.Question.ID
	pending := m.pending
	m.pending = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(v.Question.Options)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(v.Question.Options) {
			m.report(m.machine.SelectAnswer(m.ctx, qid, v.Question.Options[m.cursor].Key))
		}
	case key.Matches(msg, m.keys.Pick):
		i := int(msg.String()[0] - '1')
		if i < len(v.Question.Options) {
			m.cursor = i
			m.report(m.machine.SelectAnswer(m.ctx, qid, v.Question.Options[i].Key))
		}
	case key.Matches(msg, m.keys.Confirm):
		if err := m.machine.Confirm(m.ctx, qid); errors.Is(err, session.ErrInvalidState) {
			m.setStatus("Select an answer before confirming.", true)
		} else {
			m.report(err)
		}
	case key.Matches(msg, m.keys.Explain):
		if err := m.machine.ToggleExplanation(m.ctx, qid); errors.Is(err, session.ErrInvalidState) {
			m.setStatus("Confirm your answer to see the explanation.", true)
		} else {
			m.report(err)
		}
	case key.Matches(msg, m.keys.Next):
		m.move(m.machine.GoNext(m.ctx), v.Position)
	case key.Matches(msg, m.keys.Prev):
		m.move(m.machine.GoPrevious(m.ctx), v.Position)
	case key.Matches(msg, m.keys.Finish):
		if pending != "finish" {
			m.pending = "finish"
			unanswered := v.Total - v.Answered
			if unanswered > 0 {
				m.setStatus(fmtInt(unanswered)+" question(s) unanswered. Press f again to finish.", true)
			} else {
				m.setStatus("Press f again to finish.", false)
			}
			return m, nil
		}
		m.report(m.machine.Finish(m.ctx))
		m.reviewCursor = 0
	case key.Matches(msg, m.keys.Restart):
		if pending != "restart" {
			m.pending = "restart"
			m.setStatus("Press r again to discard this attempt.", true)
			return m, nil
		}
		m.report(m.machine.Restart(m.ctx))
		m.cursor = 0
	}
	return m, nil
}

func (m ExamModel) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reviewing := m.machine.View().Reviewing
	switch {
	case key.Matches(msg, m.keys.Review) && !reviewing:
		m.report(m.machine.Review())
		m.reviewCursor = 0
	case key.Matches(msg, m.keys.Back) && reviewing:
		m.report(m.machine.CloseReview())
	case key.Matches(msg, m.keys.Up) && reviewing:
		if m.reviewCursor > 0 {
			m.reviewCursor--
		}
	case key.Matches(msg, m.keys.Down) && reviewing:
		if m.reviewCursor < len(m.machine.Quiz().Questions)-1 {
			m.reviewCursor++
		}
	case key.Matches(msg, m.keys.Restart):
		m.report(m.machine.Restart(m.ctx))
		m.cursor = 0
	}
	return m, nil
}

// move resets the option cursor when navigation changed the question.
func (m *ExamModel) move(err error, from int) {
	m.report(err)
	if m.machine.Session().Position != from {
		m.cursor = 0
	}
}

func (m *ExamModel) startTicking() tea.Cmd {
	if m.ticking || m.machine.State() != session.StateInProgress {
		return nil
	}
	m.ticking = true
	return tick()
}

// report turns an intent result into the status line.
func (m *ExamModel) report(err error) {
	switch {
	case err == nil:
		m.setStatus("", false)
	case errors.Is(err, session.ErrPersistence):
		m.setStatus("Progress not saved: "+err.Error(), true)
	case errors.Is(err, session.ErrInvalidState):
		m.setStatus("Not available right now.", true)
	case errors.Is(err, session.ErrNotFound):
		m.setStatus("Not found: "+err.Error(), true)
	default:
		m.setStatus(err.Error(), true)
	}
}

func (m *ExamModel) setStatus(text string, warn bool) {
	m.status = text
	m.warn = warn
}

// Status returns the current status line text.
func (m ExamModel) Status() string { return m.status }

// Machine exposes the underlying session machine.
func (m ExamModel) Machine() *session.Machine { return m.machine }

// View renders the screen for the current state.
func (m ExamModel) View() string {
	v := m.machine.View()
	var body string
	var hk examHelp
	switch v.State {
	case session.StateNotStarted:
		body = renderIntro(m.machine.Quiz(), m.noColor)
		hk = m.keys.notStartedHelp()
	case session.StateInProgress:
		body = renderQuestion(v, m.cursor, m.noColor)
		hk = m.keys.inProgressHelp()
	case session.StateFinished:
		if v.Reviewing {
			body = renderReview(v.Result.Review, m.reviewCursor, m.noColor)
		} else {
			body = renderResults(m.machine.Quiz(), v, m.noColor)
		}
		hk = m.keys.finishedHelp(v.Reviewing)
	}
	out := body
	if m.status != "" {
		color := colorMuted
		if m.warn {
			color = colorWarn
		}
		out += "\n\n" + stylize(m.status, m.noColor, color)
	}
	return out + "\n\n" + m.help.View(hk) + "\n"
}

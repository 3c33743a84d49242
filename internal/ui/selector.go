package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// SelectorModel lists the catalog and lets the user pick a quiz.
type SelectorModel struct {
	quizzes []catalog.QuizSummary
	table   table.Model
	keys    selectorKeys
	help    help.Model
	noColor bool

	chosen string
}

type selectorKeys struct {
	Up, Down, Choose, Quit key.Binding
}

func (k selectorKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Up, k.Down, k.Choose, k.Quit} }
func (k selectorKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// NewSelector constructs a selector over quizzes in the given order.
func NewSelector(quizzes []catalog.QuizSummary, noColor bool) SelectorModel {
	t := table.New(
		table.WithColumns(selectorColumns(80)),
		table.WithRows(SelectorRows(quizzes)),
		table.WithFocused(true),
		table.WithHeight(min(len(quizzes)+1, 15)),
	)
	t.SetStyles(selectorStyles(noColor))
	return SelectorModel{
		quizzes: quizzes,
		table:   t,
		keys: selectorKeys{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "take exam")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		help:    help.New(),
		noColor: noColor,
	}
}

func (m SelectorModel) Init() tea.Cmd { return nil }

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(typed.Width)
		m.table.SetColumns(selectorColumns(typed.Width))
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(typed, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(typed, m.keys.Choose):
			if i := m.table.Cursor(); i >= 0 && i < len(m.quizzes) {
				m.chosen = m.quizzes[i].ExamID
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SelectorModel) View() string {
	title := stylize("Practice exams", m.noColor, colorTitle)
	if len(m.quizzes) == 0 {
		return title + "\n\nNo quizzes in the catalog.\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.table.View(), "", m.help.View(m.keys)) + "\n"
}

// Chosen returns the exam id picked by the user, or "" when they quit.
func (m SelectorModel) Chosen() string { return m.chosen }

// SelectorRows converts summaries to table rows.
func SelectorRows(quizzes []catalog.QuizSummary) []table.Row {
	rows := make([]table.Row, 0, len(quizzes))
	for _, q := range quizzes {
		official := ""
		if q.IsOfficial {
			official = "yes"
		}
		rows = append(rows, table.Row{
			q.ExamID,
			truncate(q.ExamName, 48),
			q.Version,
			fmtInt(q.TotalQuestions),
			formatPoints(q.PassingScore) + "/" + formatPoints(q.TotalPoints),
			official,
		})
	}
	return rows
}

func selectorColumns(width int) []table.Column {
	name := 30
	if width > 80 {
		name += min(width-80, 30)
	}
	return []table.Column{
		{Title: "Exam", Width: 14},
		{Title: "Name", Width: name},
		{Title: "Version", Width: 8},
		{Title: "Qs", Width: 4},
		{Title: "Pass", Width: 8},
		{Title: "Official", Width: 8},
	}
}

func selectorStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Selected = lipgloss.NewStyle().Reverse(true)
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252")).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(colorTitle)
	return styles
}

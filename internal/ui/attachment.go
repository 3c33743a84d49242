package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// Attachment kinds with a dedicated renderer. Anything else is shown as
// indented JSON.
const (
	KindCode                   = "code"
	KindTable                  = "table"
	KindEquivalencePartitions  = "equivalencePartitionTable"
	KindBoundaryValues         = "boundaryValueTable"
	KindStateTransitionTable   = "stateTransitionTable"
	KindStateTransitionDiagram = "stateTransitionDiagram"
	KindDecisionTable          = "decisionTable"
)

type codeAid struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	LineNumbers *bool  `json:"lineNumbers"`
}

type tableAid struct {
	Title              string  `json:"title"`
	Headers            []any   `json:"headers"`
	Rows               [][]any `json:"rows"`
	InvalidTransitions []any   `json:"invalidTransitions"`
}

type decisionRow struct {
	Name  string `json:"name"`
	Rules []any  `json:"rules"`
}

type decisionAid struct {
	Title      string            `json:"title"`
	Conditions []decisionRow     `json:"conditions"`
	Actions    []decisionRow     `json:"actions"`
	Legend     map[string]string `json:"legend"`
}

type diagramState struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	IsInitial bool   `json:"isInitial"`
	IsFinal   bool   `json:"isFinal"`
}

type diagramTransition struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Event       string `json:"event"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type diagramAid struct {
	Title       string              `json:"title"`
	States      []diagramState      `json:"states"`
	Transitions []diagramTransition `json:"transitions"`
}

type calculationAid struct {
	Formula   string         `json:"formula"`
	Given     map[string]any `json:"given"`
	WorkShown string         `json:"workShown"`
	Result    any            `json:"result"`
}

// RenderVisualAid renders a question's visual aid for the terminal. A nil
// attachment renders as "".
func RenderVisualAid(a *catalog.Attachment, noColor bool) string {
	if a == nil || len(a.Raw) == 0 {
		return ""
	}
	var (
		out string
		err error
	)
	switch a.Kind {
	case KindCode:
		var v codeAid
		if err = a.Decode(&v); err == nil {
			out = renderCode(v, noColor)
		}
	case KindTable, KindEquivalencePartitions, KindBoundaryValues, KindStateTransitionTable:
		var v tableAid
		if err = a.Decode(&v); err == nil {
			out = renderTable(a.Kind, v, noColor)
		}
	case KindDecisionTable:
		var v decisionAid
		if err = a.Decode(&v); err == nil {
			out = renderDecisionTable(v, noColor)
		}
	case KindStateTransitionDiagram:
		var v diagramAid
		if err = a.Decode(&v); err == nil {
			out = renderDiagram(v, noColor)
		}
	default:
		out = renderRaw(a)
	}
	if err != nil {
		return renderRaw(a)
	}
	return out
}

// RenderCalculation renders a worked calculation shown with the explanation.
func RenderCalculation(a *catalog.Attachment, noColor bool) string {
	if a == nil || len(a.Raw) == 0 {
		return ""
	}
	var v calculationAid
	if err := a.Decode(&v); err != nil {
		return renderRaw(a)
	}
	var b strings.Builder
	b.WriteString(stylize("Calculation", noColor, colorTitle) + "\n")
	if v.Formula != "" {
		fmt.Fprintf(&b, "  Formula: %s\n", v.Formula)
	}
	if len(v.Given) > 0 {
		b.WriteString("  Given:\n")
		for _, k := range sortedKeys(v.Given) {
			fmt.Fprintf(&b, "    %s = %s\n", k, cell(v.Given[k]))
		}
	}
	if v.WorkShown != "" {
		b.WriteString("  Work:\n")
		for _, line := range strings.Split(strings.TrimRight(v.WorkShown, "\n"), "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	if v.Result != nil {
		fmt.Fprintf(&b, "  Result: %s\n", bold(cell(v.Result), noColor))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCode(v codeAid, noColor bool) string {
	var b strings.Builder
	title := v.Title
	if title == "" {
		title = "Code"
	}
	if v.Language != "" {
		title += " (" + v.Language + ")"
	}
	b.WriteString(stylize(title, noColor, colorTitle) + "\n")
	lines := strings.Split(strings.TrimRight(v.Code, "\n"), "\n")
	numbered := v.LineNumbers == nil || *v.LineNumbers
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		if numbered {
			b.WriteString(stylize(fmt.Sprintf("%*d ", width, i+1), noColor, colorMuted))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTable(kind string, v tableAid, noColor bool) string {
	title := v.Title
	if title == "" {
		switch kind {
		case KindStateTransitionTable:
			title = "State Transition Table"
		default:
			title = "Data Table"
		}
	}
	headers := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		headers[i] = cell(h)
	}
	rows := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = make([]string, len(r))
		for j, c := range r {
			rows[i][j] = cell(c)
		}
	}
	out := stylize(title, noColor, colorTitle) + "\n" + gridTable(headers, rows, noColor)
	if len(v.InvalidTransitions) > 0 {
		out += "\n" + stylize("Invalid transitions:", noColor, colorBad)
		for _, it := range v.InvalidTransitions {
			out += "\n  - " + cell(it)
		}
	}
	return out
}

func renderDecisionTable(v decisionAid, noColor bool) string {
	ruleCount := 0
	for _, r := range append(append([]decisionRow{}, v.Conditions...), v.Actions...) {
		if len(r.Rules) > ruleCount {
			ruleCount = len(r.Rules)
		}
	}
	headers := []string{""}
	for i := 1; i <= ruleCount; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}
	var rows [][]string
	add := func(r decisionRow) {
		row := []string{r.Name}
		for i := 0; i < ruleCount; i++ {
			if i < len(r.Rules) {
				row = append(row, cell(r.Rules[i]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	for _, c := range v.Conditions {
		add(c)
	}
	for _, a := range v.Actions {
		add(a)
	}
	title := v.Title
	if title == "" {
		title = "Decision Table"
	}
	out := stylize(title, noColor, colorTitle) + "\n" + gridTable(headers, rows, noColor)
	if len(v.Legend) > 0 {
		keys := make([]string, 0, len(v.Legend))
		for k := range v.Legend {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + v.Legend[k]
		}
		out += "\n" + stylize("Legend: "+strings.Join(parts, ", "), noColor, colorMuted)
	}
	return out
}

func renderDiagram(v diagramAid, noColor bool) string {
	labels := map[string]string{}
	var b strings.Builder
	title := v.Title
	if title == "" {
		title = "State Transition Diagram"
	}
	b.WriteString(stylize(title, noColor, colorTitle) + "\n")
	b.WriteString("States:")
	for _, s := range v.States {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		labels[s.ID] = label
		switch {
		case s.IsInitial:
			label += " (initial)"
		case s.IsFinal:
			label += " (final)"
		}
		b.WriteString(" [" + label + "]")
	}
	b.WriteString("\nTransitions:\n")
	name := func(id string) string {
		if l, ok := labels[id]; ok {
			return l
		}
		return id
	}
	for _, t := range v.Transitions {
		line := fmt.Sprintf("  %s --%s--> %s", name(t.From), t.Event, name(t.To))
		if t.Action != "" {
			line += " / " + t.Action
		}
		if t.Description != "" {
			line += stylize("  "+t.Description, noColor, colorMuted)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func gridTable(headers []string, rows [][]string, noColor bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if !noColor {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true).Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
	} else {
		t = t.StyleFunc(func(int, int) lipgloss.Style { return lipgloss.NewStyle().Padding(0, 1) })
	}
	return t.String()
}

func renderRaw(a *catalog.Attachment) string {
	var v any
	if err := json.Unmarshal(a.Raw, &v); err != nil {
		return string(a.Raw)
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(a.Raw)
	}
	return string(buf)
}

// cell stringifies a loosely typed JSON value for display.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatPoints(t)
	case bool:
		if t {
			return "T"
		}
		return "F"
	default:
		buf, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(buf)
	}
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

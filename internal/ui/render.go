package ui

import (
	"strings"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/scoring"
	"github.com/mind-engage/practice-exam/internal/session"
)

// renderIntro renders the quiz card shown before the attempt starts.
func renderIntro(q catalog.Quiz, noColor bool) string {
	var b strings.Builder
	b.WriteString(stylize(bold(q.ExamName, noColor), noColor, colorTitle) + "\n")
	meta := []string{}
	if q.Version != "" {
		meta = append(meta, "Version "+q.Version)
	}
	if q.SyllabusVersion != "" {
		meta = append(meta, "Syllabus "+q.SyllabusVersion)
	}
	if q.IsOfficial {
		meta = append(meta, "Official sample")
	}
	if len(meta) > 0 {
		b.WriteString(stylize(strings.Join(meta, " | "), noColor, colorMuted) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Questions:     " + fmtInt(len(q.Questions)) + "\n")
	b.WriteString("Total points:  " + formatPoints(q.TotalPoints) + "\n")
	b.WriteString("Passing score: " + formatPoints(q.PassingScore) + "\n")
	if q.ResourceDocument != "" {
		b.WriteString(stylize("Reference: "+q.ResourceDocument, noColor, colorMuted) + "\n")
	}
	b.WriteString("\nQuestions are shown in random order. Press s to start.")
	return b.String()
}

// renderQuestion renders the in-progress screen for v.
func renderQuestion(v session.View, cursor int, noColor bool) string {
	var b strings.Builder
	q := v.Question

	header := "Question " + fmtInt(v.Position+1) + " of " + fmtInt(v.Total)
	b.WriteString(stylize(header, noColor, colorTitle))
	b.WriteString(stylize("   "+FormatElapsed(v.Elapsed), noColor, colorMuted))
	b.WriteString("   " + stylize("right "+fmtInt(v.Tally.Right), noColor, colorGood))
	b.WriteString(" " + stylize("wrong "+fmtInt(v.Tally.Wrong), noColor, colorBad) + "\n")
	b.WriteString(progressBar(v.Progress, 30) + " " + fmtInt(v.Answered) + " answered\n\n")

	tags := []string{formatPoints(q.Points) + pointsUnit(q.Points)}
	if q.KLevel != "" {
		tags = append(tags, q.KLevel)
	}
	if q.LearningObjective != "" {
		tags = append(tags, q.LearningObjective)
	}
	b.WriteString(stylize(strings.Join(tags, " | "), noColor, colorMuted) + "\n")
	b.WriteString(bold(q.Text, noColor) + "\n")
	if q.SelectType == catalog.SelectMultiple {
		b.WriteString(stylize("Select "+fmtInt(len(q.CorrectAnswer))+" answers.", noColor, colorMuted) + "\n")
	}
	if aid := RenderVisualAid(q.VisualAid, noColor); aid != "" {
		b.WriteString("\n" + aid + "\n")
	}
	b.WriteString("\n")

	for i, o := range q.Options {
		b.WriteString(renderOption(q, o, i == cursor, v.Answer.Contains(o.Key), v.Confirmed, noColor) + "\n")
	}

	if v.Confirmed {
		b.WriteString("\n")
		if v.CurrentCorrect {
			b.WriteString(stylize("Correct.", noColor, colorGood))
		} else {
			b.WriteString(stylize("Incorrect. Answer: "+q.CorrectAnswer.String(), noColor, colorBad))
		}
		b.WriteString("\n")
	} else if q.Hint != "" {
		b.WriteString("\n" + stylize("Hint: "+q.Hint, noColor, colorMuted) + "\n")
	}
	if v.ExplanationVisible {
		b.WriteString("\n" + renderExplanation(q, noColor))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderOption(q catalog.Question, o catalog.Option, focused, selected, confirmed bool, noColor bool) string {
	box := "( )"
	if q.SelectType == catalog.SelectMultiple {
		box = "[ ]"
	}
	if selected {
		box = box[:1] + "x" + box[2:]
	}
	line := box + " " + o.Key + ") " + o.Text
	if focused {
		line = stylize("> ", noColor, colorCursor) + line
	} else {
		line = "  " + line
	}
	if confirmed {
		key := scoring.Answer(q.CorrectAnswer)
		switch {
		case key.Contains(o.Key):
			line = stylize(line+"  ✓", noColor, colorGood)
		case selected:
			line = stylize(line+"  ✗", noColor, colorBad)
		}
	}
	return line
}

func renderExplanation(q catalog.Question, noColor bool) string {
	var b strings.Builder
	b.WriteString(stylize("Explanation", noColor, colorExplain) + "\n")
	key := scoring.Answer(q.CorrectAnswer)
	for _, o := range q.Options {
		mark := " "
		if key.Contains(o.Key) {
			mark = "✓"
		}
		b.WriteString("  " + mark + " " + o.Key + ": " + q.Explanation[o.Key] + "\n")
	}
	if calc := RenderCalculation(q.Calculation, noColor); calc != "" {
		b.WriteString("\n" + calc + "\n")
	}
	return b.String()
}

// renderResults renders the score card of a finished attempt.
func renderResults(q catalog.Quiz, v session.View, noColor bool) string {
	r := v.Result
	var b strings.Builder
	b.WriteString(stylize(bold("Results: "+q.ExamName, noColor), noColor, colorTitle) + "\n\n")
	verdict := stylize("PASSED", noColor, colorGood)
	if !r.Passed {
		verdict = stylize("FAILED", noColor, colorBad)
	}
	b.WriteString(verdict + "  " + fmtInt(r.Percentage) + "%\n\n")
	b.WriteString("Score:          " + formatPoints(r.Score.TotalPoints) + " / " + formatPoints(r.TotalPoints) + "\n")
	b.WriteString("Passing score:  " + formatPoints(r.PassingScore) + "\n")
	b.WriteString("Correct:        " + fmtInt(r.Score.CorrectCount) + " of " + fmtInt(r.TotalQuestions) + "\n")
	b.WriteString("Time:           " + FormatElapsed(r.Elapsed) + "\n")
	return strings.TrimRight(b.String(), "\n")
}

// renderReview renders the review item at cursor with its position.
func renderReview(items []scoring.ReviewItem, cursor int, noColor bool) string {
	if len(items) == 0 {
		return "Nothing to review."
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	it := items[cursor]
	var b strings.Builder
	b.WriteString(stylize("Answer Review", noColor, colorTitle))
	b.WriteString(stylize("   "+fmtInt(cursor+1)+" / "+fmtInt(len(items)), noColor, colorMuted) + "\n\n")
	verdict := stylize("Correct", noColor, colorGood)
	if !it.Correct {
		verdict = stylize("Incorrect", noColor, colorBad)
	}
	b.WriteString("Question #" + it.QuestionID + "  " + verdict + "  " + formatPoints(it.Points) + pointsUnit(it.Points) + "\n")
	b.WriteString(bold(it.Text, noColor) + "\n\n")
	for _, o := range it.Options {
		line := "  " + o.Key + ") " + o.Text
		switch o.Mark {
		case scoring.MarkCorrect:
			line = stylize(line+"  ✓ Correct", noColor, colorGood)
		case scoring.MarkWrongPick:
			line = stylize(line+"  ✗ Your answer", noColor, colorBad)
		}
		if o.Selected && o.Mark == scoring.MarkCorrect {
			line += stylize(" (your answer)", noColor, colorGood)
		}
		b.WriteString(line + "\n")
		if o.Explanation != "" {
			b.WriteString(stylize("       "+o.Explanation, noColor, colorMuted) + "\n")
		}
	}
	if len(it.Submitted) == 0 {
		b.WriteString("\n" + stylize("Not answered.", noColor, colorWarn) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func pointsUnit(p float64) string {
	if p == 1 {
		return " pt"
	}
	return " pts"
}

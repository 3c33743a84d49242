package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataIntegrity marks malformed quiz data. Every *ValidationError matches it.
var ErrDataIntegrity = errors.New("quiz data integrity")

// Issue captures a single validation problem in a quiz document.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	ExamID string
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	name := err.ExamID
	if name == "" {
		name = "quiz"
	}
	return fmt.Sprintf("%s validation failed: %s", name, strings.Join(parts, "; "))
}

func (err *ValidationError) Is(target error) bool { return target == ErrDataIntegrity }

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result(examID string) error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{ExamID: examID, Issues: c.issues}
}

// Normalize trims identifiers, sorts multi-select answer keys and fills in
// derived totals, then validates the result.
func Normalize(q Quiz) (Quiz, error) {
	q.ExamID = strings.TrimSpace(q.ExamID)
	q.ExamName = strings.TrimSpace(q.ExamName)
	questions := make([]Question, len(q.Questions))
	var points float64
	for i, qq := range q.Questions {
		qq.ID = strings.TrimSpace(qq.ID)
		qq.SelectType = SelectMode(strings.ToLower(strings.TrimSpace(string(qq.SelectType))))
		if qq.SelectType == "" {
			qq.SelectType = SelectSingle
		}
		qq.CorrectAnswer = qq.CorrectAnswer.sorted()
		opts := make([]Option, len(qq.Options))
		for j, o := range qq.Options {
			opts[j] = Option{Key: strings.TrimSpace(o.Key), Text: o.Text}
		}
		qq.Options = opts
		questions[i] = qq
		points += qq.Points
	}
	q.Questions = questions
	if q.TotalQuestions == 0 {
		q.TotalQuestions = len(questions)
	}
	if q.TotalPoints == 0 {
		q.TotalPoints = points
	}
	if err := Validate(q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Validate checks the structural invariants of a quiz.
func Validate(q Quiz) error {
	c := &issueCollector{}
	if q.ExamID == "" {
		c.add("examId", "is required")
	}
	if q.ExamName == "" {
		c.add("examName", "is required")
	}
	if len(q.Questions) == 0 {
		c.add("questions", "must include at least one entry")
	}
	if q.PassingScore < 0 {
		c.add("passingScore", "must not be negative")
	}
	if q.TotalPoints > 0 && q.PassingScore > q.TotalPoints {
		c.add("passingScore", fmt.Sprintf("%g exceeds totalPoints %g", q.PassingScore, q.TotalPoints))
	}

	var points float64
	seen := map[string]struct{}{}
	for i, qq := range q.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if qq.ID == "" {
			c.add(prefix+".id", "is required")
		} else if _, dup := seen[qq.ID]; dup {
			c.add(prefix+".id", fmt.Sprintf("duplicate id %q", qq.ID))
		} else {
			seen[qq.ID] = struct{}{}
		}
		validateQuestion(c, prefix, qq)
		points += qq.Points
	}
	if q.TotalPoints > 0 && points > q.TotalPoints {
		c.add("totalPoints", fmt.Sprintf("questions add up to %g, more than %g", points, q.TotalPoints))
	}
	return c.result(q.ExamID)
}

func validateQuestion(c *issueCollector, prefix string, q Question) {
	if strings.TrimSpace(q.Text) == "" {
		c.add(prefix+".questionText", "is required")
	}
	if q.Points < 0 {
		c.add(prefix+".points", "must not be negative")
	}
	if len(q.Options) == 0 {
		c.add(prefix+".options", "must include at least one entry")
	}
	keys := map[string]struct{}{}
	for j, o := range q.Options {
		if o.Key == "" {
			c.add(fmt.Sprintf("%s.options[%d].key", prefix, j), "is required")
			continue
		}
		if _, dup := keys[o.Key]; dup {
			c.add(fmt.Sprintf("%s.options[%d].key", prefix, j), fmt.Sprintf("duplicate key %q", o.Key))
		}
		keys[o.Key] = struct{}{}
	}

	switch q.SelectType {
	case SelectSingle:
		if len(q.CorrectAnswer) != 1 {
			c.add(prefix+".correctAnswer", fmt.Sprintf("single-select needs exactly one key, got %d", len(q.CorrectAnswer)))
		}
	case SelectMultiple:
		if len(q.CorrectAnswer) < 2 {
			c.add(prefix+".correctAnswer", fmt.Sprintf("multiple-select needs at least two keys, got %d", len(q.CorrectAnswer)))
		}
	default:
		c.add(prefix+".selectType", fmt.Sprintf("unsupported select type %q", q.SelectType))
	}
	answer := map[string]struct{}{}
	for _, k := range q.CorrectAnswer {
		if _, ok := keys[k]; !ok {
			c.add(prefix+".correctAnswer", fmt.Sprintf("key %q is not an option", k))
		}
		if _, dup := answer[k]; dup {
			c.add(prefix+".correctAnswer", fmt.Sprintf("duplicate key %q", k))
		}
		answer[k] = struct{}{}
	}

	for _, o := range q.Options {
		if o.Key == "" {
			continue
		}
		if _, ok := q.Explanation[o.Key]; !ok {
			c.add(prefix+".explanation", fmt.Sprintf("missing entry for option %q", o.Key))
		}
	}
}

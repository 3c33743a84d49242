package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SelectMode string

const (
	SelectSingle   SelectMode = "single"
	SelectMultiple SelectMode = "multiple"
)

type Option struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// AnswerKey is the set of correct option keys for a question. On input it
// accepts a bare key ("B"), a comma list ("A,C") or a list (["A","C"]).
type AnswerKey []string

func (k *AnswerKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = splitKeys(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("correctAnswer must be a string or a list of strings")
	}
	*k = AnswerKey(list)
	return nil
}

func (k *AnswerKey) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*k = splitKeys(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*k = AnswerKey(list)
		return nil
	default:
		return fmt.Errorf("line %d: correctAnswer must be a string or a list of strings", node.Line)
	}
}

// String renders the key in the catalog's comma form, e.g. "A,C".
func (k AnswerKey) String() string { return strings.Join(k, ",") }

func splitKeys(s string) AnswerKey {
	parts := strings.Split(s, ",")
	out := make(AnswerKey, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (k AnswerKey) sorted() AnswerKey {
	out := append(AnswerKey(nil), k...)
	sort.Strings(out)
	return out
}

// Attachment is display data (decision tables, state diagrams, code blocks,
// calculations) carried alongside a question. Kind comes from the payload's
// "type" field; the rest of the payload is kept verbatim in Raw.
type Attachment struct {
	Kind string
	Raw  json.RawMessage
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	if len(a.Raw) == 0 {
		return []byte("null"), nil
	}
	return a.Raw, nil
}

func (a *Attachment) UnmarshalJSON(b []byte) error {
	var head struct {
		Type string `json:"type"`
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return fmt.Errorf("attachment must be an object: %w", err)
	}
	a.Kind = head.Type
	if a.Kind == "" {
		a.Kind = head.Kind
	}
	a.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (a *Attachment) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("line %d: attachment must be a mapping: %w", node.Line, err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return a.UnmarshalJSON(raw)
}

// Decode unpacks the payload into v, for renderers that know the kind.
func (a Attachment) Decode(v any) error {
	if len(a.Raw) == 0 {
		return errors.New("empty attachment")
	}
	return json.Unmarshal(a.Raw, v)
}

type Question struct {
	ID                string            `json:"id" yaml:"id"`
	Text              string            `json:"questionText" yaml:"questionText"`
	SelectType        SelectMode        `json:"selectType" yaml:"selectType"`
	CorrectAnswer     AnswerKey         `json:"correctAnswer" yaml:"correctAnswer"`
	LearningObjective string            `json:"learningObjective,omitempty" yaml:"learningObjective"`
	KLevel            string            `json:"kLevel,omitempty" yaml:"kLevel"`
	Points            float64           `json:"points" yaml:"points"`
	Hint              string            `json:"hint,omitempty" yaml:"hint"`
	VisualAid         *Attachment       `json:"visualAid,omitempty" yaml:"visualAid"`
	Calculation       *Attachment       `json:"calculation,omitempty" yaml:"calculation"`
	Options           []Option          `json:"options" yaml:"options"`
	Explanation       map[string]string `json:"explanation" yaml:"explanation"`
}

// OptionKeys returns the option keys in display order.
func (q Question) OptionKeys() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		out = append(out, o.Key)
	}
	return out
}

// HasOption reports whether key is one of the question's option keys.
func (q Question) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// QuizSummary is the catalog listing row.
type QuizSummary struct {
	ExamID           string  `json:"examId"`
	ExamName         string  `json:"examName"`
	Version          string  `json:"version"`
	ReleaseDate      string  `json:"releaseDate,omitempty"`
	SyllabusVersion  string  `json:"syllabusVersion"`
	IsOfficial       bool    `json:"isOfficial"`
	TotalQuestions   int     `json:"totalQuestions"`
	TotalPoints      float64 `json:"totalPoints"`
	PassingScore     float64 `json:"passingScore"`
	ResourceDocument string  `json:"resourceDocument,omitempty"`
}

type Quiz struct {
	ExamID           string     `json:"examId" yaml:"examId"`
	ExamName         string     `json:"examName" yaml:"examName"`
	Version          string     `json:"version" yaml:"version"`
	ReleaseDate      string     `json:"releaseDate,omitempty" yaml:"releaseDate"`
	SyllabusVersion  string     `json:"syllabusVersion" yaml:"syllabusVersion"`
	IsOfficial       bool       `json:"isOfficial" yaml:"isOfficial"`
	TotalQuestions   int        `json:"totalQuestions" yaml:"totalQuestions"`
	TotalPoints      float64    `json:"totalPoints" yaml:"totalPoints"`
	PassingScore     float64    `json:"passingScore" yaml:"passingScore"`
	ResourceDocument string     `json:"resourceDocument,omitempty" yaml:"resourceDocument"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ExamID:           q.ExamID,
		ExamName:         q.ExamName,
		Version:          q.Version,
		ReleaseDate:      q.ReleaseDate,
		SyllabusVersion:  q.SyllabusVersion,
		IsOfficial:       q.IsOfficial,
		TotalQuestions:   q.TotalQuestions,
		TotalPoints:      q.TotalPoints,
		PassingScore:     q.PassingScore,
		ResourceDocument: q.ResourceDocument,
	}
}

// Question looks a question up by id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, qq := range q.Questions {
		if qq.ID == id {
			return qq, true
		}
	}
	return Question{}, false
}

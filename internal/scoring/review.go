package scoring

import "github.com/mind-engage/practice-exam/internal/catalog"

// OptionMark classifies an option in the answer review.
type OptionMark string

const (
	MarkNone      OptionMark = ""
	MarkCorrect   OptionMark = "correct"    // part of the answer key
	MarkWrongPick OptionMark = "wrong_pick" // selected by the user but not in the key
)

type ReviewOption struct {
	Key         string     `json:"key"`
	Text        string     `json:"text"`
	Selected    bool       `json:"selected"`
	Mark        OptionMark `json:"mark,omitempty"`
	Explanation string     `json:"explanation"`
}

type ReviewItem struct {
	QuestionID string         `json:"questionId"`
	Text       string         `json:"questionText"`
	Points     float64        `json:"points"`
	Submitted  Answer         `json:"submitted,omitempty"`
	Correct    bool           `json:"correct"`
	Options    []ReviewOption `json:"options"`
}

// Review builds the post-exam answer review in catalog order.
func Review(quiz catalog.Quiz, answers Answers) []ReviewItem {
	out := make([]ReviewItem, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		a := answers[q.ID]
		item := ReviewItem{
			QuestionID: q.ID,
			Text:       q.Text,
			Points:     q.Points,
			Submitted:  a,
			Correct:    IsCorrect(q, a),
			Options:    make([]ReviewOption, 0, len(q.Options)),
		}
		key := Answer(q.CorrectAnswer)
		for _, o := range q.Options {
			ro := ReviewOption{
				Key:         o.Key,
				Text:        o.Text,
				Selected:    a.Contains(o.Key),
				Explanation: q.Explanation[o.Key],
			}
			switch {
			case key.Contains(o.Key):
				ro.Mark = MarkCorrect
			case ro.Selected:
				ro.Mark = MarkWrongPick
			}
			item.Options = append(item.Options, ro)
		}
		out = append(out, item)
	}
	return out
}

package session

import (
	"context"
	"sort"
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/scoring"
)

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the persisted form of an in-progress session. Questions are
// referenced by id only.
type Snapshot struct {
	Version      int                 `json:"version"`
	AttemptID    string              `json:"attemptId,omitempty"`
	Answers      map[string][]string `json:"answers"`
	Confirmed    []string            `json:"confirmed"`
	Explanations []string            `json:"explanations"`
	Position     int                 `json:"position"`
	StartedAt    time.Time           `json:"startedAt"`
	Order        []string            `json:"order"`
	SavedAt      time.Time           `json:"savedAt"` // diagnostic only
}

// Repository persists snapshots keyed by quiz id. There is a single writer.
type Repository interface {
	Save(ctx context.Context, quizID string, snap Snapshot) error
	// Load returns found=false with a nil error when nothing is stored.
	Load(ctx context.Context, quizID string) (snap Snapshot, found bool, err error)
	Clear(ctx context.Context, quizID string) error
}

// StorageKey is the key a snapshot for quizID is stored under.
func StorageKey(quizID string) string { return "exam-progress-" + quizID }

// Snapshot captures s at savedAt.
func (s Session) Snapshot(savedAt time.Time) Snapshot {
	snap := Snapshot{
		Version:      SnapshotVersion,
		AttemptID:    s.AttemptID,
		Answers:      make(map[string][]string, len(s.Answers)),
		Confirmed:    setKeys(s.Confirmed),
		Explanations: setKeys(s.Explanations),
		Position:     s.Position,
		StartedAt:    s.StartedAt.UTC(),
		Order:        append([]string{}, s.Order...),
		SavedAt:      savedAt.UTC(),
	}
	for k, v := range s.Answers {
		if len(v) > 0 {
			snap.Answers[k] = append([]string(nil), v...)
		}
	}
	return snap
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Rehydrate rebuilds an in-progress session from snap against a freshly
// loaded quiz. Ids the quiz no longer has are dropped from the order and
// from every per-question field; the position is clamped to what is left.
// A snapshot whose order resolves to nothing falls back to catalog order.
func Rehydrate(quiz catalog.Quiz, snap Snapshot) Session {
	known := make(map[string]catalog.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		known[q.ID] = q
	}

	s := New(quiz.ExamID)
	s.AttemptID = snap.AttemptID
	s.State = StateInProgress
	s.StartedAt = snap.StartedAt.UTC()

	seen := map[string]bool{}
	for _, id := range snap.Order {
		if _, ok := known[id]; ok && !seen[id] {
			s.Order = append(s.Order, id)
			seen[id] = true
		}
	}
	if len(s.Order) == 0 {
		for _, q := range quiz.Questions {
			s.Order = append(s.Order, q.ID)
		}
	}

	for id, keys := range snap.Answers {
		q, ok := known[id]
		if !ok {
			continue
		}
		var a scoring.Answer
		for _, k := range keys {
			if q.HasOption(k) {
				a = append(a, k)
			}
		}
		if a = scoring.Canonical(a); len(a) > 0 {
			s.Answers[id] = a
		}
	}
	for _, id := range snap.Confirmed {
		if len(s.Answers[id]) > 0 {
			s.Confirmed[id] = true
		}
	}
	for _, id := range snap.Explanations {
		if s.Confirmed[id] {
			s.Explanations[id] = true
		}
	}

	s.Position = snap.Position
	if s.Position > len(s.Order)-1 {
		s.Position = len(s.Order) - 1
	}
	if s.Position < 0 {
		s.Position = 0
	}
	return s
}

package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when an exam id does not resolve to a quiz.
var ErrNotFound = errors.New("quiz not found")

// Reader is the read side of the catalog.
type Reader interface {
	ListQuizzes(ctx context.Context) ([]QuizSummary, error)
	GetQuizDetail(ctx context.Context, examID string) (Quiz, error)
}

// Store adds the import path used by the loader.
type Store interface {
	Reader
	PutQuiz(ctx context.Context, q Quiz) error
}

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
}

// NewInMemoryStore returns a Store backed by a map. Quizzes are validated on
// the way in, same as the SQL store.
func NewInMemoryStore(quizzes ...Quiz) (Store, error) {
	m := &memoryStore{quizzes: map[string]Quiz{}}
	for _, q := range quizzes {
		if err := m.PutQuiz(context.Background(), q); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	q, err := Normalize(q)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ExamID] = q
	return nil
}

func (m *memoryStore) ListQuizzes(_ context.Context) ([]QuizSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QuizSummary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, q.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExamID < out[j].ExamID })
	return out, nil
}

func (m *memoryStore) GetQuizDetail(_ context.Context, examID string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[examID]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	qs := make([]Question, len(q.Questions))
	copy(qs, q.Questions)
	q.Questions = qs
	return q, nil
}

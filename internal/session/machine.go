package session

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// Machine owns the current Session for one quiz and applies intents to it.
// It is not safe for concurrent use; intents are handled one at a time.
type Machine struct {
	quiz   catalog.Quiz
	repo   Repository
	now    func() time.Time
	rng    *rand.Rand
	newID  func() string
	logger *log.Logger

	cur Session
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }
func WithRand(r *rand.Rand) Option          { return func(m *Machine) { m.rng = r } }
func WithLogger(l *log.Logger) Option       { return func(m *Machine) { m.logger = l } }

// WithAttemptIDs overrides how attempt ids are generated.
func WithAttemptIDs(fn func() string) Option { return func(m *Machine) { m.newID = fn } }

// NewMachine returns a machine in NotStarted for quiz. repo may be nil, in
// which case nothing is persisted.
func NewMachine(quiz catalog.Quiz, repo Repository, opts ...Option) *Machine {
	m := &Machine{
		quiz:   quiz,
		repo:   repo,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:  uuid.NewString,
		logger: log.Default(),
		cur:    New(quiz.ExamID),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) Quiz() catalog.Quiz { return m.quiz }

// Session returns the current value. Callers get their own copy.
func (m *Machine) Session() Session { return m.cur.clone() }

func (m *Machine) State() State { return m.cur.State }

// Resume rehydrates a stored snapshot straight into InProgress. It reports
// whether a snapshot was found. A load failure leaves the machine in
// NotStarted and is returned as a persistence error.
func (m *Machine) Resume(ctx context.Context) (bool, error) {
	if m.cur.State != StateNotStarted {
		return false, invalid("resume requires a session that has not started (state %s)", m.cur.State)
	}
	if m.repo == nil {
		return false, nil
	}
	snap, found, err := m.repo.Load(ctx, m.quiz.ExamID)
	if err != nil {
		m.logger.Printf("session: load snapshot for %s: %v", m.quiz.ExamID, err)
		return false, &PersistenceError{Op: "load", Err: err}
	}
	if !found {
		return false, nil
	}
	m.cur = Rehydrate(m.quiz, snap)
	if dropped := len(snap.Order) - len(m.cur.Order); dropped > 0 {
		m.logger.Printf("session: %s resumed with %d unknown question(s) dropped", m.quiz.ExamID, dropped)
	}
	return true, nil
}

// Start shuffles the quiz questions and begins the attempt.
func (m *Machine) Start(ctx context.Context) error {
	ids := make([]string, len(m.quiz.Questions))
	for i, q := range m.quiz.Questions {
		ids[i] = q.ID
	}
	shuffle(ids, m.rng)
	return m.apply(ctx, func(s Session) (Session, error) {
		return s.start(m.newID(), ids, m.now())
	})
}

// shuffle is Fisher-Yates: for i from the last index down to 1, swap i with
// a uniformly chosen j in [0, i].
func shuffle(ids []string, r *rand.Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func (m *Machine) SelectAnswer(ctx context.Context, questionID, key string) error {
	q, err := m.question(questionID)
	if err != nil {
		return err
	}
	return m.apply(ctx, func(s Session) (Session, error) { return s.selectAnswer(q, key) })
}

func (m *Machine) Confirm(ctx context.Context, questionID string) error {
	if _, err := m.question(questionID); err != nil {
		return err
	}
	return m.apply(ctx, func(s Session) (Session, error) { return s.confirm(questionID) })
}

func (m *Machine) ToggleExplanation(ctx context.Context, questionID string) error {
	if _, err := m.question(questionID); err != nil {
		return err
	}
	return m.apply(ctx, func(s Session) (Session, error) { return s.toggleExplanation(questionID) })
}

func (m *Machine) GoNext(ctx context.Context) error {
	return m.apply(ctx, func(s Session) (Session, error) { return s.goTo(s.Position + 1) })
}

func (m *Machine) GoPrevious(ctx context.Context) error {
	return m.apply(ctx, func(s Session) (Session, error) { return s.goTo(s.Position - 1) })
}

// GoTo jumps to index i of the presentation order, clamped to its bounds.
func (m *Machine) GoTo(ctx context.Context, i int) error {
	return m.apply(ctx, func(s Session) (Session, error) { return s.goTo(i) })
}

func (m *Machine) Finish(ctx context.Context) error {
	return m.apply(ctx, func(s Session) (Session, error) { return s.finish(m.now()) })
}

// Review and CloseReview flip the review view of a finished session. The
// flag is presentation state and is not persisted.
func (m *Machine) Review() error {
	next, err := m.cur.review(true)
	if err != nil {
		return err
	}
	m.cur = next
	return nil
}

func (m *Machine) CloseReview() error {
	next, err := m.cur.review(false)
	if err != nil {
		return err
	}
	m.cur = next
	return nil
}

// Restart is legal in any state. It resets to NotStarted and erases the
// stored snapshot.
func (m *Machine) Restart(ctx context.Context) error {
	m.cur = New(m.quiz.ExamID)
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Clear(ctx, m.quiz.ExamID); err != nil {
		m.logger.Printf("session: clear snapshot for %s: %v", m.quiz.ExamID, err)
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

func (m *Machine) question(id string) (catalog.Question, error) {
	q, ok := m.quiz.Question(id)
	if !ok {
		return catalog.Question{}, fmt.Errorf("%w: question %s in quiz %s", ErrNotFound, id, m.quiz.ExamID)
	}
	return q, nil
}

// apply runs a transition, installs the result and then snapshots it. The new
// state stays in effect when the snapshot write fails.
func (m *Machine) apply(ctx context.Context, fn func(Session) (Session, error)) error {
	prev := m.cur
	next, err := fn(prev)
	if err != nil {
		return err
	}
	m.cur = next
	if sameSession(prev, next) {
		return nil
	}
	return m.persist(ctx)
}

func (m *Machine) persist(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Save(ctx, m.quiz.ExamID, m.cur.Snapshot(m.now())); err != nil {
		m.logger.Printf("session: save snapshot for %s: %v", m.quiz.ExamID, err)
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// sameSession reports whether a transition was a no-op, e.g. a navigation
// past either end or a repeated confirm.
func sameSession(a, b Session) bool {
	if a.State != b.State || a.Position != b.Position || a.AttemptID != b.AttemptID ||
		!a.StartedAt.Equal(b.StartedAt) || a.Elapsed != b.Elapsed ||
		len(a.Order) != len(b.Order) || len(a.Answers) != len(b.Answers) {
		return false
	}
	for i := range a.Order {
		if a.Order[i] != b.Order[i] {
			return false
		}
	}
	for k, v := range a.Answers {
		w := b.Answers[k]
		if len(v) != len(w) {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	return sameFlags(a.Confirmed, b.Confirmed) && sameFlags(a.Explanations, b.Explanations)
}

func sameFlags(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

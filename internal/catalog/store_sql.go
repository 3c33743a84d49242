package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mind-engage/practice-exam/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh}
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]QuizSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exam_id, exam_name, version, release_date, syllabus_version, is_official,
		       total_questions, total_points, passing_score, resource_document
		FROM quizzes
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := []QuizSummary{}
	for rows.Next() {
		var (
			sum      QuizSummary
			official int
		)
		if err := rows.Scan(&sum.ExamID, &sum.ExamName, &sum.Version, &sum.ReleaseDate, &sum.SyllabusVersion,
			&official, &sum.TotalQuestions, &sum.TotalPoints, &sum.PassingScore, &sum.ResourceDocument); err != nil {
			return nil, err
		}
		sum.IsOfficial = official != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuizDetail(ctx context.Context, examID string) (Quiz, error) {
	var (
		quizRowID int64
		official  int
		q         Quiz
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, exam_id, exam_name, version, release_date, syllabus_version, is_official,
		       total_questions, total_points, passing_score, resource_document
		FROM quizzes WHERE exam_id=$1`, examID).
		Scan(&quizRowID, &q.ExamID, &q.ExamName, &q.Version, &q.ReleaseDate, &q.SyllabusVersion,
			&official, &q.TotalQuestions, &q.TotalPoints, &q.PassingScore, &q.ResourceDocument)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	q.IsOfficial = official != 0

	questions, index, err := s.loadQuestions(ctx, quizRowID)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.loadOptions(ctx, quizRowID, questions, index); err != nil {
		return Quiz{}, err
	}
	if err := s.loadExplanations(ctx, quizRowID, questions, index); err != nil {
		return Quiz{}, err
	}
	q.Questions = questions

	// rows written by hand bypass the importer, so check them on the way out too
	if err := Validate(q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) loadQuestions(ctx context.Context, quizRowID int64) ([]Question, map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_key, question_text, select_type, correct_answer,
		       learning_objective, k_level, points, hint, visual_aid, calculation
		FROM questions WHERE quiz_id=$1
		ORDER BY position`, quizRowID)
	if err != nil {
		return nil, nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	index := map[int64]int{}
	for rows.Next() {
		var (
			rowID             int64
			q                 Question
			selectType        string
			correct           string
			visual, calculate sql.NullString
		)
		if err := rows.Scan(&rowID, &q.ID, &q.Text, &selectType, &correct,
			&q.LearningObjective, &q.KLevel, &q.Points, &q.Hint, &visual, &calculate); err != nil {
			return nil, nil, err
		}
		q.SelectType = SelectMode(selectType)
		if err := json.Unmarshal([]byte(correct), &q.CorrectAnswer); err != nil {
			return nil, nil, fmt.Errorf("question %s: correct_answer: %w", q.ID, err)
		}
		if q.VisualAid, err = decodeAttachment(visual); err != nil {
			return nil, nil, fmt.Errorf("question %s: visual_aid: %w", q.ID, err)
		}
		if q.Calculation, err = decodeAttachment(calculate); err != nil {
			return nil, nil, fmt.Errorf("question %s: calculation: %w", q.ID, err)
		}
		q.Explanation = map[string]string{}
		index[rowID] = len(out)
		out = append(out, q)
	}
	return out, index, rows.Err()
}

func (s *SQLStore) loadOptions(ctx context.Context, quizRowID int64, questions []Question, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.question_id, o.option_key, o.option_text
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id=$1
		ORDER BY o.question_id, o.sort_order`, quizRowID)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			qid int64
			o   Option
		)
		if err := rows.Scan(&qid, &o.Key, &o.Text); err != nil {
			return err
		}
		if i, ok := index[qid]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return rows.Err()
}

func (s *SQLStore) loadExplanations(ctx context.Context, quizRowID int64, questions []Question, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.question_id, e.option_key, e.explanation
		FROM question_explanations e
		JOIN questions q ON q.id = e.question_id
		WHERE q.quiz_id=$1`, quizRowID)
	if err != nil {
		return fmt.Errorf("load explanations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			qid       int64
			key, text string
		)
		if err := rows.Scan(&qid, &key, &text); err != nil {
			return err
		}
		if i, ok := index[qid]; ok {
			questions[i].Explanation[key] = text
		}
	}
	return rows.Err()
}

// PutQuiz writes a quiz and all of its questions in one transaction,
// replacing any quiz already stored under the same exam id.
func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	q, err := Normalize(q)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := deleteQuiz(ctx, tx, q.ExamID); err != nil {
			return err
		}
		official := 0
		if q.IsOfficial {
			official = 1
		}
		var quizRowID int64
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO quizzes (exam_id, exam_name, version, release_date, syllabus_version, is_official,
			                     total_questions, total_points, passing_score, resource_document)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id`,
			q.ExamID, q.ExamName, q.Version, q.ReleaseDate, q.SyllabusVersion, official,
			q.TotalQuestions, q.TotalPoints, q.PassingScore, q.ResourceDocument).Scan(&quizRowID); err != nil {
			return fmt.Errorf("insert quiz %s: %w", q.ExamID, err)
		}
		for i, qq := range q.Questions {
			if err := insertQuestion(ctx, tx, quizRowID, i, qq); err != nil {
				return fmt.Errorf("insert question %s: %w", qq.ID, err)
			}
		}
		return nil
	})
}

func deleteQuiz(ctx context.Context, tx *sql.Tx, examID string) error {
	stmts := []string{
		`DELETE FROM question_options WHERE question_id IN
			(SELECT q.id FROM questions q JOIN quizzes z ON z.id = q.quiz_id WHERE z.exam_id=$1)`,
		`DELETE FROM question_explanations WHERE question_id IN
			(SELECT q.id FROM questions q JOIN quizzes z ON z.id = q.quiz_id WHERE z.exam_id=$1)`,
		`DELETE FROM questions WHERE quiz_id IN (SELECT id FROM quizzes WHERE exam_id=$1)`,
		`DELETE FROM quizzes WHERE exam_id=$1`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, examID); err != nil {
			return fmt.Errorf("replace quiz %s: %w", examID, err)
		}
	}
	return nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, quizRowID int64, position int, q Question) error {
	correct, err := json.Marshal([]string(q.CorrectAnswer))
	if err != nil {
		return err
	}
	var questionRowID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO questions (quiz_id, position, question_key, question_text, select_type, correct_answer,
		                       learning_objective, k_level, points, hint, visual_aid, calculation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`,
		quizRowID, position, q.ID, q.Text, string(q.SelectType), string(correct),
		q.LearningObjective, q.KLevel, q.Points, q.Hint,
		encodeAttachment(q.VisualAid), encodeAttachment(q.Calculation)).Scan(&questionRowID); err != nil {
		return err
	}
	for i, o := range q.Options {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO question_options (question_id, option_key, option_text, sort_order) VALUES ($1,$2,$3,$4)`,
			questionRowID, o.Key, o.Text, i); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(q.Explanation))
	for k := range q.Explanation {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO question_explanations (question_id, option_key, explanation) VALUES ($1,$2,$3)`,
			questionRowID, k, q.Explanation[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeAttachment(a *Attachment) sql.NullString {
	if a == nil || len(a.Raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(a.Raw), Valid: true}
}

func decodeAttachment(s sql.NullString) (*Attachment, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var a Attachment
	if err := json.Unmarshal([]byte(s.String), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

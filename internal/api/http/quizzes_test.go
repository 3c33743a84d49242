package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

func testQuiz() catalog.Quiz {
	return catalog.Quiz{
		ExamID:       "ctfl-a",
		ExamName:     "Sample A",
		Version:      "1.0",
		PassingScore: 1,
		Questions: []catalog.Question{{
			ID:            "q1",
			Text:          "Pick B",
			SelectType:    catalog.SelectSingle,
			CorrectAnswer: catalog.AnswerKey{"B"},
			Points:        1,
			Options:       []catalog.Option{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}},
			Explanation:   map[string]string{"A": "no", "B": "yes"},
		}},
	}
}

func testRouter(t *testing.T, store catalog.Reader) http.Handler {
	t.Helper()
	return NewRouter(store, RouterOptions{
		CORSOrigins: []string{"http://localhost:3000"},
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	store, _ := catalog.NewInMemoryStore()
	rec, body := do(t, testRouter(t, store), "GET", "/api/health")
	if rec.Code != 200 || body["success"] != true || body["message"] != "API server is running" {
		t.Fatalf("code %d body %v", rec.Code, body)
	}
	if body["timestamp"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("timestamp %v", body["timestamp"])
	}
}

func TestListQuizzes(t *testing.T) {
	store, err := catalog.NewInMemoryStore(testQuiz())
	if err != nil {
		t.Fatal(err)
	}
	rec, body := do(t, testRouter(t, store), "GET", "/api/quizzes")
	if rec.Code != 200 || body["success"] != true {
		t.Fatalf("code %d body %v", rec.Code, body)
	}
	list, ok := body["data"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("data %v", body["data"])
	}
	row := list[0].(map[string]any)
	if row["examId"] != "ctfl-a" || row["totalQuestions"] != float64(1) || row["totalPoints"] != float64(1) {
		t.Fatalf("row %v", row)
	}
	if _, has := row["questions"]; has {
		t.Fatal("listing must not carry questions")
	}
}

func TestListQuizzesEmptyIsArray(t *testing.T) {
	store, _ := catalog.NewInMemoryStore()
	rec := httptest.NewRecorder()
	testRouter(t, store).ServeHTTP(rec, httptest.NewRequest("GET", "/api/quizzes", nil))
	if got := rec.Body.String(); got != "{\"success\":true,\"data\":[]}\n" {
		t.Fatalf("body %q", got)
	}
}

func TestGetQuiz(t *testing.T) {
	store, _ := catalog.NewInMemoryStore(testQuiz())
	rec, body := do(t, testRouter(t, store), "GET", "/api/quiz/ctfl-a")
	if rec.Code != 200 {
		t.Fatalf("code %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	qs := data["questions"].([]any)
	q := qs[0].(map[string]any)
	if q["questionText"] != "Pick B" || q["selectType"] != "single" {
		t.Fatalf("question %v", q)
	}
}

func TestGetQuizNotFound(t *testing.T) {
	store, _ := catalog.NewInMemoryStore(testQuiz())
	rec, body := do(t, testRouter(t, store), "GET", "/api/quiz/nope")
	if rec.Code != 404 || body["success"] != false || body["error"] != "Quiz not found" {
		t.Fatalf("code %d body %v", rec.Code, body)
	}
}

type brokenStore struct{}

func (brokenStore) ListQuizzes(context.Context) ([]catalog.QuizSummary, error) {
	return nil, errors.New("db down")
}

func (brokenStore) GetQuizDetail(context.Context, string) (catalog.Quiz, error) {
	return catalog.Quiz{}, errors.New("db down")
}

func TestStoreFailures(t *testing.T) {
	h := testRouter(t, brokenStore{})
	rec, body := do(t, h, "GET", "/api/quiz/x")
	if rec.Code != 500 || body["error"] != "Failed to fetch quiz" {
		t.Fatalf("detail: %d %v", rec.Code, body)
	}
	rec, body = do(t, h, "GET", "/api/quizzes")
	if rec.Code != 500 || body["error"] != "Failed to fetch quizzes" {
		t.Fatalf("list: %d %v", rec.Code, body)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	store, _ := catalog.NewInMemoryStore()
	rec, body := do(t, testRouter(t, store), "GET", "/api/nothing")
	if rec.Code != 404 || body["error"] != "Route not found" {
		t.Fatalf("code %d body %v", rec.Code, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	store, _ := catalog.NewInMemoryStore()
	req := httptest.NewRequest("OPTIONS", "/api/quizzes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	testRouter(t, store).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestProbes(t *testing.T) {
	store, _ := catalog.NewInMemoryStore()
	h := testRouter(t, store)
	for _, p := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", p, nil))
		if rec.Code != 200 {
			t.Fatalf("%s: %d", p, rec.Code)
		}
	}
}

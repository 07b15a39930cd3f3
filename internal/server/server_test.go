package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/seed"
	"github.com/dukerupert/choreboard/internal/store"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := seed.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	seeder := seed.NewSeeder(store.NewPersonStore(db), store.NewCategoryStore(db), store.NewTaskStore(db), logger)
	if _, err := seeder.Run(catalog, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return New(db, Options{ResetRateLimit: 2}, logger).Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.RemoteAddr = "192.168.1.20:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

type standing struct {
	Rank   int    `json:"rank"`
	Person string `json:"person"`
	Total  int    `json:"total"`
}

func scoreboard(t *testing.T, h http.Handler) map[string]standing {
	t.Helper()
	rec := do(t, h, "GET", "/api/scoreboard", nil)
	expectStatus(t, rec, http.StatusOK)
	body := decode[struct {
		Standings []standing `json:"standings"`
	}](t, rec)
	out := make(map[string]standing)
	for _, s := range body.Standings {
		out[s.Person] = s
	}
	return out
}

func TestHealth(t *testing.T) {
	h := setupServer(t)
	rec := do(t, h, "GET", "/health", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestStateOnFreshDatabase(t *testing.T) {
	h := setupServer(t)
	rec := do(t, h, "GET", "/api/state", nil)
	expectStatus(t, rec, http.StatusOK)

	state := decode[struct {
		People []struct {
			Name  string `json:"name"`
			Total int    `json:"total"`
		} `json:"people"`
		Tasks []struct {
			ID          string `json:"id"`
			BasePoints  int    `json:"base_points"`
			FinalPoints int    `json:"final_points"`
		} `json:"tasks"`
		CompletedTasks []any `json:"completed_tasks"`
	}](t, rec)

	if len(state.People) != 2 || state.People[0].Name != "Alba" {
		t.Errorf("people = %+v", state.People)
	}
	if len(state.Tasks) != 10 {
		t.Fatalf("tasks = %d, want 10", len(state.Tasks))
	}
	for _, task := range state.Tasks {
		if task.BasePoints != 25 || task.FinalPoints != 25 {
			t.Errorf("task %s points = %d/%d, want 25/25", task.ID, task.BasePoints, task.FinalPoints)
		}
	}
	if state.CompletedTasks == nil || len(state.CompletedTasks) != 0 {
		t.Errorf("completed tasks = %v, want empty list", state.CompletedTasks)
	}
}

func TestPersonalizedCompletionFlow(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, "PUT", "/api/preferences/wash-dishes", map[string]string{"person": "Alba", "state": "me_gusta"})
	expectStatus(t, rec, http.StatusOK)

	rec = do(t, h, "GET", "/api/tasks/wash-dishes/quote?person=Alba", nil)
	expectStatus(t, rec, http.StatusOK)
	q := decode[struct {
		Base     int `json:"base_points"`
		Modifier int `json:"modifier"`
		Final    int `json:"final_points"`
	}](t, rec)
	if q.Base != 25 || q.Modifier != -10 || q.Final != 15 {
		t.Errorf("quote = %+v, want 25/-10/15", q)
	}

	// David has not classified the task and keeps the base value.
	rec = do(t, h, "GET", "/api/tasks/wash-dishes/quote?person=David", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[struct {
		Final int `json:"final_points"`
	}](t, rec); got.Final != 25 {
		t.Errorf("David final = %d, want 25", got.Final)
	}

	rec = do(t, h, "POST", "/api/completions", map[string]string{"person": "Alba", "task_id": "wash-dishes"})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[struct {
		Success    bool `json:"success"`
		Total      int  `json:"total"`
		Completion struct {
			ID       int64  `json:"id"`
			Points   int    `json:"points"`
			TaskName string `json:"task_name"`
		} `json:"completion"`
	}](t, rec)
	if !created.Success || created.Completion.Points != 15 || created.Total != 15 {
		t.Errorf("completion = %+v", created)
	}
	if created.Completion.TaskName != "Fregar los platos" {
		t.Errorf("task name = %q", created.Completion.TaskName)
	}

	board := scoreboard(t, h)
	if board["Alba"].Total != 15 || board["Alba"].Rank != 1 {
		t.Errorf("Alba = %+v, want 15 at rank 1", board["Alba"])
	}
	if board["David"].Total != 0 || board["David"].Rank != 2 {
		t.Errorf("David = %+v, want 0 at rank 2", board["David"])
	}

	// Later preference changes do not touch the frozen ledger value.
	do(t, h, "PUT", "/api/preferences/wash-dishes", map[string]string{"person": "Alba", "state": "odio"})
	if got := scoreboard(t, h)["Alba"].Total; got != 15 {
		t.Errorf("Alba total after preference change = %d, want 15", got)
	}

	id := created.Completion.ID
	rec = do(t, h, "PUT", "/api/completions/"+itoa(id)+"/extra-points", map[string]int{"extra_points": -10})
	expectStatus(t, rec, http.StatusOK)
	extra := decode[struct {
		Message string `json:"message"`
	}](t, rec)
	if extra.Message != "-10 puntos de penalización aplicados" {
		t.Errorf("message = %q", extra.Message)
	}
	if got := scoreboard(t, h)["Alba"].Total; got != 5 {
		t.Errorf("Alba total = %d, want 5", got)
	}

	rec = do(t, h, "PUT", "/api/completions/"+itoa(id)+"/extra-points", map[string]int{"extra_points": 11})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = do(t, h, "PUT", "/api/completions/9999/extra-points", map[string]int{"extra_points": 3})
	expectStatus(t, rec, http.StatusNotFound)

	rec = do(t, h, "DELETE", "/api/completions/"+itoa(id), nil)
	expectStatus(t, rec, http.StatusOK)
	if got := scoreboard(t, h)["Alba"].Total; got != 0 {
		t.Errorf("Alba total after delete = %d, want 0", got)
	}
}

func TestRatingsChangeBasePoints(t *testing.T) {
	h := setupServer(t)

	for _, p := range []int{0, 51} {
		rec := do(t, h, "POST", "/api/tasks/vacuum/ratings", map[string]any{"person": "Alba", "points": p})
		expectStatus(t, rec, http.StatusBadRequest)
		if body := decode[map[string]any](t, rec); body["success"] != false {
			t.Errorf("body = %v, want success false", body)
		}
	}

	rec := do(t, h, "POST", "/api/tasks/vacuum/ratings", map[string]any{"person": "Alba", "points": 30})
	expectStatus(t, rec, http.StatusOK)
	rec = do(t, h, "POST", "/api/tasks/vacuum/ratings", map[string]any{"person": "David", "points": 21})
	expectStatus(t, rec, http.StatusOK)
	body := decode[struct {
		BasePoints int `json:"base_points"`
	}](t, rec)
	if body.BasePoints != 26 {
		t.Errorf("base points = %d, want 26", body.BasePoints)
	}

	rec = do(t, h, "POST", "/api/ratings", map[string]any{
		"person":  "David",
		"ratings": map[string]int{"vacuum": 10, "mop-floor": 40},
	})
	expectStatus(t, rec, http.StatusOK)

	rec = do(t, h, "GET", "/api/tasks/vacuum", nil)
	expectStatus(t, rec, http.StatusOK)
	task := decode[struct {
		BasePoints int   `json:"base_points"`
		Ratings    []any `json:"ratings"`
	}](t, rec)
	if task.BasePoints != 20 || len(task.Ratings) != 2 {
		t.Errorf("vacuum = %+v, want base 20 from 2 ratings", task)
	}

	rec = do(t, h, "POST", "/api/ratings", map[string]any{
		"person":  "David",
		"ratings": map[string]int{"vacuum": 45, "mop-floor": 0},
	})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = do(t, h, "GET", "/api/tasks/vacuum", nil)
	if got := decode[struct {
		BasePoints int `json:"base_points"`
	}](t, rec); got.BasePoints != 20 {
		t.Errorf("base after rejected batch = %d, want 20", got.BasePoints)
	}
}

func TestInputErrors(t *testing.T) {
	h := setupServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing person", "POST", "/api/completions", map[string]string{"task_id": "vacuum"}, http.StatusBadRequest},
		{"unknown person", "POST", "/api/completions", map[string]string{"person": "Zoe", "task_id": "vacuum"}, http.StatusNotFound},
		{"unknown task", "POST", "/api/completions", map[string]string{"person": "Alba", "task_id": "fly"}, http.StatusNotFound},
		{"zero points override", "POST", "/api/completions", map[string]any{"person": "Alba", "task_id": "vacuum", "points": 0}, http.StatusBadRequest},
		{"bad json", "POST", "/api/completions", "not an object", http.StatusBadRequest},
		{"unknown bucket", "PUT", "/api/preferences/vacuum", map[string]string{"person": "Alba", "state": "meh"}, http.StatusBadRequest},
		{"quote unknown person", "GET", "/api/tasks/vacuum/quote?person=Zoe", nil, http.StatusNotFound},
		{"board without person", "GET", "/api/preferences", nil, http.StatusBadRequest},
		{"task without points", "POST", "/api/tasks", map[string]any{"id": "iron", "name": "Planchar"}, http.StatusBadRequest},
		{"task bad slug", "POST", "/api/tasks", map[string]any{"id": "Iron Clothes", "name": "Planchar", "points": 20}, http.StatusBadRequest},
		{"task unknown category", "POST", "/api/tasks", map[string]any{"id": "iron", "name": "Planchar", "points": 20, "category_id": "plancha"}, http.StatusBadRequest},
		{"duplicate task", "POST", "/api/tasks", map[string]any{"id": "vacuum", "name": "Aspirar", "points": 20}, http.StatusConflict},
		{"bad completion id", "DELETE", "/api/completions/abc", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			expectStatus(t, rec, tt.want)
		})
	}
}

func TestBatchCompletionIsAtomic(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, "POST", "/api/completions/batch", map[string]any{
		"person": "David",
		"tasks":  []map[string]any{{"task_id": "vacuum"}, {"task_id": "fly"}},
	})
	expectStatus(t, rec, http.StatusNotFound)
	if got := scoreboard(t, h)["David"].Total; got != 0 {
		t.Errorf("David total = %d, want 0", got)
	}

	rec = do(t, h, "POST", "/api/completions/batch", map[string]any{
		"person": "David",
		"tasks":  []map[string]any{{"task_id": "vacuum"}, {"task_id": "mop-floor", "points": 40}},
	})
	expectStatus(t, rec, http.StatusCreated)
	body := decode[struct {
		Completions []any `json:"completions"`
		Total       int   `json:"total"`
	}](t, rec)
	if len(body.Completions) != 2 || body.Total != 65 {
		t.Errorf("batch = %+v, want 2 completions totalling 65", body)
	}
}

func TestSaveBoard(t *testing.T) {
	h := setupServer(t)

	do(t, h, "PUT", "/api/preferences/cook-meal", map[string]string{"person": "David", "state": "odio"})

	rec := do(t, h, "PUT", "/api/preferences", map[string]any{
		"person":      "David",
		"preferences": map[string]string{"vacuum": "me_cuesta", "do-laundry": "me_gusta"},
	})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[struct {
		Count int `json:"count"`
	}](t, rec); got.Count != 2 {
		t.Errorf("count = %d, want 2", got.Count)
	}

	rec = do(t, h, "GET", "/api/preferences?person=David", nil)
	expectStatus(t, rec, http.StatusOK)
	board := decode[struct {
		Columns []struct {
			State string `json:"state"`
			Tasks []struct {
				ID string `json:"id"`
			} `json:"tasks"`
		} `json:"columns"`
	}](t, rec)
	byState := make(map[string]int)
	for _, c := range board.Columns {
		byState[c.State] = len(c.Tasks)
	}
	if byState["unassigned"] != 8 || byState["me_cuesta"] != 1 || byState["me_gusta"] != 1 || byState["odio"] != 0 {
		t.Errorf("column sizes = %v", byState)
	}

	rec = do(t, h, "PUT", "/api/preferences", map[string]any{
		"person":      "David",
		"preferences": map[string]string{"fly": "odio"},
	})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestResetKeepsPreferencesAndIsRateLimited(t *testing.T) {
	h := setupServer(t)

	do(t, h, "PUT", "/api/preferences/vacuum", map[string]string{"person": "Alba", "state": "odio"})
	do(t, h, "POST", "/api/tasks/vacuum/ratings", map[string]any{"person": "Alba", "points": 40})
	do(t, h, "POST", "/api/completions", map[string]string{"person": "Alba", "task_id": "vacuum"})
	if got := scoreboard(t, h)["Alba"].Total; got != 50 {
		t.Fatalf("Alba total = %d, want 50 (40 base + 10 odio)", got)
	}

	rec := do(t, h, "POST", "/api/reset", nil)
	expectStatus(t, rec, http.StatusOK)
	res := decode[struct {
		Deleted struct {
			Completions int `json:"completions"`
			Ratings     int `json:"ratings"`
		} `json:"deleted"`
	}](t, rec)
	if res.Deleted.Completions != 1 || res.Deleted.Ratings != 1 {
		t.Errorf("deleted = %+v", res.Deleted)
	}

	for name, s := range scoreboard(t, h) {
		if s.Total != 0 {
			t.Errorf("%s total = %d, want 0", name, s.Total)
		}
	}

	rec = do(t, h, "GET", "/api/tasks/vacuum/quote?person=Alba", nil)
	if got := decode[struct {
		Base  int `json:"base_points"`
		Final int `json:"final_points"`
	}](t, rec); got.Base != 25 || got.Final != 35 {
		t.Errorf("quote after reset = %+v, want base 25 and preference kept (35)", got)
	}

	expectStatus(t, do(t, h, "POST", "/api/reset", nil), http.StatusOK)
	expectStatus(t, do(t, h, "POST", "/api/reset", nil), http.StatusTooManyRequests)
}

func TestCategoryDeleteUncategorizesTasks(t *testing.T) {
	h := setupServer(t)

	expectStatus(t, do(t, h, "DELETE", "/api/categories/ropa", nil), http.StatusOK)

	rec := do(t, h, "GET", "/api/tasks/do-laundry", nil)
	expectStatus(t, rec, http.StatusOK)
	body := decode[struct {
		Task struct {
			Categorized bool `json:"categorized"`
			Category    struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"task"`
	}](t, rec)
	if body.Task.Categorized || body.Task.Category.Name != "Sin categoría" {
		t.Errorf("task category = %+v", body.Task)
	}

	expectStatus(t, do(t, h, "DELETE", "/api/categories/ropa", nil), http.StatusNotFound)
}

func TestStats(t *testing.T) {
	h := setupServer(t)
	do(t, h, "POST", "/api/completions", map[string]string{"person": "David", "task_id": "vacuum"})

	rec := do(t, h, "GET", "/api/stats", nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decode[struct {
		People []struct {
			Person    string `json:"person"`
			Completed int    `json:"completed"`
		} `json:"people"`
		Catalog struct {
			Tasks         int     `json:"tasks"`
			Categories    int     `json:"categories"`
			AveragePoints float64 `json:"average_points"`
		} `json:"catalog"`
	}](t, rec)
	if stats.Catalog.Tasks != 10 || stats.Catalog.Categories != 4 || stats.Catalog.AveragePoints != 25 {
		t.Errorf("catalog = %+v", stats.Catalog)
	}
	if len(stats.People) != 2 || stats.People[1].Person != "David" || stats.People[1].Completed != 1 {
		t.Errorf("people = %+v", stats.People)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestBuckets(t *testing.T) {
	h := setupServer(t)
	rec := do(t, h, "GET", "/api/preferences/buckets", nil)
	expectStatus(t, rec, http.StatusOK)

	buckets := decode[[]struct {
		Value    string `json:"value"`
		Modifier int    `json:"modifier"`
	}](t, rec)
	want := []int{10, 5, 0, -5, -10}
	if len(buckets) != len(want) {
		t.Fatalf("buckets = %d, want %d", len(buckets), len(want))
	}
	for i, b := range buckets {
		if b.Modifier != want[i] {
			t.Errorf("%s modifier = %d, want %d", b.Value, b.Modifier, want[i])
		}
	}
}

func TestPaddedPersonNamesResolveToRoster(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, "POST", "/api/completions", map[string]any{"person": " Alba", "task_id": "vacuum", "points": 15})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[struct {
		Total      int `json:"total"`
		Completion struct {
			PersonName string `json:"person_name"`
		} `json:"completion"`
	}](t, rec)
	if created.Completion.PersonName != "Alba" || created.Total != 15 {
		t.Errorf("completion = %+v, want stored for Alba with total 15", created)
	}
	if got := scoreboard(t, h)["Alba"].Total; got != 15 {
		t.Errorf("Alba scoreboard total = %d, want 15", got)
	}

	rec = do(t, h, "POST", "/api/completions/batch", map[string]any{
		"person": "David\t",
		"tasks":  []map[string]any{{"task_id": "mop-floor", "points": 10}},
	})
	expectStatus(t, rec, http.StatusCreated)
	if got := scoreboard(t, h)["David"].Total; got != 10 {
		t.Errorf("David scoreboard total = %d, want 10", got)
	}

	expectStatus(t, do(t, h, "POST", "/api/tasks/wash-dishes/ratings", map[string]any{"person": "Alba", "points": 20}), http.StatusOK)
	expectStatus(t, do(t, h, "POST", "/api/tasks/wash-dishes/ratings", map[string]any{"person": "Alba ", "points": 40}), http.StatusOK)
	expectStatus(t, do(t, h, "POST", "/api/ratings", map[string]any{"person": " Alba ", "ratings": map[string]int{"wash-dishes": 30}}), http.StatusOK)

	rec = do(t, h, "GET", "/api/tasks/wash-dishes", nil)
	expectStatus(t, rec, http.StatusOK)
	task := decode[struct {
		BasePoints int `json:"base_points"`
		Ratings    []struct {
			PersonName string `json:"person_name"`
			Points     int    `json:"points"`
		} `json:"ratings"`
	}](t, rec)
	if len(task.Ratings) != 1 || task.Ratings[0].PersonName != "Alba" || task.Ratings[0].Points != 30 {
		t.Errorf("ratings = %+v, want one rating by Alba worth 30", task.Ratings)
	}
	if task.BasePoints != 30 {
		t.Errorf("base points = %d, want 30", task.BasePoints)
	}

	expectStatus(t, do(t, h, "PUT", "/api/preferences/vacuum", map[string]string{"person": " David", "state": "odio"}), http.StatusOK)
	rec = do(t, h, "GET", "/api/tasks/vacuum/quote?person=David", nil)
	if got := decode[struct {
		Modifier int `json:"modifier"`
	}](t, rec); got.Modifier != 10 {
		t.Errorf("David modifier = %d, want 10", got.Modifier)
	}
}

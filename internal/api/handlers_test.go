package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/metrics"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/store"
	"github.com/hyperengineering/lifter/internal/types"
	"github.com/hyperengineering/lifter/internal/workout"
)

// --- Test Fixtures ---

// stubParser returns a fixed plan or error.
type stubParser struct {
	plan *parser.ParsedPlan
	err  error
}

func (p *stubParser) ParsePlan(ctx context.Context, in parser.Input) (*parser.ParsedPlan, error) {
	return p.plan, p.err
}

func (p *stubParser) ModelName() string { return "stub-model" }

func pushPullPlan() *parser.ParsedPlan {
	return &parser.ParsedPlan{
		Name:          "Push Pull",
		DurationWeeks: 2,
		Days: []parser.ParsedDay{
			{DayName: "Monday", Focus: "Push", Exercises: []parser.ParsedExercise{
				{Name: "Bench", Sets: 3, Reps: "8"},
				{Name: "Dips", Sets: 3, Reps: "10/8/6"},
			}},
			{DayName: "Thursday", Focus: "Pull", Exercises: []parser.ParsedExercise{
				{Name: "Row", Sets: 4, Reps: "10"},
			}},
		},
	}
}

type testServer struct {
	router http.Handler
	svc    *app.Service
}

func newTestServer(t *testing.T, p parser.Parser) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.New(store.NewCollections(store.NewMemoryKV()), p, app.WithLogger(logger))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h := NewHandler(svc, testAPIKey, "1.0.0", p.ModelName(), time.Second)
	return &testServer{router: NewRouter(h, nil, nil), svc: svc}
}

// importedServer returns a server with the Push Pull plan imported and selected.
func importedServer(t *testing.T) (*testServer, workout.WorkoutPlan) {
	t.Helper()
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})
	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", types.ImportRequest{Text: "push pull"})
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	var plan workout.WorkoutPlan
	decodeBody(t, w, &plan)
	return ts, plan
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) session(t *testing.T) app.View {
	t.Helper()
	w := ts.do(t, http.MethodGet, "/api/v1/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d", w.Code)
	}
	var v app.View
	decodeBody(t, w, &v)
	return v
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode body %q: %v", w.Body.String(), err)
	}
}

func assertProblem(t *testing.T, w *httptest.ResponseRecorder, status int) Problem {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var p Problem
	decodeBody(t, w, &p)
	return p
}

// --- Health ---

func TestHealth_NoAuth(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp types.HealthResponse
	decodeBody(t, w, &resp)
	if resp.Status != "healthy" || resp.Version != "1.0.0" || resp.ParserModel != "stub-model" {
		t.Errorf("health = %+v", resp)
	}
	if resp.PlanCount != 0 {
		t.Errorf("plan_count = %d, want 0", resp.PlanCount)
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	for _, path := range []string{"/api/v1/plans", "/api/v1/session"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusUnauthorized)
		}
	}
}

// --- Plans ---

func TestImportPlan_Success(t *testing.T) {
	ts, plan := importedServer(t)

	if plan.Name != "Push Pull" || plan.DurationWeeks != 2 || len(plan.Weeks) != 2 {
		t.Errorf("plan = %s/%d/%d weeks", plan.Name, plan.DurationWeeks, len(plan.Weeks))
	}

	w := ts.do(t, http.MethodGet, "/api/v1/plans", nil)
	var list types.ListPlansResponse
	decodeBody(t, w, &list)
	if len(list.Plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(list.Plans))
	}
	got := list.Plans[0]
	if got.ID != plan.ID || !got.Selected || got.Repetitions != 1 {
		t.Errorf("summary = %+v", got)
	}
}

func TestImportPlan_EmptyInput(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", types.ImportRequest{Text: "  "})
	assertProblem(t, w, http.StatusBadRequest)
}

func TestImportPlan_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", "{not json")
	p := assertProblem(t, w, http.StatusBadRequest)
	if !strings.HasPrefix(p.Detail, "Invalid JSON") {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestImportPlan_EmptyBody(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", "")
	p := assertProblem(t, w, http.StatusBadRequest)
	if p.Detail != "Request body is empty" {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestImportPlan_Unparseable(t *testing.T) {
	ts := newTestServer(t, &stubParser{err: parser.ErrUnparseable})

	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", types.ImportRequest{Text: "gibberish"})
	assertProblem(t, w, http.StatusUnprocessableEntity)

	if n := len(ts.svc.Plans()); n != 0 {
		t.Errorf("plans = %d, want 0 after failed import", n)
	}
}

func TestImportPlan_UnsupportedFile(t *testing.T) {
	ts := newTestServer(t, &stubParser{err: parser.ErrUnsupportedFile})

	w := ts.do(t, http.MethodPost, "/api/v1/plans/import", types.ImportRequest{
		File: &types.ImportFile{Data: "aGVsbG8=", MimeType: "text/plain"},
	})
	assertProblem(t, w, http.StatusBadRequest)
}

func TestGetPlan(t *testing.T) {
	ts, plan := importedServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got workout.WorkoutPlan
	decodeBody(t, w, &got)
	if got.ID != plan.ID {
		t.Errorf("id = %q, want %q", got.ID, plan.ID)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/plans/missing", nil)
	assertProblem(t, w, http.StatusNotFound)
}

func TestDeletePlan_RequiresConfirm(t *testing.T) {
	ts, plan := importedServer(t)

	w := ts.do(t, http.MethodDelete, "/api/v1/plans/"+plan.ID, nil)
	p := assertProblem(t, w, http.StatusPreconditionRequired)
	if p.Type != "https://lifter.dev/errors/confirmation-required" {
		t.Errorf("type = %q", p.Type)
	}
	if n := len(ts.svc.Plans()); n != 1 {
		t.Errorf("plans = %d, want 1", n)
	}

	w = ts.do(t, http.MethodDelete, "/api/v1/plans/"+plan.ID+"?confirm=true", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if n := len(ts.svc.Plans()); n != 0 {
		t.Errorf("plans = %d, want 0", n)
	}
	if v := ts.session(t); v.Plan != nil {
		t.Error("selection should be cleared after deleting the selected plan")
	}
}

func TestSelectPlan(t *testing.T) {
	ts, plan := importedServer(t)

	w := ts.do(t, http.MethodPut, "/api/v1/session/cursor", types.CursorRequest{Week: intPtr(1)})
	if w.Code != http.StatusOK {
		t.Fatalf("cursor status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/plans/"+plan.ID+"/select", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("select status = %d", w.Code)
	}
	var v app.View
	decodeBody(t, w, &v)
	if v.Week != 0 || v.DayIndex != 0 {
		t.Errorf("cursor = week %d day %d, want reset to 0/0", v.Week, v.DayIndex)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/plans/missing/select", nil)
	assertProblem(t, w, http.StatusNotFound)
}

// --- Session ---

func TestGetSession_NoPlan(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	v := ts.session(t)
	if v.Plan != nil || v.Day != nil || v.Pending != nil {
		t.Errorf("view = %+v, want empty", v)
	}
}

func TestPutCursor_Clamps(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPut, "/api/v1/session/cursor", types.CursorRequest{Week: intPtr(99), Day: intPtr(-3)})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var cur types.CursorResponse
	decodeBody(t, w, &cur)
	if cur.Week != 1 || cur.Day != 0 || cur.Repetition != 0 {
		t.Errorf("cursor = %+v, want week 1 day 0 repetition 0", cur)
	}
}

func TestPutCursor_NoPlanSelected(t *testing.T) {
	ts := newTestServer(t, &stubParser{plan: pushPullPlan()})

	w := ts.do(t, http.MethodPut, "/api/v1/session/cursor", types.CursorRequest{Week: intPtr(1)})
	assertProblem(t, w, http.StatusConflict)
}

func TestPutLog(t *testing.T) {
	ts, _ := importedServer(t)
	v := ts.session(t)
	day := v.Day
	bench := day.Exercises[0]

	w := ts.do(t, http.MethodPut, "/api/v1/session/logs", types.LogRequest{
		Week: 0, DayID: day.ID, ExerciseID: bench.ID, Set: 1, Field: "weight", Value: "100",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var logged workout.SetLog
	decodeBody(t, w, &logged)
	if logged.Weight != "100" || logged.Reps != "" {
		t.Errorf("logged = %+v", logged)
	}

	v = ts.session(t)
	if got := v.Sets[0].Sets[1].Weight; got != "100" {
		t.Errorf("grid weight = %q, want 100", got)
	}
	if got := v.Sets[0].Sets[0].Weight; got != "" {
		t.Errorf("untouched set weight = %q, want empty", got)
	}
}

func TestPutLog_InvalidField(t *testing.T) {
	ts, _ := importedServer(t)
	day := ts.session(t).Day

	w := ts.do(t, http.MethodPut, "/api/v1/session/logs", types.LogRequest{
		DayID: day.ID, ExerciseID: day.Exercises[0].ID, Field: "tempo", Value: "3010",
	})
	assertProblem(t, w, http.StatusUnprocessableEntity)

	var pe ProblemWithErrors
	decodeBody(t, w, &pe)
	if len(pe.Errors) == 0 || pe.Errors[0].Field != "field" {
		t.Errorf("errors = %+v, want a field error", pe.Errors)
	}
}

func TestStartAndRenameRepetition(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/repetitions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var v app.View
	decodeBody(t, w, &v)
	if v.Repetition != 1 || v.RepetitionLabel != "Repetition 2" {
		t.Errorf("repetition = %d %q", v.Repetition, v.RepetitionLabel)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/session/repetition/name", types.RenameRequest{Name: "Deload"})
	var rr types.RenameResponse
	decodeBody(t, w, &rr)
	if !rr.Renamed || rr.Label != "Deload" {
		t.Errorf("rename = %+v", rr)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/session/repetition/name", types.RenameRequest{Name: "   "})
	decodeBody(t, w, &rr)
	if rr.Renamed || rr.Label != "Deload" {
		t.Errorf("blank rename = %+v, want unchanged", rr)
	}
}

// --- Pending updates ---

func TestPendingEdit_ApplyOneDay(t *testing.T) {
	ts, plan := importedServer(t)
	day := ts.session(t).Day
	bench := day.Exercises[0]

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/edit", types.ExerciseRequest{
		ExerciseID: bench.ID, Name: "Incline Bench", Sets: 4, Reps: "6",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body = %s", w.Code, w.Body.String())
	}
	var pv app.PendingView
	decodeBody(t, w, &pv)
	if pv.Kind != "edit" || pv.Index == nil || *pv.Index != 0 {
		t.Errorf("pending = %+v", pv)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/session/pending/apply", types.ApplyRequest{Scope: "one-day"})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}
	var v app.View
	decodeBody(t, w, &v)
	if v.Pending != nil || v.EditingExerciseID != "" {
		t.Error("pending and edit mode should be cleared after apply")
	}
	if got := v.Day.Exercises[0]; got.Name != "Incline Bench" || got.Sets != 4 {
		t.Errorf("edited exercise = %+v", got)
	}

	stored, err := ts.svc.Plan(plan.ID)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if got := stored.Weeks[0].Days[0].Exercises[0].Name; got != "Bench" {
		t.Errorf("template exercise = %q, one-day scope must not touch the template", got)
	}
}

func TestPendingAdd_AllWeeks(t *testing.T) {
	ts, plan := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/add", types.ExerciseRequest{})
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d", w.Code)
	}
	var pv app.PendingView
	decodeBody(t, w, &pv)
	if pv.Kind != "add" || len(pv.Exercises) != 3 || pv.Exercises[2].Name != app.DefaultExerciseName {
		t.Errorf("pending = %+v", pv)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/session/pending/apply", types.ApplyRequest{Scope: "all-weeks"})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d", w.Code)
	}

	stored, _ := ts.svc.Plan(plan.ID)
	for wi, week := range stored.Weeks {
		if n := len(week.Days[0].Exercises); n != 3 {
			t.Errorf("week %d: exercises = %d, want 3", wi, n)
		}
	}
}

func TestPendingRemove_RequiresConfirm(t *testing.T) {
	ts, _ := importedServer(t)
	day := ts.session(t).Day

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/remove", types.RemoveRequest{ExerciseID: day.Exercises[1].ID})
	assertProblem(t, w, http.StatusPreconditionRequired)

	w = ts.do(t, http.MethodPost, "/api/v1/session/pending/remove", types.RemoveRequest{ExerciseID: day.Exercises[1].ID, Confirm: true})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var pv app.PendingView
	decodeBody(t, w, &pv)
	if pv.Kind != "remove" || len(pv.Exercises) != 1 {
		t.Errorf("pending = %+v", pv)
	}
}

func TestPendingReorder_SamePosition(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/reorder", types.ReorderRequest{From: 1, To: 1})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if v := ts.session(t); v.Pending != nil {
		t.Error("no update should be staged")
	}

	w = ts.do(t, http.MethodPost, "/api/v1/session/pending/reorder", types.ReorderRequest{From: 0, To: 5})
	assertProblem(t, w, http.StatusBadRequest)
}

func TestPending_BlocksNavigation(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/reorder", types.ReorderRequest{From: 0, To: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/session/cursor", types.CursorRequest{Day: intPtr(1)})
	assertProblem(t, w, http.StatusConflict)

	w = ts.do(t, http.MethodDelete, "/api/v1/session/pending", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/session/cursor", types.CursorRequest{Day: intPtr(1)})
	if w.Code != http.StatusOK {
		t.Fatalf("cursor status after dismiss = %d", w.Code)
	}
}

func TestApplyPending_Errors(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/apply", types.ApplyRequest{Scope: "one-day"})
	assertProblem(t, w, http.StatusConflict)

	w = ts.do(t, http.MethodPost, "/api/v1/session/pending/apply", types.ApplyRequest{Scope: "everywhere"})
	assertProblem(t, w, http.StatusBadRequest)
}

func TestPendingEdit_UnknownExercise(t *testing.T) {
	ts, _ := importedServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/session/pending/edit", types.ExerciseRequest{ExerciseID: "nope", Name: "X", Sets: 1, Reps: "5"})
	assertProblem(t, w, http.StatusNotFound)
}

func TestRequestBodyTooLarge(t *testing.T) {
	ts, _ := importedServer(t)

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := ts.do(t, http.MethodPut, "/api/v1/session/repetition/name", body)
	assertProblem(t, w, http.StatusRequestEntityTooLarge)
}

// --- Metrics ---

func TestMetricsEndpoint(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.New(store.NewCollections(store.NewMemoryKV()), &stubParser{plan: pushPullPlan()},
		app.WithLogger(logger), app.WithRecorder(m))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	router := NewRouter(NewHandler(svc, testAPIKey, "1.0.0", "stub-model", 0), m, reg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `lifter_test_requests_total{method="GET",status="200"}`) {
		t.Errorf("expected request counter in metrics output:\n%s", body)
	}
	if !strings.Contains(body, `route="/api/v1/health"`) {
		t.Errorf("expected route label in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.New(store.NewCollections(store.NewMemoryKV()), nil, app.WithLogger(logger))
	h := NewHandler(svc, testAPIKey, "1.0.0", "", 0)

	preflight := func(router http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/session", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	router := NewRouter(h, nil, nil, "https://app.example.com")
	w := preflight(router, "https://app.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	w = preflight(router, "https://evil.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin for unlisted origin: %q", got)
	}

	w = preflight(NewRouter(h, nil, nil), "https://app.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS disabled but got Access-Control-Allow-Origin %q", got)
	}
}

func intPtr(i int) *int { return &i }

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/internal/config"
	"github.com/ngcde/assignment-tracker/internal/eventbus"
	"github.com/ngcde/assignment-tracker/internal/snapshot"
	"github.com/ngcde/assignment-tracker/pkg/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env := &config.BaseEnv{Env: "local", HTTPPort: "0", LogLevel: "error"}
	return NewServer(env, assignment.NewStore(), snapshot.NewArchiver(st), eventbus.New())
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

const createBody = `{
	"title": "Relay settings review",
	"assigned_to": "Chief Engineer (Protection & Control)",
	"priority": "Critical",
	"category": "Design Review",
	"description": "Verify settings for the 220kV bays",
	"due_date": "2025-07-15",
	"estimated_hours": 16
}`

func TestCreateAndGetAssignment(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Not Started", body["status"])
	assert.Equal(t, float64(0), body["progress_percentage"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/assignments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Relay settings review", body["title"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/assignments/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/assignments/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", body["code"])
}

func TestCreateAssignmentValidation(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/api/assignments", `{"title": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", body["code"])

	rec, body = doJSON(t, h, http.MethodPost, "/api/assignments", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_format", body["code"])
}

func TestListAssignmentsFiltered(t *testing.T) {
	h := testServer(t).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code)
	second := strings.Replace(createBody, "Chief Engineer (Protection & Control)", "Chief Engineer (Telecom)", 1)
	rec, _ = doJSON(t, h, http.MethodPost, "/api/assignments", second)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/assignments?engineer="+url.QueryEscape("Chief Engineer (Telecom)"), nil)
	recList := httptest.NewRecorder()
	h.ServeHTTP(recList, req)
	require.Equal(t, http.StatusOK, recList.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0]["id"])

	req = httptest.NewRequest(http.MethodGet, "/api/assignments?status="+url.QueryEscape("Completed"), nil)
	recList = httptest.NewRecorder()
	h.ServeHTTP(recList, req)
	require.Equal(t, http.StatusOK, recList.Code)
	assert.Equal(t, "[]\n", recList.Body.String())
}

func TestUpdateAssignment(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()
	subID, events := srv.bus.Subscribe(8)
	defer srv.bus.Unsubscribe(subID)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, h, http.MethodPatch, "/api/assignments/1",
		`{"status": "In Progress", "progress": 40, "comment": "site visit done"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "In Progress", body["status"])
	assert.Equal(t, float64(40), body["progress_percentage"])
	comments, ok := body["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 1)

	rec, body = doJSON(t, h, http.MethodPatch, "/api/assignments/1", `{"progress": 150}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", body["code"])

	ev := <-events
	assert.Equal(t, eventbus.TypeAssignmentCreated, ev.Type)
	ev = <-events
	assert.Equal(t, eventbus.TypeAssignmentUpdated, ev.Type)
	assert.Equal(t, 1, ev.AssignmentID)
}

func TestDashboardAndAnalytics(t *testing.T) {
	h := testServer(t).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, h, http.MethodGet, "/api/reports/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary, ok := body["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), summary["total"])
	recent, ok := body["recent"].([]any)
	require.True(t, ok)
	assert.Len(t, recent, 1)

	rec, body = doJSON(t, h, http.MethodGet, "/api/reports/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["avg_completion_days"])
	monthly, ok := body["monthly_created"].([]any)
	require.True(t, ok)
	assert.Len(t, monthly, 1)
}

func TestEngineerReports(t *testing.T) {
	h := testServer(t).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/engineers", nil)
	recList := httptest.NewRecorder()
	h.ServeHTTP(recList, req)
	require.Equal(t, http.StatusOK, recList.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Chief Engineer (Protection & Control)", rows[0]["engineer"])

	role := url.PathEscape("Chief Engineer (Protection & Control)")
	rec, body := doJSON(t, h, http.MethodGet, "/api/reports/engineers/"+role, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body["critical_count"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/reports/engineers/"+url.PathEscape("Chief Engineer (Telecom)"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestSnapshotExportImport(t *testing.T) {
	h := testServer(t).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/assignments", createBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/api/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()

	rec, body := doJSON(t, h, http.MethodPost, "/api/snapshot/export", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	name, ok := body["archive"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(name, "ngc_assignments_"), name)

	rec, body = doJSON(t, h, http.MethodGet, "/api/snapshot/archives", "")
	require.Equal(t, http.StatusOK, rec.Code)
	archives, ok := body["archives"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{name}, archives)

	// importing the snapshot back is a no-op replace
	rec, body = doJSON(t, h, http.MethodPost, "/api/snapshot/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body["imported"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/assignments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Relay settings review", body["title"])

	rec, body = doJSON(t, h, http.MethodPost, "/api/snapshot/import", `{"export_date": "2025-06-01T16:45:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_format", body["code"])

	// a null assignments key must not be taken for an empty set
	rec, body = doJSON(t, h, http.MethodPost, "/api/snapshot/import", `{"assignments": null, "export_date": "2025-06-01T16:45:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_format", body["code"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/assignments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Relay settings review", body["title"])
}

func TestUnknownAPIRoute(t *testing.T) {
	h := testServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestHealth(t *testing.T) {
	h := testServer(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

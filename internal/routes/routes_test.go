package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/progress"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppName:        "Folio",
		AppEnv:         "test",
		Backend:        config.BackendLocal,
		DBDriver:       "sqlite",
		DBConnection:   filepath.Join(t.TempDir(), "routes.db") + "?_pragma=foreign_keys(1)",
		PersistReorder: true,
		PageSize:       20,
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()

	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := call(t, srv, "GET", "/healthz", nil, &body)
	if resp.StatusCode != http.StatusOK || body["backend"] != config.BackendLocal {
		t.Errorf("status %d body %v", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestGoalAndProjectFlow(t *testing.T) {
	srv := newTestServer(t)

	var created progress.View
	resp := call(t, srv, "POST", "/app/goals", map[string]any{
		"title":           "Ship three apps",
		"target_projects": 3,
		"deadline":        datemath.AddDays(datemath.TodayISO(), 10),
		"steps":           []string{"Outline", "Draft"},
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal: status %d", resp.StatusCode)
	}
	if created.Goal.TotalSteps != 2 || created.Bucket != progress.BucketNotStarted || created.Urgency.DaysLeft != 10 {
		t.Fatalf("created = %+v", created)
	}
	goalPath := fmt.Sprintf("/app/goals/%d", created.Goal.ID)

	var list struct {
		Count   int              `json:"count"`
		Buckets progress.Buckets `json:"buckets"`
	}
	call(t, srv, "GET", "/app/goals", nil, &list)
	if list.Count != 1 || len(list.Buckets.NotStarted) != 1 {
		t.Errorf("list = %+v", list)
	}

	var view progress.View
	resp = call(t, srv, "POST", goalPath+"/steps", map[string]string{"title": "Review"}, &view)
	if resp.StatusCode != http.StatusCreated || view.Goal.TotalSteps != 3 {
		t.Fatalf("add step: %d %+v", resp.StatusCode, view.Goal)
	}
	review := view.Goal.Steps[2]

	call(t, srv, "POST", fmt.Sprintf("%s/steps/%d/toggle", goalPath, review.ID), nil, &view)
	if view.Goal.CompletedSteps != 1 || view.Bucket != progress.BucketInProgress {
		t.Errorf("after toggle = %+v", view)
	}

	call(t, srv, "POST", fmt.Sprintf("%s/steps/%d/move", goalPath, review.ID), map[string]string{"direction": "up"}, &view)
	if view.Goal.Steps[1].ID != review.ID {
		t.Errorf("after move = %+v", view.Goal.Steps)
	}

	resp = call(t, srv, "POST", fmt.Sprintf("%s/steps/%d/move", goalPath, review.ID), map[string]string{"direction": "sideways"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad direction: status %d", resp.StatusCode)
	}

	resp = call(t, srv, "POST", goalPath+"/steps", map[string]string{"title": " "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank step: status %d", resp.StatusCode)
	}

	var project struct {
		ID              int64  `json:"id"`
		Description     string `json:"description"`
		DescriptionHTML string `json:"description_html"`
		StatusLabel     string `json:"status_label"`
	}
	resp = call(t, srv, "POST", "/app/projects", map[string]any{
		"title":      "Portfolio",
		"status":     "completed",
		"start_date": "2024-01-01",
		"end_date":   "2024-02-01",
		"tools_used": "Go, SQLite",
		"goal":       created.Goal.ID,
	}, &project)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: status %d", resp.StatusCode)
	}
	if project.Description == "" || !strings.Contains(project.DescriptionHTML, "<p>") || project.StatusLabel != "Completed" {
		t.Errorf("project = %+v", project)
	}

	call(t, srv, "GET", goalPath, nil, &view)
	if view.Goal.ProgressPercent != 33 {
		t.Errorf("progress = %d, want 33", view.Goal.ProgressPercent)
	}

	var fields map[string][]string
	resp = call(t, srv, "POST", "/app/projects", map[string]any{
		"title": "Half done", "status": "completed", "start_date": "2024-01-01",
	}, &fields)
	if resp.StatusCode != http.StatusBadRequest || len(fields["end_date"]) == 0 {
		t.Errorf("invalid project: %d %v", resp.StatusCode, fields)
	}

	resp = call(t, srv, "PATCH", goalPath, map[string]string{"title": ""}, &fields)
	if resp.StatusCode != http.StatusBadRequest || len(fields["title"]) == 0 {
		t.Errorf("blank goal title: %d %v", resp.StatusCode, fields)
	}

	resp = call(t, srv, "DELETE", goalPath, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp = call(t, srv, "GET", goalPath, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status %d", resp.StatusCode)
	}
}

func TestProjectListAndUpdate(t *testing.T) {
	srv := newTestServer(t)

	for _, title := range []string{"Blog", "Shop"} {
		resp := call(t, srv, "POST", "/app/projects", map[string]any{
			"title": title, "status": "planned", "start_date": "2024-01-01",
		}, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s: %d", title, resp.StatusCode)
		}
	}

	var list struct {
		Count   int `json:"count"`
		Results []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
		ByStatus map[string][]any `json:"by_status"`
	}
	call(t, srv, "GET", "/app/projects?search=sho", nil, &list)
	if list.Count != 1 || list.Results[0].Title != "Shop" || len(list.ByStatus["planned"]) != 1 {
		t.Fatalf("list = %+v", list)
	}

	var updated struct {
		Title       string `json:"title"`
		Status      string `json:"status"`
		Description string `json:"description"`
	}
	resp := call(t, srv, "PUT", fmt.Sprintf("/app/projects/%d", list.Results[0].ID), map[string]any{
		"title": "Shop", "status": "in_progress", "start_date": "2024-01-01",
	}, &updated)
	if resp.StatusCode != http.StatusOK || updated.Status != "in_progress" {
		t.Errorf("update: %d %+v", resp.StatusCode, updated)
	}
	if !strings.Contains(updated.Description, "ongoing") {
		t.Errorf("description not regenerated: %q", updated.Description)
	}
}

func TestDescribePreview(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Description string `json:"description"`
		HTML        string `json:"html"`
	}
	resp := call(t, srv, "POST", "/app/projects/describe", map[string]any{
		"title": "Weather app", "status": "planned", "work_type": "team",
	}, &body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body.Description, "Weather app") {
		t.Errorf("describe: %d %+v", resp.StatusCode, body)
	}
}

func TestSessionWithLocalBackend(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]any
	call(t, srv, "GET", "/app/session", nil, &body)
	if body["authenticated"] != false {
		t.Errorf("session = %v", body)
	}

	resp := call(t, srv, "POST", "/app/session", map[string]string{"username": "me", "password": "pw"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("login on local backend: status %d", resp.StatusCode)
	}

	resp = call(t, srv, "POST", "/app/session", map[string]string{}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty login: status %d", resp.StatusCode)
	}
}

func TestCertificates(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Count   int   `json:"count"`
		Results []any `json:"results"`
	}
	resp := call(t, srv, "GET", "/app/certificates", nil, &body)
	if resp.StatusCode != http.StatusOK || body.Count != 0 {
		t.Errorf("certificates: %d %+v", resp.StatusCode, body)
	}
}

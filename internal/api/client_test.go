package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New("not a url"); err == nil {
		t.Error("expected error for relative url")
	}
}

func TestGoals_ListQueryAndEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/goals/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("search") != "ship" || q.Get("ordering") != "-deadline" || q.Get("bucket") != "done" {
			t.Errorf("query = %v", q)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   21,
			"next":    "http://x/api/goals/?page=3",
			"results": []model.Goal{{ID: 1, Title: "Ship"}},
		})
	})

	page, err := c.Goals.List(context.Background(), model.ListParams{
		Page:     2,
		Search:   "ship",
		Ordering: "-deadline",
		Filters:  map[string]string{"bucket": "done"},
	})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if page.Count != 21 || len(page.Results) != 1 || page.Results[0].Title != "Ship" || page.Next == "" {
		t.Errorf("page = %+v", page)
	}
}

func TestProjects_ListBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Project{{ID: 1}, {ID: 2}})
	})

	page, err := c.Projects.List(context.Background(), model.ListParams{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if page.Count != 2 || len(page.Results) != 2 {
		t.Errorf("page = %+v", page)
	}
}

func TestSteps_ListFollowsPages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("goal") != "9" {
			t.Errorf("goal filter = %q", r.URL.Query().Get("goal"))
		}
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, http.StatusOK, map[string]any{"count": 2, "next": "more", "results": []model.Step{{ID: 1, GoalID: 9}}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"count": 2, "results": []model.Step{{ID: 2, GoalID: 9}}})
		}
	})

	steps, err := c.Steps.List(context.Background(), 9)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(steps) != 2 || steps[1].ID != 2 {
		t.Errorf("steps = %+v", steps)
	}
}

func TestSteps_UpdateSendsPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/goal-steps/5/" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"is_done":true}` {
			t.Errorf("body = %s", body)
		}
		writeJSON(w, http.StatusOK, model.Step{ID: 5, IsDone: true})
	})

	done := true
	s, err := c.Steps.Update(context.Background(), 5, model.StepPatch{IsDone: &done})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !s.IsDone {
		t.Error("expected done step")
	}
}

func TestErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusBadRequest, map[string]any{"title": []string{"This field may not be blank."}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		}
	})
	ctx := context.Background()

	_, err := c.Goals.Create(ctx, model.GoalInput{})
	var verr *apierr.ValidationError
	if !errors.As(err, &verr) || verr.Field("title") == "" {
		t.Errorf("Create() error = %v, want validation error", err)
	}

	_, err = c.Goals.Get(ctx, 3)
	if !errors.Is(err, apierr.ErrNotFound) || apierr.Message(err) != "Not found." {
		t.Errorf("Get() error = %v", err)
	}

	if err := c.Goals.Delete(ctx, 3); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Goals.List(context.Background(), model.ListParams{})
	var nerr *apierr.NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("error = %T %v, want *apierr.NetworkError", err, err)
	}
}

func TestRequestIDAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer static" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get(requestIDHeader); got != "req-1" {
			t.Errorf("request id = %q", got)
		}
		writeJSON(w, http.StatusOK, []model.Certificate{})
	}, WithToken("static"))

	ctx := ctxkeys.WithRequestID(context.Background(), "req-1")
	if _, err := c.Certificates.List(ctx, model.ListParams{}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  1,
		"username": "ada",
		"exp":      exp.Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoginAndRefresh(t *testing.T) {
	expired := signed(t, time.Now().Add(-time.Hour))
	fresh := signed(t, time.Now().Add(time.Hour))
	var refreshes atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token/":
			writeJSON(w, http.StatusOK, map[string]string{"access": expired, "refresh": "r1"})
		case "/api/auth/token/refresh/":
			refreshes.Add(1)
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"r1"`) {
				t.Errorf("refresh body = %s", body)
			}
			writeJSON(w, http.StatusOK, map[string]string{"access": fresh})
		case "/api/goals/":
			if got := r.Header.Get("Authorization"); got != "Bearer "+fresh {
				t.Errorf("Authorization = %q, want refreshed token", got)
			}
			writeJSON(w, http.StatusOK, []model.Goal{})
		}
	})

	sess, err := c.Login(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if sess.User.Username != "ada" || sess.RefreshToken != "r1" {
		t.Errorf("session = %+v", sess)
	}

	authed := c.WithSession(sess)
	if _, err := authed.Goals.List(context.Background(), model.ListParams{}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes.Load())
	}
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/session"
	"github.com/templui/folio/internal/steps"
)

func newLocalStore(t *testing.T, opts Options) (*Store, *repository.Backend) {
	t.Helper()

	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { db.Close(conn) })
	if err := db.RunMigrations(conn.DB, "sqlite"); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	b := repository.NewBackend(conn, 0)
	s := New(Collaborator{
		Goals:        b.Goals,
		Steps:        b.Steps,
		Projects:     b.Projects,
		Certificates: b.Certificates,
	}, opts)
	t.Cleanup(s.Close)
	return s, b
}

func titles(list []model.Step) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Title
	}
	return out
}

func TestGoalLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, Options{PersistReorder: true})

	g, err := s.CreateGoal(ctx, model.GoalInput{
		Title:          "Ship three apps",
		TargetProjects: 3,
		Deadline:       datemath.AddDays(datemath.TodayISO(), 10),
	}, []string{"Outline", " ", "Draft"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if g.TotalSteps != 2 || g.CompletedSteps != 0 {
		t.Fatalf("counters = %d/%d", g.CompletedSteps, g.TotalSteps)
	}
	if got := titles(g.Steps); len(got) != 2 || got[0] != "Outline" || got[1] != "Draft" {
		t.Errorf("steps = %v", got)
	}

	buckets := SelectGoalBuckets(s.State())
	if len(buckets.NotStarted) != 1 {
		t.Fatalf("buckets = %+v", buckets)
	}
	if u := buckets.NotStarted[0].Urgency; u.DaysLeft != 10 || u.Level != progress.LevelNormal || u.Label != "10 days left" {
		t.Errorf("urgency = %+v", u)
	}

	_, err = s.CreateProject(ctx, model.ProjectFields{
		Title:     "Portfolio",
		Status:    model.ProjectStatusCompleted,
		StartDate: "2024-01-01",
		EndDate:   "2024-02-01",
		GoalID:    &g.ID,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	got, ok := SelectGoal(s.State(), g.ID)
	if !ok {
		t.Fatal("goal missing from state")
	}
	if got.ProgressPercent != 33 {
		t.Errorf("ProgressPercent = %d, want 33", got.ProgressPercent)
	}
	if b := progress.BucketOf(got); b != progress.BucketInProgress {
		t.Errorf("bucket = %s, want in_progress", b)
	}
}

func TestStepActionsRefreshGoal(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, Options{PersistReorder: true})

	g, err := s.CreateGoal(ctx, model.GoalInput{Title: "Learn", TargetProjects: 1, Deadline: "2030-01-01"}, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	c, err := s.AddStep(ctx, g.ID, "c")
	if err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if c.Order != 2 {
		t.Errorf("new step order = %d, want 2", c.Order)
	}

	if _, err := s.AddStep(ctx, g.ID, "  "); !errors.Is(err, steps.ErrEmptyTitle) {
		t.Errorf("blank AddStep = %v", err)
	}

	if _, err := s.ToggleStep(ctx, g.ID, c.ID); err != nil {
		t.Fatalf("ToggleStep: %v", err)
	}
	got, _ := SelectGoal(s.State(), g.ID)
	if got.TotalSteps != 3 || got.CompletedSteps != 1 || got.StepsProgressPercent != 33 {
		t.Errorf("after toggle = %+v", got)
	}

	moved, err := s.MoveStep(ctx, g.ID, c.ID, steps.Up)
	if err != nil || !moved {
		t.Fatalf("MoveStep = %v, %v", moved, err)
	}
	got, _ = SelectGoal(s.State(), g.ID)
	if order := titles(got.Steps); order[0] != "a" || order[1] != "c" || order[2] != "b" {
		t.Errorf("order after move = %v", order)
	}

	if _, err := s.RenameStep(ctx, g.ID, c.ID, "see"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteStep(ctx, g.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = SelectGoal(s.State(), g.ID)
	if order := titles(got.Steps); len(order) != 2 || got.CompletedSteps != 0 {
		t.Errorf("after delete = %v (%d done)", order, got.CompletedSteps)
	}
}

func TestMoveStepWithoutPersistence(t *testing.T) {
	ctx := context.Background()
	s, b := newLocalStore(t, Options{PersistReorder: false})

	g, err := s.CreateGoal(ctx, model.GoalInput{Title: "Local", TargetProjects: 1, Deadline: "2030-01-01"}, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	moved, err := s.MoveStep(ctx, g.ID, g.Steps[0].ID, steps.Down)
	if err != nil || !moved {
		t.Fatalf("MoveStep = %v, %v", moved, err)
	}

	got, _ := SelectGoal(s.State(), g.ID)
	if order := titles(got.Steps); order[0] != "b" {
		t.Errorf("local order = %v", order)
	}

	remote, err := b.Steps.List(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if order := titles(remote); order[0] != "a" {
		t.Errorf("remote order changed: %v", order)
	}

	if moved, _ := s.MoveStep(ctx, g.ID, g.Steps[0].ID, steps.Down); moved {
		t.Error("moved past the last slot")
	}
}

func TestProjectSearchIsDebounced(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, Options{SearchDebounce: time.Hour})

	for _, title := range []string{"Blog", "Shop", "Shop v2"} {
		_, err := s.CreateProject(ctx, model.ProjectFields{Title: title, Status: model.ProjectStatusPlanned, StartDate: "2024-01-01"})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := s.LoadProjects(ctx, model.ListParams{Filters: map[string]string{"status": "planned"}}); err != nil {
		t.Fatal(err)
	}

	s.SearchProjects("b")
	s.SearchProjects("sh")
	if st := s.State(); st.Projects.Count != 3 {
		t.Fatalf("search ran before the quiet window: %d", st.Projects.Count)
	}

	if !s.FlushSearch() {
		t.Fatal("no pending search")
	}
	st := s.State()
	if st.ProjectQuery.Search != "sh" || st.ProjectQuery.Filter("status") != "planned" {
		t.Errorf("query = %+v", st.ProjectQuery)
	}
	if st.Projects.Count != 2 {
		t.Errorf("results = %d, want 2", st.Projects.Count)
	}
	if s.FlushSearch() {
		t.Error("search fired twice")
	}
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, Options{})

	s.SetSession(&session.Session{AccessToken: "token"})
	if !SelectAuthenticated(s.State(), time.Now()) {
		t.Fatal("not authenticated after SetSession")
	}
	if _, err := s.CreateGoal(ctx, model.GoalInput{Title: "x", TargetProjects: 1, Deadline: "2030-01-01"}, nil); err != nil {
		t.Fatal(err)
	}

	s.ClearSession()
	st := s.State()
	if SelectAuthenticated(st, time.Now()) || len(st.Goals.Items) != 0 {
		t.Errorf("state after ClearSession = %+v", st)
	}
}

// failingGoals serves Get from a fixed goal and fails everything else.
type failingGoals struct {
	GoalAPI
	goal model.Goal
	gets int
}

func (f *failingGoals) List(context.Context, model.ListParams) (*model.Page[model.Goal], error) {
	return nil, &apierr.Error{Status: 500, Detail: "boom"}
}

func (f *failingGoals) Get(_ context.Context, id int64) (*model.Goal, error) {
	f.gets++
	g := f.goal
	return &g, nil
}

type failingSteps struct{}

func (failingSteps) List(context.Context, int64) ([]model.Step, error) { return nil, nil }
func (failingSteps) Create(context.Context, model.StepInput) (*model.Step, error) {
	return nil, &apierr.NetworkError{Op: "create step", Err: errors.New("offline")}
}
func (failingSteps) Update(context.Context, int64, model.StepPatch) (*model.Step, error) {
	return nil, &apierr.NetworkError{Op: "update step", Err: errors.New("offline")}
}
func (failingSteps) Delete(context.Context, int64) error { return nil }

func TestStepFailureStillRefreshesGoal(t *testing.T) {
	ctx := context.Background()
	goals := &failingGoals{goal: model.Goal{
		ID: 1, Title: "g", TargetProjects: 1, Deadline: "2030-01-01",
		Steps: []model.Step{{ID: 5, GoalID: 1, Title: "a"}},
	}}
	s := New(Collaborator{Goals: goals, Steps: failingSteps{}}, Options{})

	if _, err := s.RefreshGoal(ctx, 1); err != nil {
		t.Fatal(err)
	}

	_, err := s.ToggleStep(ctx, 1, 5)
	var nerr *apierr.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want network error", err)
	}
	if goals.gets != 2 {
		t.Errorf("goal fetched %d times, want 2", goals.gets)
	}

	st := s.State()
	if st.Goals.Err == "" {
		t.Error("slice error not recorded")
	}
	steps, _ := s.Steps(ctx, 1)
	if len(steps) != 1 || steps[0].IsDone {
		t.Errorf("steps after refresh = %+v", steps)
	}
}

func TestLoadGoalsFailureKeepsItems(t *testing.T) {
	goals := &failingGoals{goal: model.Goal{ID: 1, Title: "kept", TargetProjects: 1}}
	s := New(Collaborator{Goals: goals}, Options{})

	if _, err := s.RefreshGoal(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadGoals(context.Background()); err == nil {
		t.Fatal("LoadGoals succeeded")
	}

	st := s.State()
	if len(st.Goals.Items) != 1 || st.Goals.Items[0].Title != "kept" {
		t.Errorf("items = %+v", st.Goals.Items)
	}
	if st.Goals.Err != "boom" || st.Goals.Loading {
		t.Errorf("slice = %+v", st.Goals)
	}
}

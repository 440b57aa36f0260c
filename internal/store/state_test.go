package store

import (
	"testing"
	"time"

	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/session"
)

func TestReducersDoNotMutateInput(t *testing.T) {
	before := goalsLoaded(State{}, []model.Goal{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}, 2)

	after := goalUpserted(before, model.Goal{ID: 1, Title: "changed"})
	if before.Goals.Items[0].Title != "a" {
		t.Error("goalUpserted wrote through to the previous state")
	}
	if after.Goals.Items[0].Title != "changed" || after.Goals.Count != 2 {
		t.Errorf("after = %+v", after.Goals)
	}

	removed := goalRemoved(after, 2)
	if len(after.Goals.Items) != 2 || len(removed.Goals.Items) != 1 || removed.Goals.Count != 1 {
		t.Errorf("goalRemoved: before %d, after %d", len(after.Goals.Items), len(removed.Goals.Items))
	}

	added := goalUpserted(removed, model.Goal{ID: 3})
	if added.Goals.Count != 2 {
		t.Errorf("count after insert = %d", added.Goals.Count)
	}
}

func TestSelectCriticalGoals(t *testing.T) {
	today := datemath.TodayISO()
	st := goalsLoaded(State{}, []model.Goal{
		{ID: 1, Deadline: datemath.AddDays(today, 10)},
		{ID: 2, Deadline: datemath.AddDays(today, 2)},
		{ID: 3, Deadline: datemath.AddDays(today, -4)},
		{ID: 4, Deadline: datemath.AddDays(today, -1), ProgressPercent: 100},
	}, 4)

	views := SelectCriticalGoals(st)
	if len(views) != 2 {
		t.Fatalf("views = %+v", views)
	}
	if views[0].Goal.ID != 3 || views[1].Goal.ID != 2 {
		t.Errorf("order = %d, %d", views[0].Goal.ID, views[1].Goal.ID)
	}
}

func TestSelectProjectsByStatus(t *testing.T) {
	st := projectsLoaded(State{}, model.ListParams{}, []model.Project{
		{ID: 1, ProjectFields: model.ProjectFields{Status: model.ProjectStatusPlanned}},
		{ID: 2, ProjectFields: model.ProjectFields{Status: model.ProjectStatusCompleted}},
		{ID: 3, ProjectFields: model.ProjectFields{Status: model.ProjectStatusCompleted}},
	}, 3)

	groups := SelectProjectsByStatus(st)
	if len(groups[model.ProjectStatusPlanned]) != 1 || len(groups[model.ProjectStatusCompleted]) != 2 {
		t.Errorf("groups = %+v", groups)
	}
	if groups[model.ProjectStatusInProgress] == nil {
		t.Error("empty status group should be present")
	}
}

func TestSelectCertificate(t *testing.T) {
	st := certificatesLoaded(State{}, []model.Certificate{{ID: 7, Title: "Go"}}, 1)
	if c, ok := SelectCertificate(st, 7); !ok || c.Title != "Go" {
		t.Errorf("SelectCertificate = %+v, %v", c, ok)
	}
	if _, ok := SelectCertificate(st, 8); ok {
		t.Error("found missing certificate")
	}
}

func TestSelectAuthenticated(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		sess *session.Session
		want bool
	}{
		{"none", nil, false},
		{"valid", &session.Session{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", &session.Session{AccessToken: "a", ExpiresAt: now.Add(-time.Hour)}, false},
		{"expired but refreshable", &session.Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectAuthenticated(sessionSet(State{}, tt.sess), now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

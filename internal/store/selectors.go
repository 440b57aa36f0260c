package store

import (
	"cmp"
	"slices"
	"time"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/progress"
)

func SelectGoal(st State, id int64) (model.Goal, bool) {
	for _, g := range st.Goals.Items {
		if g.ID == id {
			return g, true
		}
	}
	return model.Goal{}, false
}

func SelectGoalBuckets(st State) progress.Buckets {
	return progress.Partition(st.Goals.Items)
}

// SelectCriticalGoals returns unfinished goals whose deadline is critical,
// most overdue first.
func SelectCriticalGoals(st State) []progress.View {
	var views []progress.View
	for _, g := range st.Goals.Items {
		v := progress.ViewOf(g)
		if v.Bucket != progress.BucketCompleted && v.Urgency.Level == progress.LevelCritical {
			views = append(views, v)
		}
	}
	slices.SortStableFunc(views, func(a, b progress.View) int {
		return cmp.Compare(a.Urgency.DaysLeft, b.Urgency.DaysLeft)
	})
	return views
}

func SelectProjectsByStatus(st State) map[model.ProjectStatus][]model.Project {
	out := map[model.ProjectStatus][]model.Project{
		model.ProjectStatusPlanned:    {},
		model.ProjectStatusInProgress: {},
		model.ProjectStatusCompleted:  {},
	}
	for _, p := range st.Projects.Items {
		out[p.Status] = append(out[p.Status], p)
	}
	return out
}

func SelectCertificate(st State, id int64) (model.Certificate, bool) {
	for _, c := range st.Certificates.Items {
		if c.ID == id {
			return c, true
		}
	}
	return model.Certificate{}, false
}

// SelectAuthenticated reports whether a session exists that can still be
// used or refreshed at now.
func SelectAuthenticated(st State, now time.Time) bool {
	s := st.Session
	if s == nil || s.AccessToken == "" {
		return false
	}
	return !s.Expired(now) || s.RefreshToken != ""
}

package store

import (
	"slices"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/session"
)

// Slice is one collection of the state with its request status. Err keeps
// the last failure message; Items stay as they were before the failure.
type Slice[T any] struct {
	Items   []T    `json:"items"`
	Count   int    `json:"count"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
}

type State struct {
	Goals        Slice[model.Goal]        `json:"goals"`
	Projects     Slice[model.Project]     `json:"projects"`
	Certificates Slice[model.Certificate] `json:"certificates"`
	Session      *session.Session         `json:"-"`

	// ProjectQuery is the list query the Projects slice was loaded with.
	ProjectQuery model.ListParams `json:"-"`
}

// The reducers below are pure: they return a new State and never write
// through the slices of the one they were given.

func started[T any](s Slice[T]) Slice[T] {
	s.Loading = true
	return s
}

func loaded[T any](items []T, count int) Slice[T] {
	return Slice[T]{Items: slices.Clone(items), Count: count}
}

func failed[T any](s Slice[T], err error) Slice[T] {
	s.Loading = false
	s.Err = apierr.Message(err)
	return s
}

func upsert[T any](s Slice[T], v T, id func(T) int64) Slice[T] {
	items := slices.Clone(s.Items)
	i := slices.IndexFunc(items, func(x T) bool { return id(x) == id(v) })
	if i >= 0 {
		items[i] = v
	} else {
		items = append(items, v)
		s.Count++
	}
	s.Items = items
	s.Loading = false
	s.Err = ""
	return s
}

func remove[T any](s Slice[T], target int64, id func(T) int64) Slice[T] {
	n := len(s.Items)
	s.Items = slices.DeleteFunc(slices.Clone(s.Items), func(x T) bool { return id(x) == target })
	if len(s.Items) < n && s.Count > 0 {
		s.Count--
	}
	s.Err = ""
	return s
}

func goalID(g model.Goal) int64        { return g.ID }
func projectID(p model.Project) int64  { return p.ID }
func certID(c model.Certificate) int64 { return c.ID }

func goalsLoaded(st State, goals []model.Goal, count int) State {
	st.Goals = loaded(goals, count)
	return st
}

func goalUpserted(st State, g model.Goal) State {
	st.Goals = upsert(st.Goals, g, goalID)
	return st
}

func goalRemoved(st State, id int64) State {
	st.Goals = remove(st.Goals, id, goalID)
	return st
}

// goalStepsChanged swaps a goal's embedded steps without touching the
// counters, which stay server-owned.
func goalStepsChanged(st State, id int64, steps []model.Step) State {
	i := slices.IndexFunc(st.Goals.Items, func(g model.Goal) bool { return g.ID == id })
	if i < 0 {
		return st
	}
	g := st.Goals.Items[i]
	g.Steps = slices.Clone(steps)
	return goalUpserted(st, g)
}

func projectsLoaded(st State, query model.ListParams, projects []model.Project, count int) State {
	st.Projects = loaded(projects, count)
	st.ProjectQuery = query
	return st
}

func projectUpserted(st State, p model.Project) State {
	st.Projects = upsert(st.Projects, p, projectID)
	return st
}

func projectRemoved(st State, id int64) State {
	st.Projects = remove(st.Projects, id, projectID)
	return st
}

func certificatesLoaded(st State, certs []model.Certificate, count int) State {
	st.Certificates = loaded(certs, count)
	return st
}

// sliceFailed records err on the named slice.
func sliceFailed(st State, name string, err error) State {
	switch name {
	case sliceGoals:
		st.Goals = failed(st.Goals, err)
	case sliceProjects:
		st.Projects = failed(st.Projects, err)
	case sliceCertificates:
		st.Certificates = failed(st.Certificates, err)
	}
	return st
}

func sliceStarted(st State, name string) State {
	switch name {
	case sliceGoals:
		st.Goals = started(st.Goals)
	case sliceProjects:
		st.Projects = started(st.Projects)
	case sliceCertificates:
		st.Certificates = started(st.Certificates)
	}
	return st
}

const (
	sliceGoals        = "goals"
	sliceProjects     = "projects"
	sliceCertificates = "certificates"
)

func sessionSet(st State, sess *session.Session) State {
	st.Session = sess
	return st
}

// sessionCleared drops the session and everything loaded under it.
func sessionCleared(State) State {
	return State{}
}

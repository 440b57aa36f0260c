package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/templui/folio/internal/model"
)

// LoadProjects fetches one page of projects for params. A response that
// lands after a newer load started is dropped.
func (s *Store) LoadProjects(ctx context.Context, params model.ListParams) error {
	s.mu.Lock()
	s.projectsGen++
	gen := s.projectsGen
	s.state = sliceStarted(s.state, sliceProjects)
	s.mu.Unlock()

	p, err := s.backend().Projects.List(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.projectsGen {
		slog.Debug("discarding stale project list", "search", params.Search)
		return nil
	}
	if err != nil {
		s.state = sliceFailed(s.state, sliceProjects, err)
		return fmt.Errorf("failed to load projects: %w", err)
	}
	s.state = projectsLoaded(s.state, params, p.Results, p.Count)
	return nil
}

// SearchProjects schedules a load of the current project query with a new
// search term once typing has been quiet for the debounce window. The page
// resets to the first one.
func (s *Store) SearchProjects(search string) {
	params := s.State().ProjectQuery
	params.Search = search
	params.Page = 0
	s.search.Trigger(params)
}

// FlushSearch runs a pending search now, e.g. on enter.
func (s *Store) FlushSearch() bool {
	return s.search.Flush()
}

func (s *Store) runSearch(params model.ListParams) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SearchTimeout)
	defer cancel()

	if err := s.LoadProjects(ctx, params); err != nil {
		slog.Error("project search failed", "error", err, "search", params.Search)
	}
}

func (s *Store) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	p, err := s.backend().Projects.Get(ctx, id)
	if err != nil {
		return nil, s.fail(sliceProjects, fmt.Errorf("failed to get project: %w", err))
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, fields model.ProjectFields) (*model.Project, error) {
	p, err := s.backend().Projects.Create(ctx, fields)
	if err != nil {
		return nil, s.fail(sliceProjects, fmt.Errorf("failed to create project: %w", err))
	}
	s.commit(func(st State) State { return projectUpserted(st, *p) })
	s.refreshLinkedGoals(ctx, p.GoalID)
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error) {
	before := s.linkedGoal(id)

	p, err := s.backend().Projects.Update(ctx, id, fields)
	if err != nil {
		return nil, s.fail(sliceProjects, fmt.Errorf("failed to update project: %w", err))
	}
	s.commit(func(st State) State { return projectUpserted(st, *p) })
	s.refreshLinkedGoals(ctx, before, p.GoalID)
	return p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	before := s.linkedGoal(id)

	if err := s.backend().Projects.Delete(ctx, id); err != nil {
		return s.fail(sliceProjects, fmt.Errorf("failed to delete project: %w", err))
	}
	s.commit(func(st State) State { return projectRemoved(st, id) })
	s.refreshLinkedGoals(ctx, before)
	return nil
}

func (s *Store) linkedGoal(projectID int64) *int64 {
	st := s.State()
	for _, p := range st.Projects.Items {
		if p.ID == projectID {
			return p.GoalID
		}
	}
	return nil
}

// refreshLinkedGoals re-fetches loaded goals whose progress depends on a
// project that just changed. Failures only log; the project write already
// succeeded.
func (s *Store) refreshLinkedGoals(ctx context.Context, ids ...*int64) {
	seen := make(map[int64]bool)
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if _, ok := SelectGoal(s.State(), *id); !ok {
			continue
		}
		if _, err := s.RefreshGoal(ctx, *id); err != nil {
			slog.Warn("failed to refresh linked goal", "error", err, "goal_id", *id)
		}
	}
}

// Package store is the application state container. Views read a State
// snapshot and selectors; every change goes through an action that calls
// the REST collaborator and commits the result with a pure reducer.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/templui/folio/internal/debounce"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/session"
	"github.com/templui/folio/internal/steps"
)

type GoalAPI interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Goal], error)
	Get(ctx context.Context, id int64) (*model.Goal, error)
	Create(ctx context.Context, in model.GoalInput) (*model.Goal, error)
	Update(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error)
	Delete(ctx context.Context, id int64) error
}

type ProjectAPI interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Project], error)
	Get(ctx context.Context, id int64) (*model.Project, error)
	Create(ctx context.Context, fields model.ProjectFields) (*model.Project, error)
	Update(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error)
	Delete(ctx context.Context, id int64) error
}

type CertificateAPI interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Certificate], error)
}

// Collaborator is the REST backend as the store sees it.
type Collaborator struct {
	Goals        GoalAPI
	Steps        steps.API
	Projects     ProjectAPI
	Certificates CertificateAPI
}

type Options struct {
	PersistReorder bool
	SearchDebounce time.Duration
	// SearchTimeout bounds the request a debounced search fires.
	SearchTimeout time.Duration
}

type Store struct {
	api  Collaborator
	opts Options

	mu          sync.RWMutex
	state       State
	engines     map[int64]*steps.Engine
	projectsGen uint64

	search *debounce.Debouncer[model.ListParams]
}

func New(api Collaborator, opts Options) *Store {
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 30 * time.Second
	}
	s := &Store{
		api:     api,
		opts:    opts,
		engines: make(map[int64]*steps.Engine),
	}
	s.search = debounce.New(opts.SearchDebounce, s.runSearch)
	return s
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) backend() Collaborator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

// Reconnect swaps the collaborator, e.g. after signing in. Step engines
// bound to the old one are dropped and rebuilt on next use.
func (s *Store) Reconnect(api Collaborator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
	for id, e := range s.engines {
		e.Close()
		delete(s.engines, id)
	}
}

func (s *Store) commit(reduce func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state)
	return s.state
}

// Close stops a pending search and tears down the step engines.
func (s *Store) Close() {
	s.search.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.engines {
		e.Close()
		delete(s.engines, id)
	}
}

func (s *Store) SetSession(sess *session.Session) {
	s.commit(func(st State) State { return sessionSet(st, sess) })
}

// ClearSession signs out and forgets every loaded slice.
func (s *Store) ClearSession() {
	s.Close()
	s.commit(sessionCleared)
}

func (s *Store) fail(name string, err error) error {
	s.commit(func(st State) State { return sliceFailed(st, name, err) })
	return err
}

// LoadGoals fetches every goal page; goals are few and the dashboard
// buckets them all at once.
func (s *Store) LoadGoals(ctx context.Context) error {
	s.commit(func(st State) State { return sliceStarted(st, sliceGoals) })

	var all []model.Goal
	params := model.ListParams{}
	for page := 1; ; page++ {
		params.Page = page
		p, err := s.backend().Goals.List(ctx, params)
		if err != nil {
			slog.Error("failed to load goals", "error", err)
			return s.fail(sliceGoals, fmt.Errorf("failed to load goals: %w", err))
		}
		all = append(all, p.Results...)
		if p.Next == "" || len(p.Results) == 0 {
			break
		}
	}

	s.commit(func(st State) State { return goalsLoaded(st, all, len(all)) })
	s.syncEngines(all)
	return nil
}

// RefreshGoal re-fetches one goal with its steps and replaces it in state.
func (s *Store) RefreshGoal(ctx context.Context, id int64) (*model.Goal, error) {
	g, err := s.backend().Goals.Get(ctx, id)
	if err != nil {
		return nil, s.fail(sliceGoals, fmt.Errorf("failed to refresh goal: %w", err))
	}

	s.commit(func(st State) State { return goalUpserted(st, *g) })
	s.syncEngines([]model.Goal{*g})
	return g, nil
}

// CreateGoal creates the goal and then its initial steps in order. Blank
// step titles are skipped. The goal is refreshed at the end so the counters
// include the new steps, even when one of them failed.
func (s *Store) CreateGoal(ctx context.Context, in model.GoalInput, initialSteps []string) (*model.Goal, error) {
	g, err := s.backend().Goals.Create(ctx, in)
	if err != nil {
		return nil, s.fail(sliceGoals, fmt.Errorf("failed to create goal: %w", err))
	}
	s.commit(func(st State) State { return goalUpserted(st, *g) })

	var stepErr error
	order := 0
	for _, title := range initialSteps {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		_, err := s.backend().Steps.Create(ctx, model.StepInput{GoalID: g.ID, Title: title, Order: order})
		if err != nil {
			stepErr = fmt.Errorf("failed to create step %q: %w", title, err)
			break
		}
		order++
	}

	refreshed, err := s.RefreshGoal(ctx, g.ID)
	if stepErr != nil {
		return g, s.fail(sliceGoals, stepErr)
	}
	if err != nil {
		return g, err
	}
	return refreshed, nil
}

// UpdateGoal sends title, target and deadline only; steps are never part
// of a goal update.
func (s *Store) UpdateGoal(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error) {
	g, err := s.backend().Goals.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail(sliceGoals, fmt.Errorf("failed to update goal: %w", err))
	}
	s.commit(func(st State) State { return goalUpserted(st, *g) })
	s.syncEngines([]model.Goal{*g})
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.backend().Goals.Delete(ctx, id); err != nil {
		return s.fail(sliceGoals, fmt.Errorf("failed to delete goal: %w", err))
	}

	s.mu.Lock()
	if e, ok := s.engines[id]; ok {
		e.Close()
		delete(s.engines, id)
	}
	s.mu.Unlock()

	s.commit(func(st State) State { return goalRemoved(st, id) })
	return nil
}

func (s *Store) LoadCertificates(ctx context.Context) error {
	s.commit(func(st State) State { return sliceStarted(st, sliceCertificates) })

	p, err := s.backend().Certificates.List(ctx, model.ListParams{})
	if err != nil {
		return s.fail(sliceCertificates, fmt.Errorf("failed to load certificates: %w", err))
	}
	s.commit(func(st State) State { return certificatesLoaded(st, p.Results, p.Count) })
	return nil
}

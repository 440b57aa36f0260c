package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/steps"
)

// engine returns the step engine of a goal, seeding a new one from the
// goal's embedded steps when the goal is loaded and from the backend
// otherwise.
func (s *Store) engine(ctx context.Context, goalID int64) (*steps.Engine, error) {
	s.mu.Lock()
	e, ok := s.engines[goalID]
	if ok {
		s.mu.Unlock()
		return e, nil
	}
	e = steps.NewEngine(s.api.Steps, goalID, steps.Options{PersistReorder: s.opts.PersistReorder})
	s.engines[goalID] = e
	g, loaded := SelectGoal(s.state, goalID)
	s.mu.Unlock()

	if loaded {
		e.Replace(g.Steps)
		return e, nil
	}
	if err := e.Load(ctx); err != nil {
		s.mu.Lock()
		delete(s.engines, goalID)
		s.mu.Unlock()
		return nil, err
	}
	return e, nil
}

// syncEngines pushes authoritative step lists into existing engines.
func (s *Store) syncEngines(goals []model.Goal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range goals {
		if e, ok := s.engines[g.ID]; ok {
			e.Replace(g.Steps)
		}
	}
}

// settle re-fetches the goal after a step mutation, whatever its outcome,
// so counters and order come from the backend again. The mutation error
// wins over a refresh error.
func (s *Store) settle(ctx context.Context, goalID int64, opErr error) error {
	_, refreshErr := s.RefreshGoal(ctx, goalID)
	if opErr != nil {
		slog.Error("step mutation failed", "error", opErr, "goal_id", goalID)
		return s.fail(sliceGoals, opErr)
	}
	return refreshErr
}

// Steps returns the ordered steps of a goal.
func (s *Store) Steps(ctx context.Context, goalID int64) ([]model.Step, error) {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return e.Steps(), nil
}

func (s *Store) AddStep(ctx context.Context, goalID int64, title string) (*model.Step, error) {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return nil, err
	}

	step, err := e.Add(ctx, title)
	if errors.Is(err, steps.ErrEmptyTitle) {
		return nil, err
	}
	return step, s.settle(ctx, goalID, err)
}

func (s *Store) ToggleStep(ctx context.Context, goalID, stepID int64) (*model.Step, error) {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return nil, err
	}

	step, err := e.Toggle(ctx, stepID)
	return step, s.settle(ctx, goalID, err)
}

func (s *Store) RenameStep(ctx context.Context, goalID, stepID int64, title string) (*model.Step, error) {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return nil, err
	}

	step, err := e.Rename(ctx, stepID, title)
	if errors.Is(err, steps.ErrEmptyTitle) {
		return nil, err
	}
	return step, s.settle(ctx, goalID, err)
}

// MoveStep reorders one step. Without reorder persistence nothing changed
// remotely, so the goal is not refreshed and the new order lives only in
// the local state.
func (s *Store) MoveStep(ctx context.Context, goalID, stepID int64, direction int) (bool, error) {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return false, err
	}

	moved, err := e.Reorder(ctx, stepID, direction)
	if !moved && err == nil {
		return false, nil
	}

	if !s.opts.PersistReorder && err == nil {
		list := e.Steps()
		s.commit(func(st State) State { return goalStepsChanged(st, goalID, list) })
		return true, nil
	}

	return moved, s.settle(ctx, goalID, err)
}

func (s *Store) DeleteStep(ctx context.Context, goalID, stepID int64) error {
	e, err := s.engine(ctx, goalID)
	if err != nil {
		return err
	}

	return s.settle(ctx, goalID, e.Delete(ctx, stepID))
}

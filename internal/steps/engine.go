// Package steps keeps a goal's checklist stably ordered and applies
// mutations locally and against the REST collaborator.
//
// Local edits are optimistic and are not rolled back when the remote call
// fails. Callers resynchronize by reloading the parent goal.
package steps

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/templui/folio/internal/model"
)

var (
	ErrEmptyTitle   = errors.New("step title is required")
	ErrStepNotFound = errors.New("step not found")
	ErrClosed       = errors.New("step engine closed")
)

const (
	Up   = -1
	Down = 1
)

// API is the slice of the REST collaborator the engine talks to.
type API interface {
	List(ctx context.Context, goalID int64) ([]model.Step, error)
	Create(ctx context.Context, in model.StepInput) (*model.Step, error)
	Update(ctx context.Context, id int64, patch model.StepPatch) (*model.Step, error)
	Delete(ctx context.Context, id int64) error
}

type Options struct {
	// PersistReorder sends the renumbered order of moved steps to the
	// backend. When false a reorder only changes the local view.
	PersistReorder bool
}

type Engine struct {
	api    API
	goalID int64
	opts   Options

	mu     sync.Mutex
	steps  []model.Step
	gen    uint64
	closed bool
}

func NewEngine(api API, goalID int64, opts Options) *Engine {
	return &Engine{
		api:    api,
		goalID: goalID,
		opts:   opts,
	}
}

func (e *Engine) GoalID() int64 {
	return e.goalID
}

// Sort orders steps by (order, id) ascending. The input is not modified.
func Sort(steps []model.Step) []model.Step {
	out := slices.Clone(steps)
	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b model.Step) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Steps returns a sorted copy of the current list.
func (e *Engine) Steps() []model.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.steps)
}

// Replace swaps in an authoritative list, e.g. the steps embedded in a
// freshly fetched goal. Any Load still in flight is invalidated.
func (e *Engine) Replace(steps []model.Step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.steps = Sort(steps)
}

// Load fetches the list from the backend. A result that was superseded by a
// newer Load or Replace, or that lands after Close, is dropped.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.gen++
	token := e.gen
	e.mu.Unlock()

	list, err := e.api.List(ctx, e.goalID)
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || token != e.gen {
		slog.Debug("discarding stale step list", "goal_id", e.goalID)
		return nil
	}
	e.steps = Sort(list)
	return nil
}

// Close marks the engine as torn down. Late results are ignored afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Add creates a step at the end of the list. The step only joins the local
// list once the backend has assigned its id.
func (e *Engine) Add(ctx context.Context, title string) (*model.Step, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	e.mu.Lock()
	order := len(e.steps)
	e.mu.Unlock()

	created, err := e.api.Create(ctx, model.StepInput{
		GoalID: e.goalID,
		Title:  title,
		Order:  order,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.steps = Sort(append(e.steps, *created))
	}
	return created, nil
}

// Toggle flips is_done and swaps in the server's copy on success.
func (e *Engine) Toggle(ctx context.Context, stepID int64) (*model.Step, error) {
	e.mu.Lock()
	i := e.indexOf(stepID)
	if i < 0 {
		e.mu.Unlock()
		return nil, ErrStepNotFound
	}
	done := !e.steps[i].IsDone
	e.steps[i].IsDone = done
	e.mu.Unlock()

	updated, err := e.api.Update(ctx, stepID, model.StepPatch{IsDone: &done})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle step: %w", err)
	}

	e.replaceInPlace(*updated)
	return updated, nil
}

func (e *Engine) Rename(ctx context.Context, stepID int64, title string) (*model.Step, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	e.mu.Lock()
	i := e.indexOf(stepID)
	if i < 0 {
		e.mu.Unlock()
		return nil, ErrStepNotFound
	}
	e.steps[i].Title = title
	e.mu.Unlock()

	updated, err := e.api.Update(ctx, stepID, model.StepPatch{Title: &title})
	if err != nil {
		return nil, fmt.Errorf("failed to rename step: %w", err)
	}

	e.replaceInPlace(*updated)
	return updated, nil
}

// Reorder moves a step one slot up (-1) or down (+1) and renumbers the whole
// list so order equals position. It reports false when the step is already
// at the boundary in that direction.
func (e *Engine) Reorder(ctx context.Context, stepID int64, direction int) (bool, error) {
	direction = cmp.Compare(direction, 0)
	if direction == 0 {
		return false, nil
	}

	e.mu.Lock()
	i := e.indexOf(stepID)
	if i < 0 {
		e.mu.Unlock()
		return false, ErrStepNotFound
	}
	j := i + direction
	if j < 0 || j >= len(e.steps) {
		e.mu.Unlock()
		return false, nil
	}

	e.steps[i], e.steps[j] = e.steps[j], e.steps[i]
	var changed []model.Step
	for pos := range e.steps {
		if e.steps[pos].Order != pos {
			e.steps[pos].Order = pos
			changed = append(changed, e.steps[pos])
		}
	}
	e.mu.Unlock()

	if !e.opts.PersistReorder {
		return true, nil
	}

	for _, s := range changed {
		order := s.Order
		_, err := e.api.Update(ctx, s.ID, model.StepPatch{Order: &order})
		if err != nil {
			return true, fmt.Errorf("failed to persist step order: %w", err)
		}
	}
	return true, nil
}

func (e *Engine) Delete(ctx context.Context, stepID int64) error {
	e.mu.Lock()
	i := e.indexOf(stepID)
	if i < 0 {
		e.mu.Unlock()
		return ErrStepNotFound
	}
	e.steps = slices.Delete(e.steps, i, i+1)
	e.mu.Unlock()

	err := e.api.Delete(ctx, stepID)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	return nil
}

// Counts returns done and total steps of the local view.
func (e *Engine) Counts() (done, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.steps {
		if s.IsDone {
			done++
		}
	}
	return done, len(e.steps)
}

// indexOf must be called with mu held.
func (e *Engine) indexOf(stepID int64) int {
	return slices.IndexFunc(e.steps, func(s model.Step) bool { return s.ID == stepID })
}

func (e *Engine) replaceInPlace(s model.Step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(s.ID); i >= 0 {
		// toggling or renaming never moves a step
		s.Order = e.steps[i].Order
		e.steps[i] = s
	}
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/validation"
)

type StepRepository interface {
	List(ctx context.Context, goalID int64) ([]model.Step, error)
	Create(ctx context.Context, in model.StepInput) (*model.Step, error)
	Update(ctx context.Context, id int64, patch model.StepPatch) (*model.Step, error)
	Delete(ctx context.Context, id int64) error
}

type stepRepository struct {
	db *sqlx.DB
}

func NewStepRepository(db *sqlx.DB) StepRepository {
	return &stepRepository{db: db}
}

const stepSelect = `SELECT id, goal_id, title, is_done, step_order FROM goal_steps`

func listSteps(ctx context.Context, db sqlx.QueryerContext, goalID int64) ([]model.Step, error) {
	steps := []model.Step{}
	err := sqlx.SelectContext(ctx, db, &steps, stepSelect+` WHERE goal_id = $1 ORDER BY step_order ASC, id ASC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return steps, nil
}

func (r *stepRepository) List(ctx context.Context, goalID int64) ([]model.Step, error) {
	return listSteps(ctx, r.db, goalID)
}

func (r *stepRepository) get(ctx context.Context, id int64) (*model.Step, error) {
	var s model.Step
	err := r.db.GetContext(ctx, &s, stepSelect+` WHERE id = $1`, id)
	if isNoRows(err) {
		return nil, notFound("Step", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get step: %w", err)
	}
	return &s, nil
}

func (r *stepRepository) Create(ctx context.Context, in model.StepInput) (*model.Step, error) {
	verr := &apierr.ValidationError{}
	if msg := validation.ValidateTitle(in.Title); msg != "" {
		verr.Add("title", msg)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM goals WHERE id = $1)`, in.GoalID); err != nil {
		return nil, fmt.Errorf("check goal: %w", err)
	}
	if !exists {
		verr.Add("goal", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.GoalID))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO goal_steps (goal_id, title, is_done, step_order) VALUES ($1, $2, $3, $4) RETURNING id`,
		in.GoalID, strings.TrimSpace(in.Title), false, in.Order,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}

	return r.get(ctx, id)
}

func (r *stepRepository) Update(ctx context.Context, id int64, patch model.StepPatch) (*model.Step, error) {
	q := &query{}
	var sets []string

	if patch.Title != nil {
		if msg := validation.ValidateTitle(*patch.Title); msg != "" {
			verr := &apierr.ValidationError{}
			verr.Add("title", msg)
			return nil, verr
		}
		sets = append(sets, "title = "+q.bind(strings.TrimSpace(*patch.Title)))
	}
	if patch.IsDone != nil {
		sets = append(sets, "is_done = "+q.bind(*patch.IsDone))
	}
	if patch.Order != nil {
		sets = append(sets, "step_order = "+q.bind(*patch.Order))
	}
	if len(sets) == 0 {
		return r.get(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE goal_steps SET `+strings.Join(sets, ", ")+` WHERE id = `+q.bind(id), q.args...)
	if err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}
	if err := affected(res, "Step", id); err != nil {
		return nil, err
	}

	return r.get(ctx, id)
}

func (r *stepRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goal_steps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete step: %w", err)
	}
	return affected(res, "Step", id)
}

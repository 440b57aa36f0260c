package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/validation"
)

type GoalRepository interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Goal], error)
	Get(ctx context.Context, id int64) (*model.Goal, error)
	Create(ctx context.Context, in model.GoalInput) (*model.Goal, error)
	Update(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error)
	Delete(ctx context.Context, id int64) error
}

type goalRepository struct {
	db       *sqlx.DB
	pageSize int
}

func NewGoalRepository(db *sqlx.DB, pageSize int) GoalRepository {
	return &goalRepository{db: db, pageSize: pageSize}
}

// goalRow carries the counters the select derives alongside the goal.
type goalRow struct {
	model.Goal
	CompletedProjects int `db:"completed_projects"`
}

const goalSelect = `SELECT g.id, g.title, g.target_projects, g.deadline,
	(SELECT COUNT(*) FROM goal_steps s WHERE s.goal_id = g.id) AS total_steps,
	(SELECT COUNT(*) FROM goal_steps s WHERE s.goal_id = g.id AND s.is_done) AS completed_steps,
	(SELECT COUNT(*) FROM projects p WHERE p.goal_id = g.id AND p.status = 'completed') AS completed_projects
	FROM goals g`

var goalOrdering = map[string]string{
	"id":              "g.id",
	"title":           "LOWER(g.title)",
	"deadline":        "g.deadline",
	"target_projects": "g.target_projects",
	"created_at":      "g.created_at",
}

func (row goalRow) goal() model.Goal {
	g := row.Goal
	if g.TotalSteps > 0 {
		g.StepsProgressPercent = progress.Percent(g.CompletedSteps, g.TotalSteps)
	}
	if g.TargetProjects > 0 {
		g.ProgressPercent = min(100, row.CompletedProjects*100/g.TargetProjects)
	}
	g.Steps = []model.Step{}
	return g
}

func (r *goalRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.Goal], error) {
	q := &query{}
	if s := strings.TrimSpace(params.Search); s != "" {
		q.where("LOWER(g.title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM goals g`+q.clause(), q.args...); err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}

	where := q.clause()
	limit, page := paginate[model.Goal](q, params.Page, r.pageSize)

	var rows []goalRow
	stmt := goalSelect + where + orderBy(params.Ordering, goalOrdering, "g.deadline ASC, g.id ASC") + limit
	if err := r.db.SelectContext(ctx, &rows, stmt, q.args...); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := make([]model.Goal, 0, len(rows))
	for _, row := range rows {
		g := row.goal()
		steps, err := listSteps(ctx, r.db, g.ID)
		if err != nil {
			return nil, err
		}
		g.Steps = steps
		goals = append(goals, g)
	}

	return page(count, goals), nil
}

func (r *goalRepository) Get(ctx context.Context, id int64) (*model.Goal, error) {
	var row goalRow
	err := r.db.GetContext(ctx, &row, goalSelect+` WHERE g.id = $1`, id)
	if isNoRows(err) {
		return nil, notFound("Goal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}

	g := row.goal()
	if g.Steps, err = listSteps(ctx, r.db, id); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *goalRepository) Create(ctx context.Context, in model.GoalInput) (*model.Goal, error) {
	if err := validation.ValidateGoal(in); err != nil {
		return nil, err
	}

	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO goals (title, target_projects, deadline) VALUES ($1, $2, $3) RETURNING id`,
		strings.TrimSpace(in.Title), in.TargetProjects, datemath.ToISO(in.Deadline),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *goalRepository) Update(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error) {
	if err := validation.ValidateGoalPatch(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	q := &query{}
	var sets []string
	if patch.Title != nil {
		sets = append(sets, "title = "+q.bind(strings.TrimSpace(*patch.Title)))
	}
	if patch.TargetProjects != nil {
		sets = append(sets, "target_projects = "+q.bind(*patch.TargetProjects))
	}
	if patch.Deadline != nil {
		sets = append(sets, "deadline = "+q.bind(datemath.ToISO(*patch.Deadline)))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	stmt := `UPDATE goals SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + q.bind(id)
	res, err := r.db.ExecContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	if err := affected(res, "Goal", id); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete removes the goal and its steps and unlinks its projects. The
// schema cascades too, but sqlite only enforces that with foreign_keys on.
func (r *goalRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM goal_steps WHERE goal_id = $1`, id); err != nil {
		return fmt.Errorf("delete goal steps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET goal_id = NULL WHERE goal_id = $1`, id); err != nil {
		return fmt.Errorf("unlink goal projects: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if err := affected(res, "Goal", id); err != nil {
		return err
	}

	return tx.Commit()
}

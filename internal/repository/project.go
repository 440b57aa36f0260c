package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/validation"
)

type ProjectRepository interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Project], error)
	Get(ctx context.Context, id int64) (*model.Project, error)
	Create(ctx context.Context, fields model.ProjectFields) (*model.Project, error)
	Update(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error)
	Delete(ctx context.Context, id int64) error
}

type projectRepository struct {
	db       *sqlx.DB
	pageSize int
}

func NewProjectRepository(db *sqlx.DB, pageSize int) ProjectRepository {
	return &projectRepository{db: db, pageSize: pageSize}
}

const projectSelect = `SELECT id, title, status, start_date, end_date, work_type, primary_goal,
	goal_id, problem_solved, tools_used, skills_used, challenges_short, skills_to_improve,
	description, certificate_id FROM projects`

var projectOrdering = map[string]string{
	"id":         "id",
	"title":      "LOWER(title)",
	"status":     "status",
	"start_date": "start_date",
	"end_date":   "end_date",
	"created_at": "created_at",
}

// List supports the "status" and "goal" filters and a title search.
func (r *projectRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.Project], error) {
	q := &query{}
	if s := strings.TrimSpace(params.Search); s != "" {
		q.where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if status := params.Filter("status"); status != "" {
		q.where("status = ?", status)
	}
	if goal := params.Filter("goal"); goal != "" {
		id, ok := parseID(goal)
		if !ok {
			verr := &apierr.ValidationError{}
			verr.Add("goal", "Select a valid choice. That choice is not one of the available choices.")
			return nil, verr
		}
		q.where("goal_id = ?", id)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects`+q.clause(), q.args...); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	where := q.clause()
	limit, page := paginate[model.Project](q, params.Page, r.pageSize)

	var projects []model.Project
	stmt := projectSelect + where + orderBy(params.Ordering, projectOrdering, "start_date DESC, id DESC") + limit
	if err := r.db.SelectContext(ctx, &projects, stmt, q.args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return page(count, projects), nil
}

func (r *projectRepository) Get(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	err := r.db.GetContext(ctx, &p, projectSelect+` WHERE id = $1`, id)
	if isNoRows(err) {
		return nil, notFound("Project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (r *projectRepository) Create(ctx context.Context, fields model.ProjectFields) (*model.Project, error) {
	f, err := r.prepare(ctx, fields)
	if err != nil {
		return nil, err
	}

	var id int64
	err = r.db.QueryRowxContext(ctx, `INSERT INTO projects (title, status, start_date, end_date, work_type,
		primary_goal, goal_id, problem_solved, tools_used, skills_used, challenges_short,
		skills_to_improve, description, certificate_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`,
		f.Title, f.Status, f.StartDate, f.EndDate, f.WorkType,
		f.PrimaryGoal, f.GoalID, f.ProblemSolved, f.ToolsUsed, f.SkillsUsed, f.ChallengesShort,
		f.SkillsToImprove, f.Description, f.CertificateID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *projectRepository) Update(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error) {
	f, err := r.prepare(ctx, fields)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE projects SET title = $1, status = $2, start_date = $3,
		end_date = $4, work_type = $5, primary_goal = $6, goal_id = $7, problem_solved = $8,
		tools_used = $9, skills_used = $10, challenges_short = $11, skills_to_improve = $12,
		description = $13, certificate_id = $14, updated_at = CURRENT_TIMESTAMP
		WHERE id = $15`,
		f.Title, f.Status, f.StartDate, f.EndDate, f.WorkType,
		f.PrimaryGoal, f.GoalID, f.ProblemSolved, f.ToolsUsed, f.SkillsUsed, f.ChallengesShort,
		f.SkillsToImprove, f.Description, f.CertificateID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if err := affected(res, "Project", id); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return affected(res, "Project", id)
}

// prepare validates and normalizes a payload, including its references.
func (r *projectRepository) prepare(ctx context.Context, fields model.ProjectFields) (model.ProjectFields, error) {
	verr := &apierr.ValidationError{}
	if err := validation.ValidateProject(fields); err != nil && !errors.As(err, &verr) {
		return fields, err
	}

	refs := []struct {
		field string
		table string
		id    *int64
	}{
		{"goal", "goals", fields.GoalID},
		{"certificate", "certificates", fields.CertificateID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM `+ref.table+` WHERE id = $1)`, *ref.id); err != nil {
			return fields, fmt.Errorf("check %s: %w", ref.field, err)
		}
		if !exists {
			verr.Add(ref.field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *ref.id))
		}
	}

	if err := verr.OrNil(); err != nil {
		return fields, err
	}
	return validation.NormalizeProject(fields), nil
}

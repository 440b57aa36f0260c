package api

import (
	"context"
	"strconv"

	"github.com/templui/folio/internal/model"
)

type GoalService struct {
	r resource[model.Goal]
}

func (s *GoalService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Goal], error) {
	return s.r.list(ctx, params)
}

func (s *GoalService) Get(ctx context.Context, id int64) (*model.Goal, error) {
	return s.r.get(ctx, id)
}

func (s *GoalService) Create(ctx context.Context, in model.GoalInput) (*model.Goal, error) {
	return s.r.create(ctx, in)
}

func (s *GoalService) Update(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error) {
	return s.r.update(ctx, id, patch)
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	return s.r.delete(ctx, id)
}

type StepService struct {
	r resource[model.Step]
}

// maxStepPages bounds the page walk in List.
const maxStepPages = 50

// List returns every step of a goal, following pagination.
func (s *StepService) List(ctx context.Context, goalID int64) ([]model.Step, error) {
	params := model.ListParams{
		Ordering: "order",
		Filters:  map[string]string{"goal": strconv.FormatInt(goalID, 10)},
	}

	var all []model.Step
	for page := 1; page <= maxStepPages; page++ {
		params.Page = page
		p, err := s.r.list(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if p.Next == "" {
			break
		}
	}
	return all, nil
}

func (s *StepService) Create(ctx context.Context, in model.StepInput) (*model.Step, error) {
	return s.r.create(ctx, in)
}

func (s *StepService) Update(ctx context.Context, id int64, patch model.StepPatch) (*model.Step, error) {
	return s.r.update(ctx, id, patch)
}

func (s *StepService) Delete(ctx context.Context, id int64) error {
	return s.r.delete(ctx, id)
}

type ProjectService struct {
	r resource[model.Project]
}

func (s *ProjectService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Project], error) {
	return s.r.list(ctx, params)
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*model.Project, error) {
	return s.r.get(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, fields model.ProjectFields) (*model.Project, error) {
	return s.r.create(ctx, fields)
}

func (s *ProjectService) Update(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error) {
	return s.r.update(ctx, id, fields)
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.r.delete(ctx, id)
}

type CertificateService struct {
	r resource[model.Certificate]
}

func (s *CertificateService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Certificate], error) {
	return s.r.list(ctx, params)
}

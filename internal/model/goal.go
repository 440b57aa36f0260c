package model

// Goal is a portfolio target: a number of projects to finish by a deadline,
// optionally broken down into a checklist of steps. The counters and
// percentages are owned by the backend and arrive precomputed.
type Goal struct {
	ID                   int64  `json:"id" yaml:"id" db:"id"`
	Title                string `json:"title" yaml:"title" db:"title"`
	TargetProjects       int    `json:"target_projects" yaml:"target_projects" db:"target_projects"`
	Deadline             string `json:"deadline" yaml:"deadline" db:"deadline"`
	TotalSteps           int    `json:"total_steps" yaml:"total_steps" db:"total_steps"`
	CompletedSteps       int    `json:"completed_steps" yaml:"completed_steps" db:"completed_steps"`
	ProgressPercent      int    `json:"progress_percent" yaml:"progress_percent" db:"progress_percent"`
	StepsProgressPercent int    `json:"steps_progress_percent" yaml:"steps_progress_percent" db:"steps_progress_percent"`
	Steps                []Step `json:"steps" yaml:"steps" db:"-"`
}

// GoalInput is the create payload for a goal.
type GoalInput struct {
	Title          string `json:"title" yaml:"title"`
	TargetProjects int    `json:"target_projects" yaml:"target_projects"`
	Deadline       string `json:"deadline" yaml:"deadline"`
}

// GoalPatch carries the fields a goal update may touch. Steps are mutated
// through their own endpoints and never through a goal patch.
type GoalPatch struct {
	Title          *string `json:"title,omitempty" yaml:"title,omitempty"`
	TargetProjects *int    `json:"target_projects,omitempty" yaml:"target_projects,omitempty"`
	Deadline       *string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

func (p GoalPatch) Empty() bool {
	return p.Title == nil && p.TargetProjects == nil && p.Deadline == nil
}

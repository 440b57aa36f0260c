package model

// Step is one checklist item of a goal. Order values may collide, so the
// id breaks ties.
type Step struct {
	ID     int64  `json:"id" yaml:"id" db:"id"`
	GoalID int64  `json:"goal" yaml:"goal" db:"goal_id"`
	Title  string `json:"title" yaml:"title" db:"title"`
	IsDone bool   `json:"is_done" yaml:"is_done" db:"is_done"`
	Order  int    `json:"order" yaml:"order" db:"step_order"`
}

type StepInput struct {
	GoalID int64  `json:"goal" yaml:"goal"`
	Title  string `json:"title" yaml:"title"`
	Order  int    `json:"order" yaml:"order"`
}

type StepPatch struct {
	Title  *string `json:"title,omitempty" yaml:"title,omitempty"`
	IsDone *bool   `json:"is_done,omitempty" yaml:"is_done,omitempty"`
	Order  *int    `json:"order,omitempty" yaml:"order,omitempty"`
}

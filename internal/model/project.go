package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Label returns the display form, e.g. "In Progress".
func (s ProjectStatus) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

type WorkType string

const (
	WorkTypeIndividual WorkType = "individual"
	WorkTypeTeam       WorkType = "team"
)

// ProjectFields are the user-editable fields of a project. It doubles as the
// create and update payload.
type ProjectFields struct {
	Title           string        `json:"title" yaml:"title" db:"title"`
	Status          ProjectStatus `json:"status" yaml:"status" db:"status"`
	StartDate       string        `json:"start_date" yaml:"start_date" db:"start_date"`
	EndDate         string        `json:"end_date,omitempty" yaml:"end_date,omitempty" db:"end_date"`
	WorkType        WorkType      `json:"work_type,omitempty" yaml:"work_type,omitempty" db:"work_type"`
	PrimaryGoal     string        `json:"primary_goal,omitempty" yaml:"primary_goal,omitempty" db:"primary_goal"`
	GoalID          *int64        `json:"goal,omitempty" yaml:"goal,omitempty" db:"goal_id"`
	ProblemSolved   string        `json:"problem_solved" yaml:"problem_solved" db:"problem_solved"`
	ToolsUsed       string        `json:"tools_used" yaml:"tools_used" db:"tools_used"`
	SkillsUsed      string        `json:"skills_used" yaml:"skills_used" db:"skills_used"`
	ChallengesShort string        `json:"challenges_short" yaml:"challenges_short" db:"challenges_short"`
	SkillsToImprove string        `json:"skills_to_improve" yaml:"skills_to_improve" db:"skills_to_improve"`
	Description     string        `json:"description" yaml:"description" db:"description"`
	CertificateID   *int64        `json:"certificate,omitempty" yaml:"certificate,omitempty" db:"certificate_id"`
}

type Project struct {
	ID            int64 `json:"id" yaml:"id" db:"id"`
	ProjectFields `yaml:",inline"`
}

package validation

import (
	"fmt"
	"strings"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
)

// NormalizeProject trims text, ISO-normalizes dates and drops the end date
// unless the project is completed, where it is the only place it means
// anything.
func NormalizeProject(f model.ProjectFields) model.ProjectFields {
	f.Title = strings.TrimSpace(f.Title)
	f.StartDate = datemath.ToISO(f.StartDate)
	f.EndDate = datemath.ToISO(f.EndDate)
	f.PrimaryGoal = strings.TrimSpace(f.PrimaryGoal)
	f.ProblemSolved = strings.TrimSpace(f.ProblemSolved)
	f.ToolsUsed = strings.TrimSpace(f.ToolsUsed)
	f.SkillsUsed = strings.TrimSpace(f.SkillsUsed)
	f.ChallengesShort = strings.TrimSpace(f.ChallengesShort)
	f.SkillsToImprove = strings.TrimSpace(f.SkillsToImprove)
	f.Description = strings.TrimSpace(f.Description)

	if f.Status != model.ProjectStatusCompleted {
		f.EndDate = ""
	}
	return f
}

// ValidateProject checks a project payload. The end date is required for
// completed projects and must fall strictly after the start date.
func ValidateProject(f model.ProjectFields) error {
	verr := &apierr.ValidationError{}

	if msg := ValidateTitle(f.Title); msg != "" {
		verr.Add("title", msg)
	}

	if !f.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid choice.", string(f.Status)))
	}

	switch f.WorkType {
	case "", model.WorkTypeIndividual, model.WorkTypeTeam:
	default:
		verr.Add("work_type", fmt.Sprintf("%q is not a valid choice.", string(f.WorkType)))
	}

	start := datemath.ToISO(f.StartDate)
	if strings.TrimSpace(f.StartDate) == "" {
		verr.Add("start_date", "This field is required.")
	} else if start == "" {
		verr.Add("start_date", msgDateFormat)
	}

	if f.Status == model.ProjectStatusCompleted {
		end := datemath.ToISO(f.EndDate)
		switch {
		case strings.TrimSpace(f.EndDate) == "":
			verr.Add("end_date", "End date is required for completed projects.")
		case end == "":
			verr.Add("end_date", msgDateFormat)
		case start != "" && end <= start:
			verr.Add("end_date", "End date must be after the start date.")
		}
	}

	return verr.OrNil()
}

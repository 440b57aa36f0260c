package validation

import (
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
)

const msgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."

// ValidateGoal checks a goal create payload.
func ValidateGoal(in model.GoalInput) error {
	verr := &apierr.ValidationError{}

	if msg := ValidateTitle(in.Title); msg != "" {
		verr.Add("title", msg)
	}
	if in.TargetProjects < 1 {
		verr.Add("target_projects", "Ensure this value is greater than or equal to 1.")
	}
	if datemath.ToISO(in.Deadline) == "" {
		verr.Add("deadline", msgDateFormat)
	}

	return verr.OrNil()
}

// ValidateGoalPatch checks only the fields present in the patch.
func ValidateGoalPatch(p model.GoalPatch) error {
	verr := &apierr.ValidationError{}

	if p.Title != nil {
		if msg := ValidateTitle(*p.Title); msg != "" {
			verr.Add("title", msg)
		}
	}
	if p.TargetProjects != nil && *p.TargetProjects < 1 {
		verr.Add("target_projects", "Ensure this value is greater than or equal to 1.")
	}
	if p.Deadline != nil && datemath.ToISO(*p.Deadline) == "" {
		verr.Add("deadline", msgDateFormat)
	}

	return verr.OrNil()
}

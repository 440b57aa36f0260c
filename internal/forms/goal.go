package forms

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/validation"
)

type GoalSaver interface {
	CreateGoal(ctx context.Context, in model.GoalInput, initialSteps []string) (*model.Goal, error)
	UpdateGoal(ctx context.Context, id int64, patch model.GoalPatch) (*model.Goal, error)
}

type goalValues struct {
	input model.GoalInput
	steps []string
}

// GoalForm edits title, target and deadline. Initial steps are only part
// of the create form; afterwards steps have their own actions.
type GoalForm struct {
	id       int64
	values   goalValues
	baseline goalValues
	tracker  *formstate.Tracker
	errs     *apierr.ValidationError
}

// NewGoalForm starts a one-project goal due in thirty days.
func NewGoalForm() *GoalForm {
	f := &GoalForm{}
	f.values = goalValues{input: model.GoalInput{
		TargetProjects: 1,
		Deadline:       datemath.AddDays(datemath.TodayISO(), 30),
	}}
	f.baseline = f.values
	f.tracker = formstate.NewTracker(formstate.ModeCreate, f.key())
	return f
}

func EditGoalForm(g model.Goal) *GoalForm {
	f := &GoalForm{id: g.ID}
	f.values = goalValues{input: model.GoalInput{
		Title:          g.Title,
		TargetProjects: g.TargetProjects,
		Deadline:       g.Deadline,
	}}
	f.baseline = f.values
	f.tracker = formstate.NewTracker(formstate.ModeEdit, f.key())
	return f
}

func (f *GoalForm) key() formstate.Key {
	in := f.values.input
	return formstate.Snapshot(formstate.Fields{
		"title":           in.Title,
		"target_projects": strconv.Itoa(in.TargetProjects),
		"deadline":        in.Deadline,
		"steps":           strings.Join(f.values.steps, "\n"),
	}, formstate.Options{DateFields: []string{"deadline"}})
}

func (f *GoalForm) ID() int64              { return f.id }
func (f *GoalForm) Input() model.GoalInput { return f.values.input }
func (f *GoalForm) InitialSteps() []string { return f.values.steps }
func (f *GoalForm) State() formstate.State { return f.tracker.State() }
func (f *GoalForm) Mode() formstate.Mode   { return f.tracker.Mode() }
func (f *GoalForm) CanSubmit() bool {
	return f.tracker.State() != formstate.Saving && f.tracker.IsDirty()
}
func (f *GoalForm) CanReset() bool                  { return f.tracker.CanReset() }
func (f *GoalForm) Errors() *apierr.ValidationError { return f.errs }

func (f *GoalForm) SetTitle(v string) {
	f.values.input.Title = v
	f.tracker.Update(f.key())
}

func (f *GoalForm) SetTargetProjects(n int) {
	f.values.input.TargetProjects = n
	f.tracker.Update(f.key())
}

func (f *GoalForm) SetDeadline(v string) {
	f.values.input.Deadline = v
	f.tracker.Update(f.key())
}

// SetInitialSteps is ignored once the goal exists.
func (f *GoalForm) SetInitialSteps(titles []string) {
	if f.tracker.Mode() != formstate.ModeCreate {
		return
	}
	f.values.steps = append([]string(nil), titles...)
	f.tracker.Update(f.key())
}

func (f *GoalForm) Validate() error {
	err := validation.ValidateGoal(f.values.input)
	f.errs = nil
	var verr *apierr.ValidationError
	if errors.As(err, &verr) {
		f.errs = verr
	}
	return err
}

func (f *GoalForm) Submit(ctx context.Context, saver GoalSaver) (*model.Goal, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := f.tracker.BeginSave(); err != nil {
		return nil, err
	}

	in := f.values.input
	in.Title = strings.TrimSpace(in.Title)
	in.Deadline = datemath.ToISO(in.Deadline)

	var (
		saved *model.Goal
		err   error
	)
	if f.tracker.Mode() == formstate.ModeCreate {
		saved, err = saver.CreateGoal(ctx, in, f.values.steps)
	} else {
		saved, err = saver.UpdateGoal(ctx, f.id, model.GoalPatch{
			Title:          &in.Title,
			TargetProjects: &in.TargetProjects,
			Deadline:       &in.Deadline,
		})
	}
	if err != nil && saved == nil {
		var verr *apierr.ValidationError
		if errors.As(err, &verr) {
			f.errs = verr
		}
		f.tracker.SaveFailed(err)
		return nil, err
	}

	// A create whose goal exists but whose initial steps partly failed is
	// still a saved goal; the error is passed on for display.
	f.id = saved.ID
	f.values = goalValues{input: model.GoalInput{
		Title:          saved.Title,
		TargetProjects: saved.TargetProjects,
		Deadline:       saved.Deadline,
	}}
	f.baseline = f.values
	f.tracker.SaveSucceeded(f.key())
	return saved, err
}

func (f *GoalForm) Reset() {
	if f.tracker.State() == formstate.Saving {
		return
	}
	f.values = f.baseline
	f.errs = nil
	f.tracker.Reset()
}

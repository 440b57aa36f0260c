// Package forms holds the create/edit forms: their field values, the
// derived description and the save lifecycle.
package forms

import (
	"context"
	"errors"
	"strconv"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/describe"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/validation"
)

type ProjectSaver interface {
	CreateProject(ctx context.Context, fields model.ProjectFields) (*model.Project, error)
	UpdateProject(ctx context.Context, id int64, fields model.ProjectFields) (*model.Project, error)
}

var projectDates = []string{"start_date", "end_date"}

type ProjectForm struct {
	id       int64
	fields   model.ProjectFields
	baseline model.ProjectFields
	desc     *describe.Field
	tracker  *formstate.Tracker
	errs     *apierr.ValidationError
}

// NewProjectForm starts a planned project beginning today.
func NewProjectForm() *ProjectForm {
	f := &ProjectForm{}
	f.load(0, model.ProjectFields{
		Status:    model.ProjectStatusPlanned,
		StartDate: datemath.TodayISO(),
		WorkType:  model.WorkTypeIndividual,
	}, formstate.ModeCreate)
	return f
}

func EditProjectForm(p model.Project) *ProjectForm {
	f := &ProjectForm{}
	f.load(p.ID, p.ProjectFields, formstate.ModeEdit)
	return f
}

// load makes fields the new baseline. A stored description that differs
// from what the fields generate was written by hand and stays user-owned.
func (f *ProjectForm) load(id int64, fields model.ProjectFields, mode formstate.Mode) {
	f.id = id
	f.fields = fields
	f.baseline = fields
	f.errs = nil

	generated := describe.Generate(fields)
	f.desc = describe.NewField(generated)
	if mode == formstate.ModeEdit && fields.Description != "" && fields.Description != generated {
		f.desc.Edit(fields.Description)
	}
	f.fields.Description = f.desc.Value()

	if f.tracker == nil {
		f.tracker = formstate.NewTracker(mode, f.keyOf(f.fields))
	} else {
		f.tracker.Rebase(mode, f.keyOf(f.fields))
	}
}

// keyOf snapshots v. The description only takes part while the user owns
// it, for the baseline and the current values alike.
func (f *ProjectForm) keyOf(v model.ProjectFields) formstate.Key {
	ids := func(id *int64) string {
		if id == nil {
			return ""
		}
		return strconv.FormatInt(*id, 10)
	}
	return formstate.Snapshot(formstate.Fields{
		"title":                  v.Title,
		"status":                 string(v.Status),
		"start_date":             v.StartDate,
		"end_date":               v.EndDate,
		"work_type":              string(v.WorkType),
		"primary_goal":           v.PrimaryGoal,
		"goal":                   ids(v.GoalID),
		"problem_solved":         v.ProblemSolved,
		"tools_used":             v.ToolsUsed,
		"skills_used":            v.SkillsUsed,
		"challenges_short":       v.ChallengesShort,
		"skills_to_improve":      v.SkillsToImprove,
		"certificate":            ids(v.CertificateID),
		formstate.DescriptionKey: v.Description,
	}, formstate.Options{IncludeDescription: f.desc.Dirty(), DateFields: projectDates})
}

// changed regenerates the description (unless the user owns it) and
// refreshes the dirty state.
func (f *ProjectForm) changed() {
	f.desc.Sync(describe.Generate(f.fields))
	f.fields.Description = f.desc.Value()
	f.track()
}

// track rebuilds both snapshots, since ownership of the description
// decides which fields are compared.
func (f *ProjectForm) track() {
	f.tracker.Rekey(f.keyOf(f.baseline), f.keyOf(f.fields))
}

func (f *ProjectForm) ID() int64                    { return f.id }
func (f *ProjectForm) Fields() model.ProjectFields  { return f.fields }
func (f *ProjectForm) Description() *describe.Field { return f.desc }
func (f *ProjectForm) State() formstate.State       { return f.tracker.State() }
func (f *ProjectForm) Mode() formstate.Mode         { return f.tracker.Mode() }
func (f *ProjectForm) CanSubmit() bool {
	return f.tracker.State() != formstate.Saving && f.tracker.IsDirty()
}
func (f *ProjectForm) CanReset() bool { return f.tracker.CanReset() }

// Errors returns the field errors of the last validation or save.
func (f *ProjectForm) Errors() *apierr.ValidationError { return f.errs }

func (f *ProjectForm) SetTitle(v string)               { f.fields.Title = v; f.changed() }
func (f *ProjectForm) SetStatus(v model.ProjectStatus) { f.fields.Status = v; f.changed() }
func (f *ProjectForm) SetStartDate(v string)           { f.fields.StartDate = v; f.changed() }
func (f *ProjectForm) SetEndDate(v string)             { f.fields.EndDate = v; f.changed() }
func (f *ProjectForm) SetWorkType(v model.WorkType)    { f.fields.WorkType = v; f.changed() }
func (f *ProjectForm) SetPrimaryGoal(v string)         { f.fields.PrimaryGoal = v; f.changed() }
func (f *ProjectForm) SetGoal(id *int64)               { f.fields.GoalID = id; f.changed() }
func (f *ProjectForm) SetProblemSolved(v string)       { f.fields.ProblemSolved = v; f.changed() }
func (f *ProjectForm) SetToolsUsed(v string)           { f.fields.ToolsUsed = v; f.changed() }
func (f *ProjectForm) SetSkillsUsed(v string)          { f.fields.SkillsUsed = v; f.changed() }
func (f *ProjectForm) SetChallenges(v string)          { f.fields.ChallengesShort = v; f.changed() }
func (f *ProjectForm) SetSkillsToImprove(v string)     { f.fields.SkillsToImprove = v; f.changed() }
func (f *ProjectForm) SetCertificate(id *int64)        { f.fields.CertificateID = id; f.changed() }

// SetDescription is a direct edit; text that differs from the generated
// one takes the description over from the generator.
func (f *ProjectForm) SetDescription(v string) {
	f.desc.Edit(v)
	f.fields.Description = f.desc.Value()
	f.track()
}

// RegenerateDescription hands the description back to the generator.
func (f *ProjectForm) RegenerateDescription() {
	f.desc.Reset(describe.Generate(f.fields))
	f.fields.Description = f.desc.Value()
	f.track()
}

// Apply replaces every field at once, e.g. from a YAML file. A non-empty
// description in fields counts as a user edit.
func (f *ProjectForm) Apply(fields model.ProjectFields) {
	desc := fields.Description
	fields.Description = f.fields.Description
	f.fields = fields
	f.changed()
	if desc != "" {
		f.SetDescription(desc)
	}
}

func (f *ProjectForm) Validate() error {
	err := validation.ValidateProject(f.fields)
	f.errs = nil
	var verr *apierr.ValidationError
	if errors.As(err, &verr) {
		f.errs = verr
	}
	return err
}

// Submit validates and saves the form. A successful save makes the saved
// record the new baseline; a failed one keeps the local edits.
func (f *ProjectForm) Submit(ctx context.Context, saver ProjectSaver) (*model.Project, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := f.tracker.BeginSave(); err != nil {
		return nil, err
	}

	payload := validation.NormalizeProject(f.fields)

	var (
		saved *model.Project
		err   error
	)
	if f.tracker.Mode() == formstate.ModeCreate {
		saved, err = saver.CreateProject(ctx, payload)
	} else {
		saved, err = saver.UpdateProject(ctx, f.id, payload)
	}
	if err != nil {
		var verr *apierr.ValidationError
		if errors.As(err, &verr) {
			f.errs = verr
		}
		f.tracker.SaveFailed(err)
		return nil, err
	}

	owned := f.desc.Dirty()
	f.id = saved.ID
	f.fields = saved.ProjectFields
	f.baseline = saved.ProjectFields
	if !owned {
		f.desc.Reset(saved.Description)
	}
	f.tracker.SaveSucceeded(f.keyOf(f.fields))
	return saved, nil
}

// Reset restores the last saved (or initial) values and hands the
// description back to the generator: the saved text is kept until the next
// structural change regenerates it.
func (f *ProjectForm) Reset() {
	if f.tracker.State() == formstate.Saving {
		return
	}
	f.fields = f.baseline
	desc := f.baseline.Description
	if desc == "" {
		desc = describe.Generate(f.baseline)
	}
	f.desc.Reset(desc)
	f.fields.Description = f.desc.Value()
	f.errs = nil
	f.tracker.Reset()
	f.track()
}

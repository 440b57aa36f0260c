package handler

import (
	"errors"
	"net/http"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/forms"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/store"
)

type GoalHandler struct {
	store *store.Store
}

func NewGoalHandler(s *store.Store) *GoalHandler {
	return &GoalHandler{store: s}
}

type goalsResponse struct {
	Count    int              `json:"count"`
	Buckets  progress.Buckets `json:"buckets"`
	Critical []progress.View  `json:"critical"`
}

// List loads every goal and returns them bucketed for the dashboard.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadGoals(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	st := h.store.State()
	critical := store.SelectCriticalGoals(st)
	if critical == nil {
		critical = []progress.View{}
	}
	writeJSON(w, http.StatusOK, goalsResponse{
		Count:    len(st.Goals.Items),
		Buckets:  store.SelectGoalBuckets(st),
		Critical: critical,
	})
}

func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := h.store.RefreshGoal(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress.ViewOf(*g))
}

type createGoalRequest struct {
	model.GoalInput
	Steps []string `json:"steps"`
}

type createGoalResponse struct {
	progress.View
	Error string `json:"error,omitempty"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	form := forms.NewGoalForm()
	form.SetTitle(req.Title)
	form.SetTargetProjects(req.TargetProjects)
	if req.Deadline != "" {
		form.SetDeadline(req.Deadline)
	}
	form.SetInitialSteps(req.Steps)

	g, err := form.Submit(r.Context(), h.store)
	if g == nil {
		writeError(w, r, err)
		return
	}

	// The goal exists even when some initial steps failed.
	writeJSON(w, http.StatusCreated, createGoalResponse{View: progress.ViewOf(*g), Error: apierr.Message(err)})
}

// Update applies a partial update of title, target_projects and deadline.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var patch model.GoalPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	current, ok := store.SelectGoal(h.store.State(), id)
	if !ok {
		g, err := h.store.RefreshGoal(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		current = *g
	}

	form := forms.EditGoalForm(current)
	if patch.Title != nil {
		form.SetTitle(*patch.Title)
	}
	if patch.TargetProjects != nil {
		form.SetTargetProjects(*patch.TargetProjects)
	}
	if patch.Deadline != nil {
		form.SetDeadline(*patch.Deadline)
	}

	g, err := form.Submit(r.Context(), h.store)
	if errors.Is(err, formstate.ErrNotDirty) {
		writeJSON(w, http.StatusOK, progress.ViewOf(current))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress.ViewOf(*g))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.store.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

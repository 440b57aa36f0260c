package handler

import (
	"net/http"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/steps"
	"github.com/templui/folio/internal/store"
)

// StepHandler mutates a goal's checklist. Every route answers with the
// goal as it stands afterwards.
type StepHandler struct {
	store *store.Store
}

func NewStepHandler(s *store.Store) *StepHandler {
	return &StepHandler{store: s}
}

type stepTitleRequest struct {
	Title string `json:"title"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

func (h *StepHandler) ids(r *http.Request) (goalID, stepID int64, err error) {
	if goalID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if r.PathValue("step") == "" {
		return goalID, 0, nil
	}
	stepID, err = pathID(r, "step")
	return goalID, stepID, err
}

// respond writes the goal after a step action. The action error wins; the
// goal was refreshed either way.
func (h *StepHandler) respond(w http.ResponseWriter, r *http.Request, goalID int64, status int, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, ok := store.SelectGoal(h.store.State(), goalID)
	if !ok {
		writeError(w, r, apierr.NotFound("Goal not found."))
		return
	}
	writeJSON(w, status, progress.ViewOf(g))
}

func (h *StepHandler) Add(w http.ResponseWriter, r *http.Request) {
	goalID, _, err := h.ids(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stepTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.store.AddStep(r.Context(), goalID, req.Title)
	h.respond(w, r, goalID, http.StatusCreated, err)
}

func (h *StepHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	goalID, stepID, err := h.ids(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.store.ToggleStep(r.Context(), goalID, stepID)
	h.respond(w, r, goalID, http.StatusOK, err)
}

func (h *StepHandler) Rename(w http.ResponseWriter, r *http.Request) {
	goalID, stepID, err := h.ids(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stepTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.store.RenameStep(r.Context(), goalID, stepID, req.Title)
	h.respond(w, r, goalID, http.StatusOK, err)
}

// Move shifts a step one slot; direction is "up" or "down".
func (h *StepHandler) Move(w http.ResponseWriter, r *http.Request) {
	goalID, stepID, err := h.ids(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var direction int
	switch req.Direction {
	case "up":
		direction = steps.Up
	case "down":
		direction = steps.Down
	default:
		verr := &apierr.ValidationError{}
		verr.Add("direction", `Must be "up" or "down".`)
		writeError(w, r, verr)
		return
	}

	_, err = h.store.MoveStep(r.Context(), goalID, stepID, direction)
	h.respond(w, r, goalID, http.StatusOK, err)
}

func (h *StepHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goalID, stepID, err := h.ids(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.store.DeleteStep(r.Context(), goalID, stepID)
	h.respond(w, r, goalID, http.StatusOK, err)
}

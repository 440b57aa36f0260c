package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/folio/internal/describe"
	"github.com/templui/folio/internal/forms"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/store"
)

type ProjectHandler struct {
	store *store.Store
	md    *markdown.Parser
}

func NewProjectHandler(s *store.Store, md *markdown.Parser) *ProjectHandler {
	return &ProjectHandler{store: s, md: md}
}

type projectResponse struct {
	model.Project
	StatusLabel     string `json:"status_label"`
	DescriptionHTML string `json:"description_html"`
}

type projectsResponse struct {
	Count   int                                     `json:"count"`
	Results []model.Project                         `json:"results"`
	Groups  map[model.ProjectStatus][]model.Project `json:"by_status"`
	Query   map[string]string                       `json:"query"`
}

func (h *ProjectHandler) render(p model.Project) projectResponse {
	html, err := h.md.RenderString(p.Description)
	if err != nil {
		slog.Warn("failed to render description", "error", err, "project_id", p.ID)
	}
	return projectResponse{Project: p, StatusLabel: p.Status.Label(), DescriptionHTML: html}
}

// List supports ?search=, ?status=, ?goal=, ?ordering= and ?page=.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := model.ListParams{
		Page:     queryInt(r, "page"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Filters: map[string]string{
			"status": q.Get("status"),
			"goal":   q.Get("goal"),
		},
	}

	if err := h.store.LoadProjects(r.Context(), params); err != nil {
		writeError(w, r, err)
		return
	}

	st := h.store.State()
	query := map[string]string{}
	for k, v := range params.Values() {
		query[k] = v[0]
	}
	writeJSON(w, http.StatusOK, projectsResponse{
		Count:   st.Projects.Count,
		Results: st.Projects.Items,
		Groups:  store.SelectProjectsByStatus(st),
		Query:   query,
	})
}

func (h *ProjectHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.render(*p))
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.ProjectFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	form := forms.NewProjectForm()
	form.Apply(fields)

	p, err := form.Submit(r.Context(), h.store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.render(*p))
}

// Update replaces the editable fields. An empty description in the body
// lets the server regenerate it from the other fields.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var fields model.ProjectFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	current, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	form := forms.EditProjectForm(*current)
	form.Apply(fields)
	if fields.Description == "" {
		form.RegenerateDescription()
	}

	p, err := form.Submit(r.Context(), h.store)
	if errors.Is(err, formstate.ErrNotDirty) {
		writeJSON(w, http.StatusOK, h.render(*current))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.render(*p))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type describeResponse struct {
	Description string `json:"description"`
	HTML        string `json:"html"`
}

// Describe previews the generated description for unsaved fields.
func (h *ProjectHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var fields model.ProjectFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	text := describe.Generate(fields)
	html, err := h.md.RenderString(text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describeResponse{Description: text, HTML: html})
}

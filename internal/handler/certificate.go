package handler

import (
	"net/http"

	"github.com/templui/folio/internal/store"
)

type CertificateHandler struct {
	store *store.Store
}

func NewCertificateHandler(s *store.Store) *CertificateHandler {
	return &CertificateHandler{store: s}
}

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadCertificates(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   st.Certificates.Count,
		"results": st.Certificates.Items,
	})
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/session"
	"github.com/templui/folio/internal/store"
)

// Authenticator signs the app in and out of the REST backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout()
}

type SessionHandler struct {
	auth  Authenticator
	store *store.Store
}

func NewSessionHandler(auth Authenticator, s *store.Store) *SessionHandler {
	return &SessionHandler{auth: auth, store: s}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          model.User `json:"user"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func sessionBody(st store.State) sessionResponse {
	resp := sessionResponse{Authenticated: store.SelectAuthenticated(st, time.Now())}
	if st.Session != nil {
		resp.User = st.Session.User
		if !st.Session.ExpiresAt.IsZero() {
			exp := st.Session.ExpiresAt
			resp.ExpiresAt = &exp
		}
	}
	return resp
}

func (h *SessionHandler) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionBody(h.store.State()))
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	verr := &apierr.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "This field may not be blank.")
	}
	if req.Password == "" {
		verr.Add("password", "This field may not be blank.")
	}
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionBody(h.store.State()))
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

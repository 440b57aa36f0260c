package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
)

func Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		body["backend"] = cfg.Backend
		body["env"] = cfg.AppEnv
	}
	writeJSON(w, http.StatusOK, body)
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/steps"
)

const maxRequestBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps an error onto the same body shapes the REST backend
// uses, so clients of this API only need one decoder.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *apierr.ValidationError
		aerr *apierr.Error
		nerr *apierr.NetworkError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, steps.ErrEmptyTitle):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field may not be blank."}})
	case errors.Is(err, steps.ErrStepNotFound):
		writeDetail(w, http.StatusNotFound, "Step not found.")
	case errors.As(err, &aerr):
		status := aerr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		writeDetail(w, status, apierr.Message(err))
	case errors.As(err, &nerr):
		slog.Error("backend unreachable", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
		writeDetail(w, http.StatusBadGateway, apierr.Message(err))
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return &apierr.Error{Status: http.StatusBadRequest, Detail: fmt.Sprintf("JSON parse error - %v", err)}
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.NotFound("Not found.")
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

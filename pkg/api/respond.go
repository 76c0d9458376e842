package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the status of the error kind and its client
// facing message. Untagged errors are logged since their text is hidden.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "msg", err.Error())
	}
	writeJSON(w, status, errorBody{Message: apperr.MessageOf(err)})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// parsePage reads the optional "before" (RFC 3339), "beforeId" and "limit"
// query parameters of a feed request.
func parsePage(r *http.Request) (model.Page, error) {
	var page model.Page
	q := r.URL.Query()
	if before := q.Get("before"); before != "" {
		t, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			return model.Page{}, apperr.Validation("Invalid before cursor")
		}
		page.Before = t
		page.BeforeID = q.Get("beforeId")
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return model.Page{}, apperr.Validation("Invalid limit")
		}
		page.Limit = n
	}
	return page, nil
}

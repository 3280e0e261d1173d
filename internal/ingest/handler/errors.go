package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"ingest-service/internal/store"
)

// ErrResponse is the JSON body of every non-2xx answer.
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	ErrorCode      string `json:"error_code"`
	Message        string `json:"message"`
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	_ = render.Render(w, r, &ErrResponse{HTTPStatusCode: status, ErrorCode: code, Message: msg})
}

func storeFail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fail(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrClosed):
		fail(w, r, http.StatusServiceUnavailable, "store_closed", err.Error())
	default:
		fail(w, r, http.StatusInternalServerError, "store_error", err.Error())
	}
}

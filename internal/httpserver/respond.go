package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"infusionconsole/internal/apiclient"
	"infusionconsole/internal/auth"
	"infusionconsole/internal/console"
)

const maxBodyBytes = 1 << 20

// Response mirrors the transport client's Result: either ok with data, or
// an error message with the upstream HTTP status when there was one.
type Response struct {
	OK     bool   `json:"ok"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
}

type apiHandler func(r *http.Request) (any, error)

var errBadBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wrap(logger *slog.Logger, h apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h(r)
		if err != nil {
			code, resp := classify(err)
			if code >= http.StatusInternalServerError && code != http.StatusBadGateway {
				logger.Error("console handler", "path", r.URL.Path, "err", err)
			}
			writeJSON(w, code, resp)
			return
		}
		writeJSON(w, http.StatusOK, Response{OK: true, Data: data})
	}
}

func classify(err error) (int, Response) {
	resp := Response{OK: false, Error: err.Error()}

	var reqErr *console.RequestError
	switch {
	case errors.As(err, &reqErr) && reqErr.Kind == apiclient.KindAuth:
		return http.StatusBadRequest, resp
	case errors.As(err, &reqErr):
		resp.Status = reqErr.Status
		return http.StatusBadGateway, resp
	case errors.Is(err, console.ErrBusy):
		return http.StatusConflict, resp
	case errors.Is(err, console.ErrInvalidJSONField),
		errors.Is(err, console.ErrInvalidNumber),
		errors.Is(err, auth.ErrEmptySecret),
		errors.Is(err, auth.ErrInvalidTTL),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

// decodeBody fills dst from the JSON body. An empty body leaves dst as is,
// so callers can prefill it with defaults.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

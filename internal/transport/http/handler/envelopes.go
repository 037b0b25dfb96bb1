package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/pkg/logx"
	"github.com/go-referral-api/internal/pkg/validate"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthEnvelope wraps every response that hands out a token.
type AuthEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Token   string              `json:"token"`
	User    *domain.UserSummary `json:"user"`
}

// DataEnvelope carries a single payload under "data".
type DataEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// PageEnvelope carries a cursor-paginated list.
type PageEnvelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

func success(v interface{}) DataEnvelope { return DataEnvelope{Success: true, Data: v} }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

// httpError maps a service error onto its HTTP status. Unknown errors are
// logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, publicMessage(err, m.sentinel))
			return
		}
	}
	if errors.Is(err, domain.ErrGateway) {
		logx.FromContext(r.Context()).Warn("payment gateway", "err", err)
		writeError(w, http.StatusBadGateway, "payment provider unavailable, try again later")
		return
	}
	logx.FromContext(r.Context()).Error("unhandled error", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrConflict, http.StatusConflict},
}

// publicMessage drops the trailing ": <sentinel>" that services append.
func publicMessage(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

// decode reads a JSON body into dst and runs its validate tags. Any failure
// is returned wrapped in domain.ErrBadRequest.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}

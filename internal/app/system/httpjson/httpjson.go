// internal/app/system/httpjson/httpjson.go

// Package httpjson writes the JSON envelope the SPA consumes and maps
// application errors to HTTP responses in one place.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Envelope is the response body for every JSON endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Write encodes payload with the given status code.
func Write(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, code int, message string, data any) {
	Write(w, code, Envelope{Status: "success", Message: message, Data: data})
}

// Fail writes an error envelope with an explicit status code.
func Fail(w http.ResponseWriter, code int, message string) {
	Write(w, code, Envelope{Status: "error", Message: message})
}

// Error maps err through the apperr taxonomy. Unclassified errors are
// logged with their cause and surface as a generic 500 body.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	if ae, ok := apperr.As(err); ok {
		if ae.Kind == apperr.KindUpstream && log != nil {
			log.Error("upstream failure", zap.Error(err))
		}
		Fail(w, apperr.Status(err), ae.Message)
		return
	}
	if log != nil {
		log.Error("unhandled error", zap.Error(err))
	}
	Fail(w, http.StatusInternalServerError, "something went wrong")
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Package api provides host-mountable HTTP handlers for the upload service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/sigv4"
)

// amzDateFormat is the timestamp format browsers send alongside a
// string-to-sign (X-Amz-Date style).
const amzDateFormat = "20060102T150405Z"

// UploadHandler handles browser upload API endpoints
type UploadHandler struct {
	service simpleupload.Service
	auth    *jwtauth.JWTAuth
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service simpleupload.Service) *UploadHandler {
	return &UploadHandler{service: service}
}

// NewUploadHandlerWithAuth creates an upload handler whose routes only accept
// requests carrying a bearer token verified by the given authority
func NewUploadHandlerWithAuth(service simpleupload.Service, auth *jwtauth.JWTAuth) *UploadHandler {
	return &UploadHandler{service: service, auth: auth}
}

// Routes returns the router for upload endpoints
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.auth != nil {
		r.Use(jwtauth.Verifier(h.auth))
		r.Use(jwtauth.Authenticator)
	}
	r.Post("/upload-params", h.GetUploadParams)
	r.Post("/signature", h.SignV4)
	r.Get("/destinations", h.ListDestinations)
	return r
}

// UploadParamsRequest represents the request for browser upload parameters
type UploadParamsRequest struct {
	Destination string `json:"destination"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	Mode        string `json:"mode,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"` // seconds
}

// SignatureRequest represents the request to sign a caller-supplied string
type SignatureRequest struct {
	Destination string `json:"destination,omitempty"`
	ToSign      string `json:"to_sign"`
	Datetime    string `json:"datetime,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// SignatureResponse carries the computed hex signature
type SignatureResponse struct {
	Signature string `json:"signature"`
}

// GetUploadParams returns everything a browser needs for a direct upload:
// the derived object key and a presigned PUT URL for it
func (h *UploadHandler) GetUploadParams(w http.ResponseWriter, r *http.Request) {
	var req UploadParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Fail to decode request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Destination == "" {
		http.Error(w, "Destination is required", http.StatusBadRequest)
		return
	}
	if req.FileName == "" {
		http.Error(w, "File name is required", http.StatusBadRequest)
		return
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dest, err := h.service.Destination(r.Context(), req.Destination)
	if err != nil {
		logServiceError("Upload destination lookup failed", req.Destination, err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	if dest.Allow != nil && !dest.Allow(r) {
		slog.Warn("Upload not allowed", "destination", req.Destination)
		http.Error(w, "Upload not allowed", http.StatusForbidden)
		return
	}

	params, err := h.service.GetUploadParams(r.Context(), simpleupload.UploadParamsRequest{
		DestinationID: req.Destination,
		FileName:      req.FileName,
		ContentType:   req.ContentType,
		Mode:          mode,
		ExpiresIn:     time.Duration(req.ExpiresIn) * time.Second,
	})
	if err != nil {
		logServiceError("Failed to build upload params", req.Destination, err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, params)
}

// SignV4 signs a caller-supplied string with the resolved secret key
func (h *UploadHandler) SignV4(w http.ResponseWriter, r *http.Request) {
	var req SignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Fail to decode request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ToSign == "" {
		http.Error(w, "to_sign is required", http.StatusBadRequest)
		return
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := parseSigningDate(req.Datetime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	signature, err := h.service.SignV4(r.Context(), simpleupload.SignV4Request{
		DestinationID: req.Destination,
		StringToSign:  req.ToSign,
		SigningDate:   date,
		Mode:          mode,
	})
	if err != nil {
		logServiceError("Failed to sign request", req.Destination, err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, SignatureResponse{Signature: signature})
}

// ListDestinations returns the configured destination IDs in sorted order
func (h *UploadHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Destinations(r.Context())
	if err != nil {
		slog.Error("Failed to list destinations", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, ids)
}

// parseMode maps the wire form of a deployment mode onto its enum value.
// An empty string selects the provider-native mode.
func parseMode(s string) (simpleupload.DeploymentMode, error) {
	switch s {
	case "", simpleupload.ModeProviderNative.String():
		return simpleupload.ModeProviderNative, nil
	case simpleupload.ModeForeign.String():
		return simpleupload.ModeForeign, nil
	default:
		return simpleupload.ModeProviderNative, fmt.Errorf("unknown deployment mode %q", s)
	}
}

// parseSigningDate accepts the X-Amz-Date timestamp form or a bare signing
// date. An empty string leaves the choice of date to the service.
func parseSigningDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{amzDateFormat, sigv4.DateFormat} {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", raw)
}

// logServiceError logs a failed service call. Provider faults carry the
// provider's own error code as a separate attribute when one is present.
func logServiceError(msg, destination string, err error) {
	attrs := []any{"destination", destination, "error", err}
	var provErr *simpleupload.ProviderError
	if errors.As(err, &provErr) {
		if code := provErr.APIErrorCode(); code != "" {
			attrs = append(attrs, "code", code)
		}
	}
	slog.Error(msg, attrs...)
}

// statusForError maps service errors onto HTTP status codes: configuration
// misses are the caller's fault, credential misses deny the operation, and
// provider faults surface as a bad gateway.
func statusForError(err error) int {
	var confErr *simpleupload.ConfigurationError
	var credErr *simpleupload.CredentialError
	var provErr *simpleupload.ProviderError

	switch {
	case errors.As(err, &confErr):
		return http.StatusBadRequest
	case errors.As(err, &credErr):
		return http.StatusForbidden
	case errors.As(err, &provErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

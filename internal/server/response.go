package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/mail"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/service"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeErrorCode(w http.ResponseWriter, status int, code string, details any) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		status, code = http.StatusNotFound, "document_not_found"
	case errors.Is(err, service.ErrTemplateNotFound):
		status, code = http.StatusNotFound, "template_not_found"
	case errors.Is(err, service.ErrTemplateInUse):
		status, code = http.StatusConflict, "template_in_use"
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, calc.ErrInvalidField):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, calc.ErrOutOfRange):
		status, code = http.StatusBadRequest, "out_of_range"
	case errors.Is(err, render.ErrRenderTimeout):
		status, code = http.StatusGatewayTimeout, "render_timeout"
	case errors.Is(err, render.ErrRenderFailure):
		status, code = http.StatusBadGateway, "render_failure"
	case errors.Is(err, mail.ErrDelivery):
		status, code = http.StatusBadGateway, "delivery_failure"
	case errors.Is(err, storage.ErrUpload):
		status, code = http.StatusBadGateway, "upload_failure"
	}

	if status == http.StatusInternalServerError {
		logrus.Errorf("request failed: %v", err)
		writeErrorCode(w, status, code, nil)
		return
	}

	details := err.Error()
	if status == http.StatusGatewayTimeout || status == http.StatusBadGateway {
		details += ", retry later"
	}
	writeErrorCode(w, status, code, details)
}

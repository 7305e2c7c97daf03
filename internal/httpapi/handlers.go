package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/catalog-assistant/server/internal/agent/graph"
	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Handler serves assistant requests through the pipeline runner.
type Handler struct {
	runner   graph.Runner
	validate *validator.Validate
}

func NewHandler(runner graph.Runner) *Handler {
	return &Handler{runner: runner, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req model.AssistantRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errx.BadRequest("invalid JSON body"))
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, errx.BadRequest(validationMessage(err)))
		return
	}

	resp, err := h.runner.Handle(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" failed "+fe.Tag())
	}
	return "invalid request: " + strings.Join(fields, "; ")
}

func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	body := errorResponse{Error: http.StatusText(status)}

	var appErr *errx.Error
	if errors.As(err, &appErr) {
		body.Detail = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("failed to write response")
	}
}

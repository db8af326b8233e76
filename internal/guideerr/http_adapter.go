package guideerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter converts GuideErrors to HTTP responses with appropriate
// status codes and structured JSON bodies.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates an adapter that logs written error responses.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the JSON body written for error responses.
type HTTPErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code"`
	Details   ContextFields `json:"details,omitempty"`
	Retryable bool          `json:"retryable"`
}

// StatusCodeFor maps an error to an HTTP status code based on its category.
// Unknown errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var ge *GuideError
	if !errors.As(err, &ge) {
		return http.StatusInternalServerError
	}

	switch ge.Category {
	case CategoryValidation, CategoryConfig:
		return http.StatusBadRequest
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryNetwork, CategoryGit:
		return http.StatusBadGateway
	case CategoryContent, CategoryNav, CategoryBuild, CategoryRender:
		return http.StatusUnprocessableEntity
	case CategoryRuntime, CategoryDaemon:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes err as a JSON error response and logs it at a
// level derived from the error's severity.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	resp := a.FormatErrorResponse(err)

	body, jerr := json.Marshal(resp)
	if jerr != nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{\"error\":\"internal error\"}"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	var ge *GuideError
	if errors.As(err, &ge) {
		a.logger.Log(r.Context(), slogLevelFromSeverity(ge.Severity), "http error response",
			slog.Int("status", status),
			slog.String("code", resp.Code),
			slog.String("error", resp.Error),
		)
		return
	}
	a.logger.ErrorContext(r.Context(), "http error response",
		slog.Int("status", status),
		slog.String("error", resp.Error),
	)
}

// FormatErrorResponse builds the JSON payload for an error without writing it.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{Error: ""}
	}
	var ge *GuideError
	if errors.As(err, &ge) {
		return HTTPErrorResponse{
			Error:     ge.Message,
			Code:      string(ge.Category),
			Details:   ge.Context,
			Retryable: ge.Retryable,
		}
	}
	return HTTPErrorResponse{
		Error:     fmt.Sprintf("%v", err),
		Code:      string(CategoryInternal),
		Retryable: false,
	}
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityFatal, SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityInfo:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

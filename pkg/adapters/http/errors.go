package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/input"
)

// Error codes of the JSON error envelope.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthentication     = "AUTHENTICATION_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

const (
	msgSessionNotFound = "세션을 찾을 수 없습니다"
	msgSessionDeleted  = "세션이 삭제되었습니다."
	msgSessionRequired = "세션 ID가 필요합니다"
	msgBadBody         = "잘못된 요청 형식입니다"
	msgAuthRequired    = "인증이 필요합니다"
	msgInvalidToken    = "유효하지 않거나 만료된 토큰입니다"
	msgInvalidRefresh  = "유효하지 않거나 만료된 리프레시 토큰입니다"
	msgRefreshRequired = "리프레시 토큰이 필요합니다"
	msgInvalidLogin    = "이메일 또는 비밀번호가 올바르지 않습니다"
	msgEmailRequired   = "이메일을 입력해주세요"
	msgPasswordNeeded  = "비밀번호를 입력해주세요"
	msgUserNotFound    = "사용자를 찾을 수 없습니다"
	msgPolicyNotFound  = "정책을 찾을 수 없습니다"
	msgInputRejected   = "입력 내용을 처리할 수 없습니다"
	msgUnavailable     = "서비스를 일시적으로 이용할 수 없습니다"
	msgRateLimited     = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
	msgInternal        = "서버 내부 오류가 발생했습니다"
	msgLoggedOut       = "로그아웃 되었습니다"
	msgOnboardingDone  = "온보딩이 완료되었습니다."
)

// apiError is an error with its HTTP status and envelope fields.
type apiError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *apiError) Error() string {
	return e.Code + ": " + e.Message
}

func newAPIError(status int, code, message string, details map[string]any) *apiError {
	return &apiError{Status: status, Code: code, Message: message, Details: details}
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Path    string         `json:"path"`
}

// classify maps domain errors to their envelope.
func classify(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		var details map[string]any
		if verr.Field != "" {
			details = map[string]any{"field": verr.Field}
		}
		return newAPIError(http.StatusBadRequest, CodeValidation, verr.Message, details)
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return newAPIError(http.StatusNotFound, CodeNotFound, msgSessionNotFound, nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return newAPIError(http.StatusNotFound, CodeNotFound, msgUserNotFound, nil)
	case errors.Is(err, domain.ErrPolicyNotFound):
		return newAPIError(http.StatusNotFound, CodeNotFound, msgPolicyNotFound, nil)
	case errors.Is(err, domain.ErrInvalidToken):
		return newAPIError(http.StatusUnauthorized, CodeAuthentication, msgInvalidToken, nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return newAPIError(http.StatusUnauthorized, CodeAuthentication, msgInvalidLogin, nil)
	case errors.Is(err, domain.ErrUnavailable):
		return newAPIError(http.StatusServiceUnavailable, CodeServiceUnavailable, msgUnavailable, nil)
	case errors.Is(err, input.ErrTooLarge), errors.Is(err, input.ErrInvalidUTF8):
		return newAPIError(http.StatusBadRequest, CodeValidation, msgInputRejected, map[string]any{"field": "message"})
	}
	return newAPIError(http.StatusInternalServerError, CodeInternal, msgInternal, nil)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", e.Code, "err", err)
	}
	JSON(w, e.Status, errorBody{Error: errorPayload{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Path:    r.URL.Path,
	}})
}

package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - KindInvalidArgument -> 400;
//   - KindUnauthenticated, KindAuthExpired -> 401/unauthenticated;
//   - KindRefreshInvalid -> 401/session_expired (UI уходит на страницу входа);
//   - KindTransientNetwork -> 504 при таймауте, иначе 502;
//   - отмена контекста клиентом -> 499;
//   - прочее -> 500/internal.
//
// KindApplication сюда не попадает: WriteError отдаёт его тело как есть.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := http.StatusInternalServerError, "internal", "internal error"

	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled):
		status, code, msg = StatusClientClosedRequest, "canceled", "canceled"
	default:
		switch KindOf(err) {
		case KindInvalidArgument:
			status, code, msg = http.StatusBadRequest, "invalid_argument", "invalid argument"
			var e *Error
			if stderrors.As(err, &e) && e.Err != nil {
				msg = e.Err.Error()
			}
		case KindUnauthenticated, KindAuthExpired:
			status, code, msg = http.StatusUnauthorized, "unauthenticated", "unauthenticated"
		case KindRefreshInvalid:
			status, code, msg = http.StatusUnauthorized, "session_expired", "session expired, please log in again"
		case KindTransientNetwork:
			status, code, msg = http.StatusBadGateway, "upstream_unavailable", "upstream unavailable"
			if stderrors.Is(err, context.DeadlineExceeded) {
				status, code, msg = http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
			}
		case KindApplication:
			var e *Error
			if stderrors.As(err, &e) && e.Status != 0 {
				status, code, msg = e.Status, "upstream_error", e.Message()
			}
		}
	}

	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError — хелпер для HTTP-хендлеров.
// Ошибки приложения (KindApplication) и отказ в аутентификации с телом
// (KindUnauthenticated, например неверный пароль при входе) пробрасываются
// фронту без изменений: статус и тело апстрима, чтобы UI показал detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if stderrors.As(err, &e) && passthrough(e) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.Status)
		_, _ = w.Write(e.Detail)
		return
	}

	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func passthrough(e *Error) bool {
	if e.Status == 0 || len(e.Detail) == 0 {
		return false
	}

	return e.Kind == KindApplication || e.Kind == KindUnauthenticated
}

// errors задаёт таксономию ошибок обращения к backend'у и стандартизирует
// ответы об ошибках HTTP-слоя шлюза.
//
// Вместо разбора «формы» тела ошибки в рантайме вызывающий код получает
// *Error с меткой Kind и сопоставляет по ней:
//   - KindUnauthenticated — токена нет, сервер отказал в доступе;
//   - KindAuthExpired — 401 на запрос с токеном (в том числе после повтора);
//   - KindRefreshInvalid — обновление токенов не удалось, сессия завершена;
//   - KindTransientNetwork — сбой соединения/таймаут;
//   - KindApplication — любой не-401 4xx/5xx, тело отдаётся как есть;
//   - KindInvalidArgument — локальная валидация формы до отправки;
//   - KindInternal — всё остальное.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Kind — метка ошибки.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindAuthExpired
	KindRefreshInvalid
	KindTransientNetwork
	KindApplication
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthExpired:
		return "auth_expired"
	case KindRefreshInvalid:
		return "refresh_invalid"
	case KindTransientNetwork:
		return "transient_network"
	case KindApplication:
		return "application"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// maxDetailBytes — сколько тела ошибки читаем с backend'а.
const maxDetailBytes = 1 << 20

// Error — результат Err(kind, detail).
// Status — HTTP-статус апстрима (0, если ответа не было).
// Detail — тело ответа апстрима без изменений (обычно JSON).
type Error struct {
	Kind   Kind
	Status int
	Detail json.RawMessage
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())

	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}

	if msg := e.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message вытаскивает человекочитаемое сообщение из Detail.
// Backend отдаёт то {"detail": "..."}, то {"message": "..."}, то
// {"field": ["..."]}; возвращаем первое, что нашлось.
func (e *Error) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Detail, &obj); err != nil {
		var s string
		if json.Unmarshal(e.Detail, &s) == nil {
			return s
		}

		return ""
	}

	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		if msg := firstString(obj[key]); msg != "" {
			return msg
		}
	}

	return ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}

	return ""
}

// New собирает *Error.
func New(kind Kind, status int, detail json.RawMessage, err error) *Error {
	return &Error{Kind: kind, Status: status, Detail: detail, Err: err}
}

// Invalid — ошибка локальной валидации.
func Invalid(err error) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusBadRequest, Err: err}
}

// FromResponse превращает не-2xx ответ в *Error, вычитывая и закрывая тело.
// 401 на запрос с Authorization — KindAuthExpired, без него — KindUnauthenticated.
func FromResponse(resp *http.Response) *Error {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	detail := json.RawMessage(body)
	if len(body) == 0 || !json.Valid(body) {
		detail = nil
		if len(body) > 0 {
			detail, _ = json.Marshal(string(body))
		}
	}

	kind := KindApplication
	if resp.StatusCode == http.StatusUnauthorized {
		kind = KindUnauthenticated
		if resp.Request != nil && resp.Request.Header.Get("Authorization") != "" {
			kind = KindAuthExpired
		}
	}

	return &Error{Kind: kind, Status: resp.StatusCode, Detail: detail}
}

// FromTransport классифицирует ошибку http.Client.Do.
// Ошибка, уже являющаяся *Error (её вернул транспорт сессии), отдаётся как есть.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	if IsNetwork(err) {
		return &Error{Kind: KindTransientNetwork, Err: err}
	}

	return &Error{Kind: KindInternal, Err: err}
}

// IsNetwork — ошибка уровня соединения: DNS, отказ в подключении, таймаут.
// Отмену контекста вызывающей стороной сетевой ошибкой не считаем.
func IsNetwork(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}

	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}

// KindOf возвращает Kind ошибки (KindInternal для «чужих» ошибок).
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Is сверяет Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == kind
}

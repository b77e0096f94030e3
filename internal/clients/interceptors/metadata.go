package interceptors

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type CtxKey string

const CtxRequestID CtxKey = "request_id"

// RequestIDFrom — request id из контекста (кладёт BFF-мидлвар RequestID).
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(CtxRequestID).(string)
	return rid
}

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста или новый UUID, если в запросе его нет);
//   - User-Agent (если передан параметром).
//
// Исходный запрос вызывающего не изменяется.
func WithMetadata(userAgent string) Decorator {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			out := req.Clone(req.Context())

			if out.Header.Get("X-Request-Id") == "" {
				rid := RequestIDFrom(req.Context())
				if rid == "" {
					rid = uuid.NewString()
				}
				out.Header.Set("X-Request-Id", rid)
			}
			if userAgent != "" {
				out.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(out)
		})
	}
}

package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/Mutombe/silver-carbon/internal/pkg/log"
)

// Logging — одна запись уровня Info на попытку: msg="http_client", method,
// path, status, dur. Логгер берётся из контекста запроса; если его нет —
// base с request_id из заголовка. Обогащённый логгер кладётся обратно в контекст.
//
// Безопасность: не логирует тела и заголовок Authorization.
func Logging(base *slog.Logger) Decorator {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			l, ok := logctx.Lookup(req.Context())
			if !ok {
				l = base.With(slog.String("request_id", req.Header.Get("X-Request-Id")))
			}
			l = l.With(
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)
			req = req.WithContext(logctx.Into(req.Context(), l))

			resp, err := next.RoundTrip(req)

			if err != nil {
				l.Warn("http_client",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("http_client",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}

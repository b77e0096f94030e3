package interceptors

import (
	"net/http"
	"time"

	"github.com/Mutombe/silver-carbon/internal/metrics"
)

// Metrics учитывает каждую попытку: счётчик по method/code и гистограмму длительности.
// Транспортная ошибка учитывается с code="error".
func Metrics(m *metrics.Metrics) Decorator {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			status := 0
			if err == nil {
				status = resp.StatusCode
			}
			m.Upstream(req.Method, status, time.Since(start))

			return resp, err
		})
	}
}

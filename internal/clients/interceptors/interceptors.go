// interceptors — декораторы http.RoundTripper для исходящих запросов к backend'у.
package interceptors

import "net/http"

// RoundTripperFunc — функция как http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Decorator оборачивает транспорт.
type Decorator func(http.RoundTripper) http.RoundTripper

// Chain применяет декораторы в порядке перечисления: первый — самый внешний.
func Chain(rt http.RoundTripper, ds ...Decorator) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(ds) - 1; i >= 0; i-- {
		rt = ds[i](rt)
	}

	return rt
}

package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func response(status int, body string, authorized bool) *http.Response {
	req := httptest.NewRequest(http.MethodGet, "http://backend/api/devices/", nil)
	if authorized {
		req.Header.Set("Authorization", "Bearer A1")
	}

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_argument", Invalid(fmt.Errorf("capacity must be positive")), http.StatusBadRequest, "invalid_argument"},
		{"unauthenticated", New(KindUnauthenticated, 401, nil, nil), http.StatusUnauthorized, "unauthenticated"},
		{"auth_expired", New(KindAuthExpired, 401, nil, nil), http.StatusUnauthorized, "unauthenticated"},
		{"refresh_invalid", New(KindRefreshInvalid, 400, nil, nil), http.StatusUnauthorized, "session_expired"},
		{"network", New(KindTransientNetwork, 0, nil, &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}), http.StatusBadGateway, "upstream_unavailable"},
		{"deadline", New(KindTransientNetwork, 0, nil, context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"canceled", fmt.Errorf("op: %w", context.Canceled), StatusClientClosedRequest, "canceled"},
		{"foreign", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestFromResponse_Classifies401ByAuthorizationHeader(t *testing.T) {
	e := FromResponse(response(http.StatusUnauthorized, `{"detail":"token expired"}`, true))
	require.Equal(t, KindAuthExpired, e.Kind)
	require.Equal(t, "token expired", e.Message())

	e = FromResponse(response(http.StatusUnauthorized, `{"detail":"no creds"}`, false))
	require.Equal(t, KindUnauthenticated, e.Kind)
}

// Тело ошибки приложения сохраняется без изменений.
func TestFromResponse_ApplicationErrorKeepsBodyVerbatim(t *testing.T) {
	body := `{"device_name":["This field is required."]}`
	e := FromResponse(response(http.StatusBadRequest, body, true))

	require.Equal(t, KindApplication, e.Kind)
	require.Equal(t, http.StatusBadRequest, e.Status)
	require.JSONEq(t, body, string(e.Detail))
}

func TestFromResponse_NonJSONBodyBecomesJSONString(t *testing.T) {
	e := FromResponse(response(http.StatusBadGateway, "<html>bad gateway</html>", true))

	var s string
	require.NoError(t, json.Unmarshal(e.Detail, &s))
	require.Equal(t, "<html>bad gateway</html>", s)
	require.Equal(t, "<html>bad gateway</html>", e.Message())
}

func TestMessage_Shapes(t *testing.T) {
	tcs := map[string]string{
		`{"detail":"d"}`:               "d",
		`{"message":"m"}`:              "m",
		`{"non_field_errors":["nf"]}`:  "nf",
		`"plain"`:                      "plain",
		`{"device_name":["required"]}`: "",
		`[1,2,3]`:                      "",
	}

	for in, want := range tcs {
		e := &Error{Kind: KindApplication, Detail: json.RawMessage(in)}
		require.Equal(t, want, e.Message(), in)
	}
}

func TestFromTransport(t *testing.T) {
	require.NoError(t, FromTransport(nil))

	own := New(KindRefreshInvalid, 400, nil, nil)
	require.Same(t, own, FromTransport(fmt.Errorf("Get: %w", own)))

	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}
	require.Equal(t, KindTransientNetwork, KindOf(FromTransport(netErr)))

	require.Equal(t, KindInternal, KindOf(FromTransport(context.Canceled)))
}

func TestIsAndKindOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(KindAuthExpired, 401, nil, nil))

	require.True(t, Is(err, KindAuthExpired))
	require.False(t, Is(err, KindApplication))
	require.Equal(t, KindAuthExpired, KindOf(err))
	require.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
}

func TestWriteError_PassesApplicationErrorThrough(t *testing.T) {
	body := `{"capacity":["Ensure this value is greater than 0."]}`
	err := FromResponse(response(http.StatusBadRequest, body, true))

	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodPost, "/devices", nil), err)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, body, rr.Body.String())
}

func TestWriteError_EnvelopeWithRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/devices", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	rr := httptest.NewRecorder()
	WriteError(rr, req, New(KindRefreshInvalid, 400, nil, nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "session_expired", resp.Error.Code)
	require.Equal(t, "rid-1", resp.Error.RequestID)
}

// Отказ при входе: detail апстрима доходит до UI; без тела — конверт.
func TestWriteError_UnauthenticatedKeepsUpstreamDetail(t *testing.T) {
	body := `{"detail":"No active account found with the given credentials"}`
	err := FromResponse(response(http.StatusUnauthorized, body, false))
	require.Equal(t, KindUnauthenticated, err.Kind)

	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil), err)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, body, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil), New(KindUnauthenticated, 401, nil, nil))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "unauthenticated", resp.Error.Code)
}

package authclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Mutombe/silver-carbon/internal/models"
	"github.com/Mutombe/silver-carbon/internal/tokenstore"
)

// Фейковый backend: один действующий access-токен, refresh с ротацией.
// Токен, не совпадающий с действующим, получает 401.

var testSecret = []byte("unit-test-secret")

func mint(t *testing.T, userID int64, role string, ttl time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	return signed
}

type seenRequest struct {
	auth        string
	contentType string
	body        string
}

type backend struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	access  string // действующий access
	refresh string // действующий refresh
	seen    []seenRequest

	// refreshStatus != 0 — refresh-эндпойнт отвечает этим статусом.
	refreshStatus int
	// refreshDelay — задержка обработки refresh.
	refreshDelay time.Duration
	// alwaysUnauthorized — защищённые эндпойнты всегда отвечают 401.
	alwaysUnauthorized bool
	// omitRefresh — ответ refresh без нового refresh-токена.
	omitRefresh bool

	refreshCalls atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", b.handleRefresh)
	mux.HandleFunc("/api/", b.handleProtected)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)

	return b
}

func (b *backend) baseURL() string { return b.srv.URL + "/api" }

// issue выдаёт новую действующую пару; прежний access перестаёт работать.
func (b *backend) issue() models.TokenPair {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.access = mint(b.t, 7, "ADMIN", time.Minute)
	b.refresh = uuid.NewString()

	return models.TokenPair{Access: b.access, Refresh: b.refresh}
}

// expire делает текущий access недействительным, refresh остаётся.
func (b *backend) expire() {
	b.mu.Lock()
	b.access = "expired:" + b.access
	b.mu.Unlock()
}

func (b *backend) requests() []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]seenRequest(nil), b.seen...)
}

func (b *backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	time.Sleep(b.refreshDelay)

	if b.refreshStatus != 0 {
		writeJSON(w, b.refreshStatus, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	var in models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad body"})
		return
	}

	b.mu.Lock()
	if in.Refresh != b.refresh {
		b.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted", "code": "token_not_valid"})
		return
	}
	b.access = mint(b.t, 7, "ADMIN", time.Minute)
	b.refresh = uuid.NewString()
	out := models.RefreshResponse{Access: b.access, Refresh: b.refresh}
	b.mu.Unlock()

	if b.omitRefresh {
		out.Refresh = ""
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) handleProtected(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.seen = append(b.seen, seenRequest{
		auth:        r.Header.Get("Authorization"),
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	ok := !b.alwaysUnauthorized && r.Header.Get("Authorization") == "Bearer "+b.access
	b.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/broken/"):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	case strings.HasSuffix(r.URL.Path, "/missing/"):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	case !ok:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"echo": string(body)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestClient — клиент поверх фейкового backend'а и хранилища в памяти.
func newTestClient(t *testing.T, b *backend, opts Options) (*Client, *tokenstore.Memory) {
	t.Helper()

	store := tokenstore.NewMemory()
	if opts.Store == nil {
		opts.Store = store
	}
	if opts.Refresher == nil {
		opts.Refresher = NewHTTPRefresher(b.srv.Client(), b.baseURL())
	}
	if opts.Base == nil {
		opts.Base = b.srv.Client().Transport
	}
	if opts.RefreshTimeout == 0 {
		opts.RefreshTimeout = 5 * time.Second
	}

	return New(opts), store
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

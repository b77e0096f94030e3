// authclient — аутентифицированный клиент backend API.
//
// Состав (от листьев к корню):
//   - TokenStore — единственный источник текущей пары токенов;
//   - authenticate — навешивает Authorization: Bearer <access> на исходящий запрос;
//   - coordinator — при 401 обменивает refresh на новую пару (single-flight)
//     и повторяет исходный запрос ровно один раз;
//   - Invalidator — при неудачном обновлении очищает хранилище и оповещает
//     подписчиков (UI уводит пользователя на страницу входа);
//   - Session — производное состояние: аутентифицирован iff пара есть в хранилище.
//
// Всё собрано в http.RoundTripper (Transport), поэтому прикладной код работает
// с обычным *http.Client и не знает о токенах.
package authclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mutombe/silver-carbon/internal/metrics"
	"github.com/Mutombe/silver-carbon/internal/models"
)

//go:generate mockgen -source=authclient.go -destination=../../mocks/mock_tokenstore.go -package=mocks

// TokenStore — хранилище пары токенов (single slot).
// Set заменяет пару атомарно; Clear идемпотентен.
type TokenStore interface {
	Get(ctx context.Context) (models.TokenPair, bool, error)
	Set(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

// Refresher обменивает refresh-токен на новую пару.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

var (
	// ErrNoSession — в хранилище нет пары.
	ErrNoSession = errors.New("no session")
	// ErrRefreshRejected — backend отклонил refresh-токен (4xx/5xx).
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrMalformedRefresh — ответ refresh-эндпойнта без access-токена.
	ErrMalformedRefresh = errors.New("malformed refresh response")
	// ErrOpaqueToken — access-токен не JWT, claims недоступны.
	ErrOpaqueToken = errors.New("opaque access token")
)

// Options — зависимости клиента.
type Options struct {
	// Base — транспорт для запросов к backend'у (nil — http.DefaultTransport).
	Base http.RoundTripper
	// Store — хранилище пары, обязательно.
	Store TokenStore
	// Refresher — обмен refresh-токена, обязательно.
	Refresher Refresher
	// RefreshTimeout — дедлайн общего обновления токенов (<=0 — без дедлайна).
	RefreshTimeout time.Duration
	// KeepSessionOnNetworkError — сетевой сбой при обновлении не завершает сессию.
	KeepSessionOnNetworkError bool

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Client агрегирует транспорт, сессию и инвалидатор поверх одного хранилища.
type Client struct {
	session     *Session
	invalidator *Invalidator
	http        *http.Client
}

// New собирает клиент.
func New(opts Options) *Client {
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	inv := NewInvalidator(opts.Store, opts.Logger, opts.Metrics)
	coord := &coordinator{
		store:         opts.Store,
		refresher:     opts.Refresher,
		invalidator:   inv,
		timeout:       opts.RefreshTimeout,
		keepOnNetwork: opts.KeepSessionOnNetworkError,
		metrics:       opts.Metrics,
	}
	tr := &Transport{base: opts.Base, store: opts.Store, coord: coord}

	return &Client{
		session:     &Session{store: opts.Store, coord: coord},
		invalidator: inv,
		http:        &http.Client{Transport: tr},
	}
}

// HTTPClient — *http.Client с аутентификацией и обновлением токенов.
func (c *Client) HTTPClient() *http.Client { return c.http }

func (c *Client) Session() *Session { return c.session }

// OnInvalidate — подписка на принудительное завершение сессии.
func (c *Client) OnInvalidate(fn func(ctx context.Context, reason error)) {
	c.invalidator.OnInvalidate(fn)
}

// clients — прикладные REST-клиенты backend'а поверх аутентифицированного ядра.
package clients

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Mutombe/silver-carbon/internal/authclient"
	"github.com/Mutombe/silver-carbon/internal/clients/interceptors"
	"github.com/Mutombe/silver-carbon/internal/config"
	"github.com/Mutombe/silver-carbon/internal/metrics"
)

// Clients агрегирует клиенты backend'а и общее ядро сессии.
type Clients struct {
	Auth    *AuthClient
	Devices *DevicesClient
	Users   *UsersClient
	Profile *ProfileClient

	Core *authclient.Client
}

// Deps — внешние зависимости сборки.
type Deps struct {
	Store   authclient.TokenStore
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Base — транспорт до декораторов (nil — http.DefaultTransport); для тестов.
	Base http.RoundTripper
}

// New собирает транспорт и клиенты.
//
// Цепочка для каждой попытки (внешний -> внутренний):
// authclient.Transport -> metadata -> logging -> metrics -> timeout -> otelhttp.
// Обновление токенов и публичные вызовы (вход, регистрация) идут мимо authclient.Transport.
func New(cfg config.Config, d Deps) *Clients {
	base := d.Base
	if base == nil {
		base = http.DefaultTransport
	}

	chain := interceptors.Chain(
		otelhttp.NewTransport(base),
		interceptors.WithMetadata(cfg.API.UserAgent),
		interceptors.Logging(d.Logger),
		interceptors.Metrics(d.Metrics),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)
	plain := &http.Client{Transport: chain}

	core := authclient.New(authclient.Options{
		Base:                      chain,
		Store:                     d.Store,
		Refresher:                 authclient.NewHTTPRefresher(plain, cfg.API.BaseURL),
		RefreshTimeout:            cfg.Timeouts.Refresh,
		KeepSessionOnNetworkError: cfg.Refresh.KeepSessionOnNetworkError,
		Logger:                    d.Logger,
		Metrics:                   d.Metrics,
	})

	public := newRest(plain, cfg.API.BaseURL)
	authed := newRest(core.HTTPClient(), cfg.API.BaseURL)

	return &Clients{
		Auth:    &AuthClient{public: public, authed: authed, session: core.Session()},
		Devices: &DevicesClient{rest: authed},
		Users:   &UsersClient{rest: authed},
		Profile: &ProfileClient{rest: authed},
		Core:    core,
	}
}

package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/metrics"
	"github.com/Mutombe/silver-carbon/internal/models"
	logctx "github.com/Mutombe/silver-carbon/internal/pkg/log"
	"github.com/Mutombe/silver-carbon/internal/pkg/redact"
)

// RefreshPath — эндпойнт обновления относительно базового URL API.
const RefreshPath = "/token/refresh/"

// HTTPRefresher обменивает refresh-токен через POST {base}/token/refresh/.
// client не должен быть аутентифицированным клиентом: обновление идёт мимо Transport.
type HTTPRefresher struct {
	client   *http.Client
	endpoint string
}

func NewHTTPRefresher(client *http.Client, baseURL string) *HTTPRefresher {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPRefresher{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + RefreshPath,
	}
}

// Refresh — ошибки:
//   - транспортные (сеть, таймаут) — как есть, обёрнутые op;
//   - не-2xx — ErrRefreshRejected вместе с *apierrors.Error ответа;
//   - 2xx без access — ErrMalformedRefresh.
//
// Если backend не прислал новый refresh, сохраняется прежний.
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "authclient.HTTPRefresher.Refresh"

	body, err := json.Marshal(models.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrRefreshRejected, apierrors.FromResponse(resp))
	}
	defer resp.Body.Close()

	var out models.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrMalformedRefresh, err)
	}

	if out.Access == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrMalformedRefresh)
	}

	pair := models.TokenPair{Access: out.Access, Refresh: out.Refresh}
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}

	return pair, nil
}

// coordinator реализует политику «одно обновление и один повтор на 401».
// Параллельные 401 ждут одно общее обновление: при ротации refresh-токенов
// второй независимый вызов получил бы отказ и разлогинил пользователя.
type coordinator struct {
	store         TokenStore
	refresher     Refresher
	invalidator   *Invalidator
	timeout       time.Duration
	keepOnNetwork bool
	metrics       *metrics.Metrics

	group singleflight.Group
}

const refreshKey = "refresh"

// refresh возвращает пару, свежее той (stale), с которой запрос получил 401.
// Общее обновление не зависит от отмены контекста отдельного вызывающего:
// ушедший вызывающий получает ctx.Err(), остальные — результат обновления.
func (c *coordinator) refresh(ctx context.Context, stale models.TokenPair) (models.TokenPair, error) {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.timeout)
			defer cancel()
		}

		return c.exchange(fctx, stale)
	})

	select {
	case <-ctx.Done():
		c.metrics.Refresh(metrics.RefreshCanceled)
		return models.TokenPair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.TokenPair{}, res.Err
		}

		return res.Val.(models.TokenPair), nil
	}
}

// exchange выполняется внутри single-flight.
func (c *coordinator) exchange(ctx context.Context, stale models.TokenPair) (models.TokenPair, error) {
	const op = "authclient.refresh"
	log := logctx.From(ctx)

	current, ok, err := c.store.Get(ctx)
	if err != nil {
		return models.TokenPair{}, apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	if !ok {
		// Сессию уже завершили (logout или неудачное обновление в другом запросе).
		return models.TokenPair{}, apierrors.New(apierrors.KindRefreshInvalid, 0, nil, fmt.Errorf("%s: %w", op, ErrNoSession))
	}

	if current.Access != stale.Access {
		c.metrics.Refresh(metrics.RefreshReused)
		log.Debug("token_refresh_reused")
		return current, nil
	}

	start := time.Now()
	pair, err := c.refresher.Refresh(ctx, current.Refresh)
	if err != nil {
		network := apierrors.IsNetwork(err) && !errors.Is(err, ErrRefreshRejected)

		outcome := metrics.RefreshRejected
		if network {
			outcome = metrics.RefreshNetwork
		}
		c.metrics.Refresh(outcome)

		log.Warn("token_refresh_failed",
			slog.String("outcome", outcome),
			slog.String("err", err.Error()),
			slog.Duration("dur", time.Since(start)),
		)

		if network && c.keepOnNetwork {
			return models.TokenPair{}, apierrors.New(apierrors.KindTransientNetwork, 0, nil, fmt.Errorf("%s: %w", op, err))
		}

		if ierr := c.invalidator.Invalidate(ctx, err); ierr != nil {
			log.Error("session_invalidate_failed", slog.String("err", ierr.Error()))
		}

		failed := apierrors.New(apierrors.KindRefreshInvalid, 0, nil, fmt.Errorf("%s: %w", op, err))
		var upstream *apierrors.Error
		if errors.As(err, &upstream) {
			failed.Status, failed.Detail = upstream.Status, upstream.Detail
		}

		return models.TokenPair{}, failed
	}

	if err := c.store.Set(ctx, pair); err != nil {
		return models.TokenPair{}, apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	c.metrics.Refresh(metrics.RefreshSuccess)
	log.Info("token_refreshed", slog.String("token", redact.Token(pair.Access)), slog.Duration("dur", time.Since(start)))

	return pair, nil
}

package authclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	logctx "github.com/Mutombe/silver-carbon/internal/pkg/log"
	"github.com/Mutombe/silver-carbon/internal/pkg/redact"
)

// retriedKey помечает контекст повторного запроса: повтор после 401
// бывает не больше одного раза на логический запрос.
type retriedKey struct{}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// Transport — http.RoundTripper с аутентификацией и обновлением токенов.
//
// Переходы для одного запроса:
//   - Sent -> Succeeded: любой ответ кроме 401 отдаётся без изменений;
//   - Sent -> AuthFailed (401): если запрос уже повторный, без токена или его
//     тело нельзя переотправить — 401 отдаётся вызывающему как финальный;
//   - AuthFailed -> Refreshing -> RefreshSucceeded: новая пара в хранилище,
//     запрос уходит повторно с новым access-токеном (ровно один раз);
//   - Refreshing -> RefreshFailed: сессия завершена, вызывающий получает
//     *apierrors.Error c KindRefreshInvalid.
type Transport struct {
	base  http.RoundTripper
	store TokenStore
	coord *coordinator
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	const op = "authclient.Transport.RoundTrip"
	ctx := req.Context()

	pair, ok, err := t.store.Get(ctx)
	if err != nil {
		closeBody(req)
		return nil, apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := t.base.RoundTrip(authenticate(req, pair, ok))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || !ok || isRetried(ctx) || !replayable(req) {
		return resp, nil
	}

	logctx.From(ctx).Debug("auth_expired",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("token", redact.Token(pair.Access)),
	)
	original := apierrors.FromResponse(resp)

	fresh, err := t.coord.refresh(ctx, pair)
	if err != nil {
		return nil, withOriginal(err, original)
	}

	retry, err := rewind(req.WithContext(context.WithValue(ctx, retriedKey{}, true)))
	if err != nil {
		return nil, apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: rewind body: %w", op, err))
	}

	return t.base.RoundTrip(authenticate(retry, fresh, true))
}

// withOriginal — при завершённой сессии вызывающий получает статус и тело
// исходного 401; причина (отказ refresh-эндпойнта) остаётся в Err.
// Общую ошибку single-flight не меняем: у каждого ожидающего своя копия.
func withOriginal(err error, original *apierrors.Error) error {
	var e *apierrors.Error
	if !errors.As(err, &e) || e.Kind != apierrors.KindRefreshInvalid {
		return err
	}

	return apierrors.New(apierrors.KindRefreshInvalid, original.Status, original.Detail, err)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

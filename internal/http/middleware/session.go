package middleware

import (
	"context"
	"net/http"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
)

// SessionChecker — источник признака аутентификации.
type SessionChecker interface {
	Authenticated(ctx context.Context) (bool, error)
}

// RequireSession пропускает запрос к защищённым маршрутам только при наличии сессии.
// Без сессии — 401 session_expired и Location на страницу входа, backend не вызывается.
func RequireSession(s SessionChecker, loginPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := s.Authenticated(r.Context())
			if err != nil {
				apierrors.WriteError(w, r, apierrors.New(apierrors.KindInternal, 0, nil, err))
				return
			}

			if !ok {
				if loginPath != "" {
					w.Header().Set("Location", loginPath)
				}
				apierrors.WriteError(w, r, apierrors.New(apierrors.KindRefreshInvalid, 0, nil, nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Mutombe/silver-carbon/internal/authclient"
	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
	logctx "github.com/Mutombe/silver-carbon/internal/pkg/log"
	"github.com/Mutombe/silver-carbon/internal/pkg/redact"
)

// AuthClient — вход, регистрация, подтверждение email и выход.
// Вход и регистрация идут без токена (public), выход — с ним.
type AuthClient struct {
	public  *rest
	authed  *rest
	session *authclient.Session
}

// Login проверяет учётные данные у backend'а и сохраняет полученную пару.
func (c *AuthClient) Login(ctx context.Context, in models.LoginRequest) (models.AuthResult, error) {
	const op = "clients.Auth.Login"

	if err := validate.Struct(in); err != nil {
		return models.AuthResult{}, apierrors.Invalid(err)
	}

	var out models.LoginResponse
	if err := c.public.doJSON(ctx, http.MethodPost, "/login/", nil, in, &out); err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.session.Login(ctx, out.Pair()); err != nil {
		return models.AuthResult{}, apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	logctx.From(ctx).Info("logged_in", slog.Int64("user_id", out.UserID), slog.String("role", out.Role))

	return models.AuthResult{UserID: out.UserID, Role: out.Role}, nil
}

func (c *AuthClient) Register(ctx context.Context, in models.RegisterRequest) (models.RegisterResponse, error) {
	const op = "clients.Auth.Register"

	if err := validate.Struct(in); err != nil {
		return models.RegisterResponse{}, apierrors.Invalid(err)
	}

	var out models.RegisterResponse
	if err := c.public.doJSON(ctx, http.MethodPost, "/register/", nil, in, &out); err != nil {
		return models.RegisterResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("registered", slog.String("email", redact.Email(in.Email)))

	return out, nil
}

func (c *AuthClient) VerifyEmail(ctx context.Context, in models.VerifyEmailRequest) (models.VerifyEmailResponse, error) {
	const op = "clients.Auth.VerifyEmail"

	if err := validate.Struct(in); err != nil {
		return models.VerifyEmailResponse{}, apierrors.Invalid(err)
	}

	var out models.VerifyEmailResponse
	if err := c.public.doJSON(ctx, http.MethodPost, "/verify-email/", nil, in, &out); err != nil {
		return models.VerifyEmailResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Logout отзывает refresh-токен на backend'е и очищает локальное состояние.
// Локальная пара удаляется при любом ответе сервера; ошибка сервера только логируется.
func (c *AuthClient) Logout(ctx context.Context) error {
	const op = "clients.Auth.Logout"

	pair, err := c.session.Tokens(ctx)
	if errors.Is(err, authclient.ErrNoSession) {
		return nil
	}
	if err != nil {
		return apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	if err := c.authed.doJSON(ctx, http.MethodPost, "/logout/", nil, models.LogoutRequest{Refresh: pair.Refresh}, nil); err != nil {
		logctx.From(ctx).Warn("logout_upstream_failed", slog.String("err", err.Error()))
	}

	if err := c.session.Logout(ctx); err != nil {
		return apierrors.New(apierrors.KindInternal, 0, nil, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// Session — сведения о текущей сессии из claims access-токена.
func (c *AuthClient) Session(ctx context.Context) (models.SessionInfo, error) {
	return c.session.Info(ctx)
}

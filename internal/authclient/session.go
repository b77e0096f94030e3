package authclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// Session — состояние сессии, производное от хранилища:
// пользователь аутентифицирован тогда и только тогда, когда пара есть.
type Session struct {
	store TokenStore
	coord *coordinator
}

// Claims — непроверенные claims access-токена. Подпись не проверяется:
// токен проверяет backend, клиенту нужны только идентификатор, роль и срок.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

func (s *Session) Authenticated(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("authclient.Session.Authenticated: %w", err)
	}

	return ok, nil
}

// Tokens — текущая пара; ErrNoSession, если её нет.
func (s *Session) Tokens(ctx context.Context) (models.TokenPair, error) {
	const op = "authclient.Session.Tokens"

	pair, ok, err := s.store.Get(ctx)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	return pair, nil
}

// Login сохраняет пару, полученную при входе.
func (s *Session) Login(ctx context.Context, pair models.TokenPair) error {
	if err := s.store.Set(ctx, pair); err != nil {
		return fmt.Errorf("authclient.Session.Login: %w", err)
	}

	return nil
}

// Logout очищает локальное состояние. Идемпотентен.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("authclient.Session.Logout: %w", err)
	}

	return nil
}

// Restore проверяет сохранённую пару при старте одним обновлением.
// Без пары — ErrNoSession. Неудачное обновление завершает сессию
// так же, как 401 в обычном запросе.
func (s *Session) Restore(ctx context.Context) error {
	const op = "authclient.Session.Restore"

	pair, ok, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	if _, err := s.coord.refresh(ctx, pair); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Claims разбирает access-токен текущей пары.
func (s *Session) Claims(ctx context.Context) (Claims, error) {
	const op = "authclient.Session.Claims"

	pair, err := s.Tokens(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := ParseClaims(pair.Access)
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// Info — сводка для UI. Непрозрачный токен не ошибка: возвращается
// только признак аутентификации.
func (s *Session) Info(ctx context.Context) (models.SessionInfo, error) {
	c, err := s.Claims(ctx)
	switch {
	case errors.Is(err, ErrNoSession):
		return models.SessionInfo{}, nil
	case errors.Is(err, ErrOpaqueToken):
		return models.SessionInfo{Authenticated: true}, nil
	case err != nil:
		return models.SessionInfo{}, apierrors.New(apierrors.KindInternal, 0, nil, err)
	}

	info := models.SessionInfo{Authenticated: true, UserID: c.UserID, Role: c.Role}
	if !c.ExpiresAt.IsZero() {
		info.ExpiresAt = c.ExpiresAt.Unix()
	}

	return info, nil
}

// ParseClaims извлекает user_id (или sub), role и exp без проверки подписи.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}

	var c Claims
	switch v := mc["user_id"].(type) {
	case string:
		c.UserID = v
	case float64:
		c.UserID = strconv.FormatInt(int64(v), 10)
	}
	if c.UserID == "" {
		c.UserID, _ = mc.GetSubject()
	}

	c.Role, _ = mc["role"].(string)

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	return c, nil
}

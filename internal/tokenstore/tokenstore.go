// tokenstore — реализации хранилища пары токенов (single slot):
//   - Memory — в памяти процесса (тесты, эфемерные сессии);
//   - File — JSON-файл, переживает перезапуск (аналог localStorage["tokens"]);
//   - Redis — один ключ в Redis для шлюза в контейнере.
//
// Во всех реализациях Set заменяет пару атомарно: читатель видит либо старую
// пару целиком, либо новую целиком.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mutombe/silver-carbon/internal/config"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// Key — единственный известный ключ, под которым лежит пара.
const Key = "tokens"

// Типы хранилища из конфигурации.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindRedis  = "redis"
)

var (
	// ErrInvalidPair — в паре пустой access или refresh.
	ErrInvalidPair = errors.New("invalid token pair")
	// ErrUnknownKind — неизвестный тип хранилища в конфигурации.
	ErrUnknownKind = errors.New("unknown token store kind")
)

// Store — то, что умеет каждая реализация.
type Store interface {
	Get(ctx context.Context) (models.TokenPair, bool, error)
	Set(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
	Close() error
}

// New создаёт хранилище по конфигурации.
func New(ctx context.Context, cfg config.TokenStoreConfig) (Store, error) {
	const op = "tokenstore.New"

	switch cfg.Kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindFile:
		return NewFile(cfg.FilePath)
	case KindRedis:
		st, err := NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return st, nil
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownKind, cfg.Kind)
	}
}

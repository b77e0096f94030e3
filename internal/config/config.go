// config - источник загрузки конфигурации шлюза и CLI.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	API        APIConfig        `yaml:"api"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	CORS       CORSConfig       `yaml:"cors"`
}

// HTTPConfig — REST-сервер шлюза для UI.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// APIConfig — backend и точка входа для разлогиненного пользователя.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000/api"`
	LoginPath string `yaml:"login_path" env:"API_LOGIN_PATH" env-default:"/login"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"silver-gateway"`
}

// TimeoutConfig — таймауты: одной попытки запроса к backend'у,
// обновления токенов и обработки входящего запроса шлюзом.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Refresh time.Duration `yaml:"refresh" env:"REFRESH_TIMEOUT" env-default:"10s"`
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"30s"`
}

// RefreshConfig — политика при неудачном обновлении токенов.
// KeepSessionOnNetworkError=false: любой сбой обновления завершает сессию.
// true: сетевой сбой возвращается вызывающему, сессия сохраняется.
type RefreshConfig struct {
	KeepSessionOnNetworkError bool `yaml:"keep_session_on_network_error" env:"REFRESH_KEEP_SESSION_ON_NETWORK_ERROR" env-default:"false"`
}

// TokenStoreConfig — где лежит пара токенов.
type TokenStoreConfig struct {
	Kind        string `yaml:"kind"         env:"TOKEN_STORE"              env-default:"file"`
	FilePath    string `yaml:"file_path"    env:"TOKEN_STORE_FILE"`
	RedisURL    string `yaml:"redis_url"    env:"TOKEN_STORE_REDIS_URL"    env-default:"redis://localhost:6379/0"`
	RedisPrefix string `yaml:"redis_prefix" env:"TOKEN_STORE_REDIS_PREFIX" env-default:"silver:"`
}

// CORSConfig — origin'ы UI, которым разрешено ходить в шлюз.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	// 1) --config, 2) CONFIG_PATH: файл обязан существовать.
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		return readFile(path, "failed to read config")
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml", "failed to read local.yaml")
	}

	// 4) только ENV
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}

// readFile читает YAML и накладывает поверх ENV.
func readFile(path, failMsg string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", failMsg, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to overlay env: %w", err)
	}

	return &cfg, nil
}

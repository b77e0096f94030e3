package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
http:
  host: "0.0.0.0"
  port: "8080"
api:
  base_url: "https://api.silver.example/api"
  login_path: "/signin"
  user_agent: "silver-test"
timeouts:
  request: "3s"
  refresh: "2s"
  service: "20s"
refresh:
  keep_session_on_network_error: true
token_store:
  kind: "redis"
  redis_url: "redis://10.0.0.5:6379/1"
  redis_prefix: "bff:"
cors:
  allowed_origins: ["https://silver.example", "http://localhost:3000"]
`

const minimalYAML = `
env: "stage"
`

const brokenYAML = `
env: [unclosed
`

func TestHTTPConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.Equal(t, "https://api.silver.example/api", cfg.API.BaseURL)
	require.Equal(t, "/signin", cfg.API.LoginPath)
	require.Equal(t, "silver-test", cfg.API.UserAgent)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 2*time.Second, cfg.Timeouts.Refresh)
	require.Equal(t, 20*time.Second, cfg.Timeouts.Service)
	require.True(t, cfg.Refresh.KeepSessionOnNetworkError)
	require.Equal(t, "redis", cfg.TokenStore.Kind)
	require.Equal(t, "redis://10.0.0.5:6379/1", cfg.TokenStore.RedisURL)
	require.Equal(t, "bff:", cfg.TokenStore.RedisPrefix)
	require.Equal(t, []string{"https://silver.example", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "stage", cfg.Env)
	require.Equal(t, "127.0.0.1:8090", cfg.HTTP.Addr())
	require.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	require.Equal(t, "/login", cfg.API.LoginPath)
	require.Equal(t, 15*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 10*time.Second, cfg.Timeouts.Refresh)
	require.False(t, cfg.Refresh.KeepSessionOnNetworkError)
	require.Equal(t, "file", cfg.TokenStore.Kind)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

// Приоритет источников: --config > CONFIG_PATH > ./local.yaml.
func TestLoad_SourcePriority(t *testing.T) {
	tcs := []struct {
		name     string
		explicit string // имя файла в dir или ""
		envPath  string
		local    string // содержимое ./local.yaml или ""
		wantEnv  string
		wantPort string
	}{
		{name: "config_path", envPath: "env.yaml", wantEnv: "stage", wantPort: "8090"},
		{name: "local_yaml", local: sampleYAML, wantEnv: "prod", wantPort: "8080"},
		{name: "config_path_over_local", envPath: "env.yaml", local: "env: local\nhttp: { port: \"7777\" }\n", wantEnv: "stage", wantPort: "8090"},
		{name: "explicit_over_all", explicit: "explicit.yaml", envPath: "broken.yaml", local: "env: local\n", wantEnv: "prod", wantPort: "8080"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)

			writeFile(t, dir, "env.yaml", minimalYAML)
			writeFile(t, dir, "broken.yaml", brokenYAML)
			writeFile(t, dir, "explicit.yaml", sampleYAML)
			if tc.local != "" {
				writeFile(t, ".", "local.yaml", tc.local)
			}

			envPath := ""
			if tc.envPath != "" {
				envPath = filepath.Join(dir, tc.envPath)
			}
			t.Setenv("CONFIG_PATH", envPath)

			explicit := ""
			if tc.explicit != "" {
				explicit = filepath.Join(dir, tc.explicit)
			}

			cfg, err := Load(explicit)
			require.NoError(t, err)
			require.Equal(t, tc.wantEnv, cfg.Env)
			require.Equal(t, tc.wantPort, cfg.HTTP.Port)
		})
	}
}

func TestLoad_EnvOverlay_OverridesValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	t.Setenv("HTTP_PORT", "18080")
	t.Setenv("API_BASE_URL", "http://127.0.0.1:9000/api")
	t.Setenv("REFRESH_TIMEOUT", "5s")
	t.Setenv("TOKEN_STORE", "memory")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "18080", cfg.HTTP.Port)
	require.Equal(t, "http://127.0.0.1:9000/api", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeouts.Refresh)
	require.Equal(t, "memory", cfg.TokenStore.Kind)
}

// «Только ENV» без файлов.
func TestLoad_EnvOnly_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("ENV", "dev")
	t.Setenv("API_BASE_URL", "http://backend:8000/api")
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_STORE_FILE", "/tmp/silver/tokens.json")
	t.Setenv("REFRESH_KEEP_SESSION_ON_NETWORK_ERROR", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "http://backend:8000/api", cfg.API.BaseURL)
	require.Equal(t, "/tmp/silver/tokens.json", cfg.TokenStore.FilePath)
	require.True(t, cfg.Refresh.KeepSessionOnNetworkError)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestMustLoad_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ok.yaml", minimalYAML)

	cfg := MustLoad(cfgPath)
	require.NotNil(t, cfg)
	require.Equal(t, "stage", cfg.Env)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

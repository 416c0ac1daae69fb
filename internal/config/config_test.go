package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-marker/internal/llm"
)

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ModeLocal, c.Mode)
	require.Equal(t, ":8080", c.HTTPAddr)
	require.Equal(t, "sqlite", c.DBDriver)
	require.Equal(t, 3000, c.ChunkMaxTokens)
	require.Equal(t, 8*time.Second, c.InterChunkDelay)
	require.Equal(t, 2*time.Minute, c.LLMTimeout)
	require.InDelta(t, 0.3, c.LLMTemperature, 1e-9)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:3010"}, c.Origins())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "remote")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_DELAY", "500ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	c, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ModeRemote, c.Mode)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())

	p := c.RetryPolicy()
	require.Equal(t, 5, p.MaxRetries)
	require.Equal(t, 500*time.Millisecond, p.BaseDelay)
	require.LessOrEqual(t, p.Jitter, p.BaseDelay)

	r := c.Remote()
	require.Equal(t, 12000, r.SingleRequestTokens)
	require.Equal(t, 10, r.MaxChunks)
	require.Equal(t, "sk-test", c.LLM().APIKey)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("MODE", "remote")
	t.Setenv("LLM_API_KEY", "")
	_, err := FromEnv()
	require.ErrorContains(t, err, "LLM_API_KEY")

	t.Setenv("MODE", "hybrid")
	_, err = FromEnv()
	require.ErrorContains(t, err, "MODE")
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9191\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9191", c.HTTPAddr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestRemoteEngine(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	_, err := Config{}.RemoteEngine(log)
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)

	c := Config{LLMAPIKey: "sk-test", LLMRPM: 10, ChunkMaxTokens: 100, SingleRequestMaxTokens: 200}
	e, err := c.RemoteEngine(log)
	require.NoError(t, err)
	require.NotNil(t, e)
}

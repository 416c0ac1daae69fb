package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"github.com/mind-engage/mindengage-marker/internal/chunker"
	"github.com/mind-engage/mindengage-marker/internal/llm"
	"github.com/mind-engage/mindengage-marker/internal/marking"
	"github.com/mind-engage/mindengage-marker/internal/retry"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

const defaultCORSOrigins = "http://localhost:3000,http://localhost:3010"

type Config struct {
	Mode     Mode   `env:"MODE,default=local"`
	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	DBDriver     string `env:"DB_DRIVER,default=sqlite"`
	DBDSN        string `env:"DB_DSN"`
	BlobBasePath string `env:"BLOB_BASE_PATH,default=./data"`

	AuthHMACSecret string `env:"AUTH_HMAC_SECRET,default=dev-secret-change-me"`
	AdminUser      string `env:"ADMIN_USER,default=admin"`
	AdminPassHash  string `env:"ADMIN_PASS_HASH,default=$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"`
	// comma separated
	CORSOrigins string `env:"CORS_ORIGINS"`

	LLMBaseURL         string        `env:"LLM_BASE_URL,default=https://api.openai.com/v1"`
	LLMModel           string        `env:"LLM_MODEL,default=gpt-4o-mini"`
	LLMAPIKey          string        `env:"LLM_API_KEY"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT,default=2m"`
	LLMRPM             int           `env:"LLM_RPM,default=20"`
	LLMMaxOutputTokens int           `env:"LLM_MAX_OUTPUT_TOKENS,default=1500"`
	LLMTemperature     float64       `env:"LLM_TEMPERATURE,default=0.3"`

	MaxRetries             int           `env:"MAX_RETRIES,default=3"`
	RetryBaseDelay         time.Duration `env:"RETRY_BASE_DELAY,default=2s"`
	ChunkMaxTokens         int           `env:"CHUNK_MAX_TOKENS,default=3000"`
	SingleRequestMaxTokens int           `env:"SINGLE_REQUEST_MAX_TOKENS,default=12000"`
	InterChunkDelay        time.Duration `env:"INTER_CHUNK_DELAY,default=8s"`
	InterDocumentDelay     time.Duration `env:"INTER_DOCUMENT_DELAY,default=2s"`
}

// Load reads an optional .env file, then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, err
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var c Config
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Mode != ModeLocal && c.Mode != ModeRemote {
		errs = append(errs, errors.New("MODE must be local or remote"))
	}
	if c.Mode == ModeRemote && strings.TrimSpace(c.LLMAPIKey) == "" {
		errs = append(errs, errors.New("LLM_API_KEY is required in remote mode"))
	}
	if c.ChunkMaxTokens <= 0 || c.SingleRequestMaxTokens <= 0 {
		errs = append(errs, errors.New("token budgets must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	return errors.Join(errs...)
}

// Origins returns the allowed CORS origins.
func (c Config) Origins() []string { return csvOr(c.CORSOrigins, defaultCORSOrigins) }

func (c Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = c.MaxRetries
	p.BaseDelay = c.RetryBaseDelay
	p.AttemptTimeout = c.LLMTimeout
	if p.Jitter > p.BaseDelay {
		p.Jitter = p.BaseDelay
	}
	return p
}

func (c Config) Remote() marking.RemoteConfig {
	return marking.RemoteConfig{
		SingleRequestTokens: c.SingleRequestMaxTokens,
		ChunkTokens:         c.ChunkMaxTokens,
		MaxChunks:           chunker.MaxChunks,
		MaxOutputTokens:     c.LLMMaxOutputTokens,
		Temperature:         c.LLMTemperature,
		InterChunkDelay:     c.InterChunkDelay,
		Policy:              c.RetryPolicy(),
	}
}

func (c Config) LLM() llm.Options {
	return llm.Options{
		BaseURL: c.LLMBaseURL,
		Model:   c.LLMModel,
		APIKey:  c.LLMAPIKey,
		Timeout: c.LLMTimeout,
	}
}

func csvOr(v, def string) []string {
	if strings.TrimSpace(v) == "" {
		v = def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RemoteEngine builds the rate-gated remote marking engine. It fails with
// llm.ErrMissingAPIKey when no key is configured.
func (c Config) RemoteEngine(log *slog.Logger) (*marking.RemoteEngine, error) {
	client, err := llm.NewClient(c.LLM())
	if err != nil {
		return nil, err
	}
	gated := llm.NewGated(client, c.LLMRPM, time.Now)
	return marking.NewRemoteEngine(gated, log, marking.WithRemoteConfig(c.Remote())), nil
}

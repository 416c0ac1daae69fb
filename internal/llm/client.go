package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 2 * time.Minute
)

// Options configures an OpenAI-compatible chat completions client.
type Options struct {
	BaseURL      string
	Model        string
	APIKey       string
	Timeout      time.Duration
	EndpointPath string
	ExtraHeaders map[string]string
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.EndpointPath == "" {
		o.EndpointPath = "/chat/completions"
	}
}

// Client talks to /chat/completions.
type Client struct {
	url    string
	apiKey string
	model  string
	extraH map[string]string
	do     func(*http.Request) (*http.Response, error)
}

func NewClient(opts Options) (*Client, error) {
	opts.defaults()
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	hc := &http.Client{Timeout: opts.Timeout}
	url := opts.EndpointPath
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(opts.EndpointPath, "/")
	}
	return &Client{
		url:    url,
		apiKey: opts.APIKey,
		model:  opts.Model,
		extraH: opts.ExtraHeaders,
		do:     hc.Do,
	}, nil
}

// Model is the configured model name.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// UpstreamError is a non-2xx reply that is neither rate limiting nor an
// oversized payload.
type UpstreamError struct {
	Status int
	Msg    string
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("llm upstream %d: %s", e.Status, e.Msg) }

// Temporary reports whether the status is worth retrying.
func (e *UpstreamError) Temporary() bool {
	return e.Status == http.StatusRequestTimeout || e.Status/100 == 5
}

func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if r.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: r.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: r.User})
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   r.MaxOutputTokens,
		Temperature: r.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.extraH {
		if k != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", classifyStatus(resp.StatusCode, slurp)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return cr.Choices[0].Message.Content, nil
}

func classifyStatus(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
		msg = eb.Error.Message
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("llm upstream %d: %s: %w", status, msg, ErrRateLimited)
	case status == http.StatusRequestEntityTooLarge, tooLarge(eb.Error.Code, msg):
		return fmt.Errorf("llm upstream %d: %s: %w", status, msg, ErrPayloadTooLarge)
	}
	return &UpstreamError{Status: status, Msg: msg}
}

func tooLarge(code, msg string) bool {
	if code == "context_length_exceeded" {
		return true
	}
	low := strings.ToLower(msg)
	return strings.Contains(low, "context_length_exceeded") ||
		strings.Contains(low, "maximum context length") ||
		strings.Contains(low, "too large")
}

// IsTemporary reports whether err is an upstream failure worth retrying.
func IsTemporary(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Temporary()
}

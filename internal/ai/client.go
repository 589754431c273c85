package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured means no usable credentials; nothing is sent to the
// network in that state.
var ErrNotConfigured = errors.New("ai provider not configured")

// placeholderAPIKey ships in example configs and must never be treated as a
// real credential.
const placeholderAPIKey = "sk-test-1234567890abcdef123456"

// ChatCompleter is the single call the adapter needs from the provider SDK.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIURL      string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Usage tracks request statistics for the lifetime of the client.
type Usage struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalTokensUsed    int
	LastRequestTime    time.Time
}

// Client wraps the provider SDK with configuration, usage accounting and the
// local-heuristic failover.
type Client struct {
	cfg Config
	api ChatCompleter

	mu    sync.Mutex
	usage Usage
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		oc.BaseURL = cfg.APIURL
	}
	return &Client{cfg: cfg, api: openai.NewClientWithConfig(oc)}
}

// NewClientWithCompleter injects a provider implementation; used by tests.
func NewClientWithCompleter(cfg Config, api ChatCompleter) *Client {
	c := NewClient(cfg)
	c.api = api
	return c
}

// Configured reports whether real credentials are present. The placeholder
// test key does not count.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.APIKey != placeholderAPIKey
}

// Usage returns a snapshot of the request counters.
func (c *Client) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// ResetUsage clears the request counters.
func (c *Client) ResetUsage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = Usage{}
}

// sendCompletion performs one chat-completion round trip and keeps the usage
// counters current.
func (c *Client) sendCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (openai.ChatCompletionResponse, error) {
	if !c.Configured() {
		return openai.ChatCompletionResponse{}, ErrNotConfigured
	}

	c.mu.Lock()
	c.usage.TotalRequests++
	c.usage.LastRequestTime = time.Now()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    messages,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.usage.FailedRequests++
		return openai.ChatCompletionResponse{}, err
	}
	c.usage.SuccessfulRequests++
	c.usage.TotalTokensUsed += resp.Usage.TotalTokens
	return resp, nil
}

// TestConnection sends a minimal prompt and verifies the provider answers.
func (c *Client) TestConnection(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	resp, err := c.sendCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: `Teste de conexão. Responda apenas "OK".`},
	}, 10, c.cfg.Temperature)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("invalid response from ai provider")
	}
	return nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"watchcommander/internal/config"
)

// Message is one chat turn sent to the generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the text-in/text-out contract of the generation service.
type Generator interface {
	Generate(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, messages []Message, temperature float64) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	return f(ctx, messages, temperature)
}

const maxReplyBytes = 4 << 20

// replyPaths lists where OpenAI-style and Ollama-style chat endpoints put the
// generated text.
var replyPaths = []string{
	"choices.0.message.content",
	"message.content",
	"choices.0.text",
	"response",
}

// ChatClient calls an OpenAI- or Ollama-compatible chat endpoint.
type ChatClient struct {
	http      *http.Client
	provider  string
	url       string
	model     string
	apiKey    string
	maxTokens int
	limiter   *rate.Limiter
	log       logrus.FieldLogger
}

func NewChatClient(cfg config.LLM, log logrus.FieldLogger) *ChatClient {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &ChatClient{
		http:      &http.Client{Timeout: cfg.Timeout()},
		provider:  strings.ToLower(cfg.Provider),
		url:       cfg.URL,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		maxTokens: cfg.MaxTokens,
		log:       log.WithField("component", "chat"),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

func (c *ChatClient) body(messages []Message, temperature float64) map[string]any {
	if c.provider == "ollama" {
		return map[string]any{
			"model":    c.model,
			"messages": messages,
			"stream":   false,
			"options": map[string]any{
				"temperature": temperature,
				"num_predict": c.maxTokens,
			},
		}
	}
	return map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  c.maxTokens,
	}
}

func (c *ChatClient) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	payload, err := json.Marshal(c.body(messages, temperature))
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "url": c.url}).Warn("generation endpoint rejected request")
		return "", fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}
	for _, path := range replyPaths {
		if v := gjson.GetBytes(raw, path); v.Type == gjson.String {
			if strings.TrimSpace(v.String()) == "" {
				return "", ErrEmptyReply
			}
			return v.String(), nil
		}
	}
	return "", ErrEmptyReply
}

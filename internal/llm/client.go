// Package llm holds the provider-specific HTTP gateways. Two providers are
// supported: doubao (chat-completions style) and gemini (generateContent
// style). Each has a statically typed request body and response envelope so
// a provider schema change fails loudly instead of silently returning empty
// text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mxppxm/english-tutor/internal/logger"
)

type Provider string

const (
	ProviderDoubao Provider = "doubao"
	ProviderGemini Provider = "gemini"
)

// Message is one chat turn. Gemini has no native message list for this call
// shape, so messages are flattened into a single prompt for it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	analysisTimeout = 300 * time.Second
	ocrTimeout      = 120 * time.Second

	analysisTemperature = 0.3
	analysisMaxTokens   = 4000

	responseBodyLimit = 8 << 20
)

// Options carry the provider endpoints; tests point them at local servers.
type Options struct {
	DoubaoBaseURL string
	GeminiBaseURL string
}

type Client struct {
	http       *http.Client
	doubaoBase string
	geminiBase string
	log        *logger.Logger
}

func NewClient(opts Options) *Client {
	doubaoBase := strings.TrimRight(opts.DoubaoBaseURL, "/")
	if doubaoBase == "" {
		doubaoBase = "https://ark.cn-beijing.volces.com/api/v3"
	}
	geminiBase := strings.TrimRight(opts.GeminiBaseURL, "/")
	if geminiBase == "" {
		geminiBase = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Client{
		http:       &http.Client{},
		doubaoBase: doubaoBase,
		geminiBase: geminiBase,
		log:        logger.New("LLM"),
	}
}

// Chat sends a system+user conversation to the selected provider and returns
// the raw completion text. One attempt, bounded by the analysis timeout; the
// caller may cancel earlier through ctx, which surfaces as *TimeoutError the
// same way the deadline does.
func (c *Client) Chat(ctx context.Context, provider Provider, apiKey, model string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	switch provider {
	case ProviderGemini:
		return c.generateContent(ctx, apiKey, model, messages)
	default:
		return c.chatCompletions(ctx, apiKey, model, messages)
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatCompletions(ctx context.Context, apiKey, model string, messages []Message) (string, error) {
	if model == "" {
		model = "deepseek-v3-1-250821"
	}
	body := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	raw, err := c.doPost(ctx, ProviderDoubao, c.doubaoBase+"/chat/completions", headers, body)
	if err != nil {
		return "", err
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("parsing doubao response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateContent(ctx context.Context, apiKey, model string, messages []Message) (string, error) {
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	flattened := make([]string, len(messages))
	for i, m := range messages {
		flattened[i] = m.Role + ": " + m.Content
	}

	body := generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: strings.Join(flattened, "\n\n")}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     analysisTemperature,
			MaxOutputTokens: analysisMaxTokens,
		},
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.geminiBase, model, url.QueryEscape(apiKey))

	raw, err := c.doPost(ctx, ProviderGemini, endpoint, nil, body)
	if err != nil {
		return "", err
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("parsing gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// doPost issues one JSON POST and returns the body on 2xx. Non-2xx becomes a
// *ProviderError with the upstream envelope's error.message when present;
// cancellation and deadline both become *TimeoutError.
func (c *Client) doPost(ctx context.Context, provider Provider, endpoint string, headers map[string]string, body interface{}) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			c.log.LogWarnf("%s call aborted after %v", provider, time.Since(start))
			return nil, &TimeoutError{Provider: provider}
		}
		return nil, fmt.Errorf("%s network error: %w", provider, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, responseBodyLimit))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Provider: provider}
		}
		return nil, fmt.Errorf("%s reading response: %w", provider, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(res.Status)
		}
		return nil, &ProviderError{Provider: provider, StatusCode: res.StatusCode, Message: msg}
	}

	c.log.LogDebugf("%s call completed in %v (%d bytes)", provider, time.Since(start), len(raw))
	return raw, nil
}

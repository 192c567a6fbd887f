package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrGenerationExhausted marks a generation that failed after the full retry
// budget. Callers fall back to deterministic formatting instead of
// surfacing it.
var ErrGenerationExhausted = errors.New("generation retries exhausted")

const systemInstruction = "You are a helpful assistant that provides recommendations. " +
	"Always follow the output format specified in the user's request."

const jsonInstruction = "\n\nCRITICAL: Return ONLY a valid JSON array. " +
	"No markdown code blocks (```), no explanations, no preamble. " +
	"Just pure JSON starting with [ and ending with ]."

// Low temperature favors stable structured output over creative variance.
const temperature = 0.3
const maxTokens = 2000

// Client wraps a single chat-completion call against an OpenRouter-compatible
// API with timeout, retry-with-backoff and response sanitization. No state is
// retained between calls.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	referer    string
	maxRetries int
	httpClient *http.Client
	sleep      func(time.Duration)
}

func NewClient(baseURL, apiKey, model, referer string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		referer:    referer,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// retryableError wraps failures worth another attempt: transport errors,
// rate-limit/unavailable statuses and structurally unusable responses.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(format string, args ...interface{}) error {
	return &retryableError{err: fmt.Errorf(format, args...)}
}

// Generate issues the chat-completion call and returns sanitized content.
// With expectJSON set, the prompt carries a hard raw-JSON instruction and
// the response must parse as JSON after sanitization; a parse failure is
// retried like a transport error. Other non-success statuses fail
// immediately since retrying would not change a client-error outcome.
func (c *Client) Generate(ctx context.Context, prompt string, expectJSON bool) (string, error) {
	fullPrompt := prompt
	if expectJSON {
		fullPrompt += jsonInstruction
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		content, err := c.attempt(ctx, fullPrompt, expectJSON)
		if err == nil {
			return content, nil
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return "", err
		}

		lastErr = err
		if attempt >= c.maxRetries {
			break
		}

		delay := time.Duration(1<<uint(attempt)) * time.Second
		slog.Warn("Generator attempt failed, retrying",
			"attempt", attempt+1, "max_attempts", c.maxRetries+1, "delay", delay, "error", err)
		c.sleep(delay)
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrGenerationExhausted, c.maxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, prompt string, expectJSON bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", "Curator")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retryable("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retryable("failed to read generator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable {
			return "", retryable("generator returned status %d: %s", resp.StatusCode, preview)
		}
		return "", fmt.Errorf("generator returned status %d: %s", resp.StatusCode, preview)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", retryable("failed to decode generator response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", retryable("generator response has no choices")
	}

	content := Sanitize(chatResp.Choices[0].Message.Content, expectJSON)
	if content == "" {
		return "", retryable("generator returned empty content")
	}

	if expectJSON && !json.Valid([]byte(content)) {
		return "", retryable("generator returned invalid JSON")
	}

	return content, nil
}

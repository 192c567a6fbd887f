package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func newTestClient(url string, maxRetries int) (*Client, *[]time.Duration) {
	c := NewClient(url, "test-key", "test/model", "http://localhost", 5*time.Second, maxRetries)
	var delays []time.Duration
	c.sleep = func(d time.Duration) {
		delays = append(delays, d)
	}
	return c, &delays
}

func TestClient_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Missing authorization header")
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("Expected system + user messages, got %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(chatBody(`[{"id":"42","why":"Great"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 2)
	content, err := client.Generate(context.Background(), "pick books", true)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if content != `[{"id":"42","why":"Great"}]` {
		t.Errorf("Unexpected content: %q", content)
	}
}

func TestClient_Generate_AppendsJSONInstruction(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Messages[1].Content
		json.NewEncoder(w).Encode(chatBody(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 0)
	client.Generate(context.Background(), "base prompt", true)

	if gotPrompt == "base prompt" {
		t.Error("Expected JSON instruction appended to prompt")
	}
}

func TestClient_Generate_RetriesOnRateLimitThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatBody(`[{"id":"1","why":"ok"}]`))
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 2)
	_, err := client.Generate(context.Background(), "p", true)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts)
	}
	if len(*delays) != 2 {
		t.Fatalf("Expected 2 backoff delays, got %d", len(*delays))
	}
	if (*delays)[0] != 1*time.Second || (*delays)[1] != 2*time.Second {
		t.Errorf("Expected exponential delays 1s, 2s, got %v", *delays)
	}
	for i := 1; i < len(*delays); i++ {
		if (*delays)[i] < (*delays)[i-1] {
			t.Errorf("Delays must be non-decreasing: %v", *delays)
		}
	}
}

func TestClient_Generate_ExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 2)
	_, err := client.Generate(context.Background(), "p", true)

	if attempts != 3 {
		t.Errorf("Expected maxRetries+1 = 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Errorf("Expected ErrGenerationExhausted, got %v", err)
	}
}

func TestClient_Generate_ClientErrorFailsImmediately(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 2)
	_, err := client.Generate(context.Background(), "p", true)

	if err == nil {
		t.Fatal("Expected error on 400 response")
	}
	if attempts != 1 {
		t.Errorf("Client errors must not be retried, got %d attempts", attempts)
	}
	if len(*delays) != 0 {
		t.Errorf("No backoff expected for client errors, got %v", *delays)
	}
	if errors.Is(err, ErrGenerationExhausted) {
		t.Error("Immediate failure should not be marked as exhaustion")
	}
}

func TestClient_Generate_InvalidJSONIsRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(chatBody("I cannot answer that question."))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 1)
	_, err := client.Generate(context.Background(), "p", true)

	if attempts != 2 {
		t.Errorf("Invalid JSON should be retried, got %d attempts", attempts)
	}
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Errorf("Expected ErrGenerationExhausted, got %v", err)
	}
}

func TestClient_Generate_EmptyChoicesIsRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 1)
	_, err := client.Generate(context.Background(), "p", true)

	if attempts != 2 {
		t.Errorf("Empty choices should be retried, got %d attempts", attempts)
	}
	if err == nil {
		t.Error("Expected error after exhaustion")
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		expectJSON bool
		want       string
	}{
		{
			name:       "fenced json block",
			in:         "```json\n[{\"id\":\"42\",\"why\":\"Great\"}]\n```",
			expectJSON: true,
			want:       `[{"id":"42","why":"Great"}]`,
		},
		{
			name:       "prose around array",
			in:         `Here are my picks: [{"id":"1","why":"x"}] Hope that helps!`,
			expectJSON: true,
			want:       `[{"id":"1","why":"x"}]`,
		},
		{
			name:       "bare fences without json tag",
			in:         "```\n[1,2]\n```",
			expectJSON: true,
			want:       "[1,2]",
		},
		{
			name:       "plain text untouched",
			in:         "  OK  ",
			expectJSON: false,
			want:       "OK",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in, tc.expectJSON); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

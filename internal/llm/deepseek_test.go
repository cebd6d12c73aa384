package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatEnvelope(content string) string {
	env := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	b, _ := json.Marshal(env)
	return string(b)
}

func TestDeepSeekClient_Invoke(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Decode request body: %v", err)
		}
		_, _ = w.Write([]byte(chatEnvelope(`[{"Date":"01/02/2024"}]`)))
	}))
	defer server.Close()

	client, err := newDeepSeekClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("newDeepSeekClient failed: %v", err)
	}

	got, err := client.Invoke(context.Background(), "extract things")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != `[{"Date":"01/02/2024"}]` {
		t.Errorf("Invoke = %q, want raw content untouched", got)
	}

	if gotBody["model"] != "deepseek-chat" {
		t.Errorf("Request model = %v, want deepseek-chat", gotBody["model"])
	}
	if temp, ok := gotBody["temperature"].(float64); !ok || temp != 0 {
		t.Errorf("Request temperature = %v, want 0", gotBody["temperature"])
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Errorf("Request stream = %v, want false", gotBody["stream"])
	}
}

func TestDeepSeekClient_InvokeNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client, _ := newDeepSeekClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.Invoke(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error for non-200 status")
	}

	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("Expected *InvocationError, got %T: %v", err, err)
	}
	if invErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", invErr.StatusCode)
	}
	if !strings.Contains(invErr.Body, "rate limited") {
		t.Errorf("Body = %q, want response body preserved", invErr.Body)
	}
}

func TestDeepSeekClient_InvokeBadEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client, _ := newDeepSeekClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.Invoke(context.Background(), "prompt")
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("Expected *InvocationError for unparsable envelope, got %v", err)
	}
}

func TestDeepSeekClient_InvokeNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, _ := newDeepSeekClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.Invoke(context.Background(), "prompt")
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("Expected *InvocationError for empty choices, got %v", err)
	}
}

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
	}{
		{name: "deepseek", cfg: Config{Provider: "deepseek", APIKey: "k"}},
		{name: "gemini", cfg: Config{Provider: "Gemini", APIKey: "k"}},
		{name: "missing key", cfg: Config{Provider: "deepseek"}, wantErr: true},
		{name: "unknown provider", cfg: Config{Provider: "gpt9", APIKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && client == nil {
				t.Error("Expected non-nil client")
			}
		})
	}
}

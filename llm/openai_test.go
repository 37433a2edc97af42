package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "cryptodash/errors"

	"go.uber.org/zap"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *openAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newOpenAIProvider(openAIConfig{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		Model:      "gpt-4o",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, zap.NewNop())
}

func TestOpenAICreateMessage(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"The market is stable."}}]}`))
	})

	got, err := p.CreateMessage(context.Background(), "Analyze BTC")
	if err != nil {
		t.Fatalf("CreateMessage returned error: %v", err)
	}
	if got != "The market is stable." {
		t.Errorf("CreateMessage = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotReq.Model != "gpt-4o" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "Analyze BTC" {
		t.Errorf("unexpected request body: %+v", gotReq)
	}
}

func TestOpenAIRetriesOnServerError(t *testing.T) {
	attempts := 0
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	})

	if _, err := p.CreateMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("CreateMessage after retry returned error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestOpenAIBackoffStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	p := newOpenAIProvider(openAIConfig{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		Model:      "gpt-4o",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryDelay: 10 * time.Second,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.CreateMessage(ctx, "hi")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("CreateMessage with cancelled context should error")
	}
	if elapsed > 2*time.Second {
		t.Errorf("CreateMessage blocked %v after cancellation, want prompt return", elapsed)
	}
}

func TestOpenAIAuthenticationError(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := p.CreateMessage(context.Background(), "hi")
	if !apperrors.IsProviderAuthentication(err) {
		t.Errorf("error = %v, want ErrProviderAuthentication", err)
	}
}

func TestOpenAINoChoices(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := p.CreateMessage(context.Background(), "hi"); err == nil {
		t.Error("CreateMessage with no choices should error")
	}
}

func TestClassifyProviderError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want error
	}{
		{"auth", "invalid api key provided", apperrors.ErrProviderAuthentication},
		{"quota", "rate limit reached for requests", apperrors.ErrProviderQuota},
		{"connection", "dial tcp: connection refused", apperrors.ErrProviderConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyProviderError(errors.New(tt.msg), ProviderOpenAI)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyProviderError(%q) = %v, want wrapped %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyProviderErrorNil(t *testing.T) {
	if got := classifyProviderError(nil, ProviderOpenAI); got != nil {
		t.Errorf("classifyProviderError(nil) = %v, want nil", got)
	}
}

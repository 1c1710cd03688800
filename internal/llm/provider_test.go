package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcerrors "github.com/valpere/DressCodex/internal/errors"
	"github.com/valpere/DressCodex/internal/utils"
)

func TestParseJSON(t *testing.T) {
	type score struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}

	testCases := []struct {
		name    string
		content string
	}{
		{"plain", `[{"index":0,"score":0.9}]`},
		{"fenced", "```json\n[{\"index\":0,\"score\":0.9}]\n```"},
		{"bare fence", "```\n[{\"index\":0,\"score\":0.9}]\n```"},
		{"prose around", "Here you go:\n[{\"index\":0,\"score\":0.9}]\nHope that helps."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []score
			require.NoError(t, ParseJSON(tc.content, &got))
			require.Len(t, got, 1)
			assert.Equal(t, 0.9, got[0].Score)
		})
	}
}

func TestParseJSONObjectInProse(t *testing.T) {
	var got map[string]interface{}
	require.NoError(t, ParseJSON(`Sure! {"name": "Zara"} -- done`, &got))
	assert.Equal(t, "Zara", got["name"])
}

func TestParseJSONMalformed(t *testing.T) {
	var got []interface{}
	err := ParseJSON("I cannot help with that", &got)
	require.Error(t, err)
	assert.Equal(t, utils.ErrCodeMalformedResponse, utils.CodeOf(err))
}

func newChatServer(t *testing.T, status int, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.NotEmpty(t, body.Messages)

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-model",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var calls int32
	server := newChatServer(t, http.StatusOK, `{"ok":true}`, &calls)
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: server.URL + "/v1", APIKey: "test-key", Model: "test-model"})
	require.True(t, p.Available())

	resp, err := p.Generate(context.Background(), Request{SystemPrompt: "sys", UserPrompt: "hi", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIProviderNotConfigured(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{})
	assert.False(t, p.Available())

	_, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, utils.ErrCodeCapabilityUnavailable, utils.CodeOf(err))
}

func TestOpenAIProviderBreakerOpensOnErrors(t *testing.T) {
	var calls int32
	server := newChatServer(t, http.StatusInternalServerError, "", &calls)
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
		Model:   "test-model",
		Breaker: dcerrors.CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})

	for i := 0; i < 2; i++ {
		_, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
		require.Error(t, err)
		assert.Equal(t, utils.ErrCodeCapabilityFailed, utils.CodeOf(err))
	}

	_, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, utils.ErrCodeCapabilityUnavailable, utils.CodeOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, dcerrors.CircuitOpen, p.Breaker().GetState())
}

func TestOpenAIProviderRetriesTransientReplies(t *testing.T) {
	fastRetry := dcerrors.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, BackoffFactor: 2, MaxDelay: 5 * time.Millisecond}

	testCases := []struct {
		name          string
		failures      []int
		expectedCode  utils.ErrorCode
		expectedCalls int32
	}{
		{"recovers after 503", []int{http.StatusServiceUnavailable}, "", 2},
		{"recovers after 429", []int{http.StatusTooManyRequests, http.StatusBadGateway}, "", 3},
		{"gives up after max retries", []int{500, 500, 500, 500}, utils.ErrCodeCapabilityFailed, 3},
		{"client errors are final", []int{http.StatusBadRequest}, utils.ErrCodeCapabilityFailed, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&calls, 1))
				if n <= len(tc.failures) {
					w.WriteHeader(tc.failures[n-1])
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"model":   "test-model",
					"choices": []map[string]interface{}{{"message": map[string]string{"content": "ok"}}},
				})
			}))
			defer server.Close()

			p := NewOpenAIProvider(OpenAIConfig{
				BaseURL: server.URL + "/v1",
				APIKey:  "test-key",
				Model:   "test-model",
				Retry:   fastRetry,
				Breaker: dcerrors.CircuitBreakerConfig{MaxFailures: 10, ResetTimeout: time.Hour},
			})

			resp, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
			if tc.expectedCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp.Content)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.expectedCode, utils.CodeOf(err))
			}
			assert.Equal(t, tc.expectedCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestOpenAIProviderOpenBreakerStopsRetries(t *testing.T) {
	var calls int32
	server := newChatServer(t, http.StatusServiceUnavailable, "", &calls)
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
		Model:   "test-model",
		Retry:   dcerrors.RetryConfig{MaxRetries: 5, BaseDelay: time.Millisecond, BackoffFactor: 1, MaxDelay: time.Millisecond},
		Breaker: dcerrors.CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})

	_, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, utils.ErrCodeCapabilityUnavailable, utils.CodeOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

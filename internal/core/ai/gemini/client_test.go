package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"
	"ai-chef-service/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"RECIPE_START\nTITLE: Test\nRECIPE_END"}]}}]}`

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:          "test-key",
		Model:           "gemini-test",
		BaseURL:         baseURL,
		Temperature:     0.9,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
		RequestTimeout:  time.Second,
		MaxRetries:      2,
		BaseDelay:       5 * time.Millisecond,
		MaxTotalTime:    2 * time.Second,
	}
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	common.SetLogger(zap.New(core))
	t.Cleanup(func() { common.SetLogger(nil) })
	return logs
}

// attemptCount 讀取預設 registry 中指定結果的 LLM 呼叫次數
func attemptCount(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "ai_chef_llm_attempts_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get(APIKeyHeader))
		assert.Empty(t, r.URL.RawQuery)

		var req Request
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.Len(t, req.Contents, 1) {
			assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)
			assert.Equal(t, 40, req.GenerationConfig.TopK)
			assert.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	})

	client := NewClient(testConfig(srv.URL))
	text, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Contains(t, text, "TITLE: Test")
}

func TestGenerate_RetriesOverloaded(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"The model is overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		_, _ = w.Write([]byte(okBody))
	})

	client := NewClient(testConfig(srv.URL))
	text, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindOverloaded, apiErr.Kind)
}

func TestGenerate_FatalStatusNotRetried(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "API key not valid", apiErr.Message)
	assert.False(t, apiErr.Retryable())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_MalformedBody(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{not json`))
	})

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hello")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindMalformed, apiErr.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_ShapeDeviationReturnsEmpty(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			client := NewClient(testConfig(srv.URL))
			text, err := client.Generate(context.Background(), "hello")
			assert.NoError(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	for _, key := range []string{"", "your-gemini-api-key"} {
		cfg := testConfig(srv.URL)
		cfg.APIKey = key
		client := NewClient(cfg)

		assert.False(t, client.Configured())
		_, err := client.Generate(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerate_DeadlineAbortsBackoff(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	cfg := testConfig(srv.URL)
	cfg.BaseDelay = 2 * time.Second
	cfg.MaxTotalTime = 100 * time.Millisecond
	client := NewClient(cfg)

	start := time.Now()
	_, err := client.Generate(context.Background(), "hello")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrDeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, elapsed, time.Second)
}

func TestGenerate_NetworkErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(testConfig(baseURL))
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.True(t, apiErr.Retryable())
}

func TestGenerate_TransportErrorsDoNotExposeAPIKey(t *testing.T) {
	const secret = "SUPERSECRETKEY12345"
	logs := observeLogs(t)

	cfg := testConfig("http://127.0.0.1:1")
	cfg.APIKey = secret
	_, err := NewClient(cfg).Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.NotContains(t, entry.Message, secret)
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(value), secret, "log %q field %q", entry.Message, key)
		}
	}
}

func TestGenerate_LogsAPIErrorOnEmptyCandidates(t *testing.T) {
	logs := observeLogs(t)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	text, err := NewClient(testConfig(srv.URL)).Generate(context.Background(), "hello")

	require.NoError(t, err)
	assert.Empty(t, text)
	entries := logs.FilterMessage("AI response has no candidate text").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "quota exceeded", entries[0].ContextMap()["api_error"])
}

func TestGenerate_DeadlineDoesNotCountExtraAttempt(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	cfg := testConfig(srv.URL)
	cfg.BaseDelay = 2 * time.Second
	cfg.MaxTotalTime = 100 * time.Millisecond

	timeoutsBefore := attemptCount(t, metrics.OutcomeTimeout)
	overloadedBefore := attemptCount(t, metrics.OutcomeOverloaded)

	_, err := NewClient(cfg).Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrDeadlineExceeded)
	assert.Equal(t, timeoutsBefore, attemptCount(t, metrics.OutcomeTimeout))
	assert.Equal(t, overloadedBefore+1, attemptCount(t, metrics.OutcomeOverloaded))
}

func TestBackoff(t *testing.T) {
	client := NewClient(config.GeminiConfig{BaseDelay: time.Second})

	assert.Equal(t, time.Second, client.backoff(KindNetwork, 1))
	assert.Equal(t, 2*time.Second, client.backoff(KindNetwork, 2))
	assert.Equal(t, time.Second, client.backoff(KindOverloaded, 1))
	assert.Equal(t, 2*time.Second, client.backoff(KindOverloaded, 2))
	assert.Equal(t, 4*time.Second, client.backoff(KindOverloaded, 3))
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindHTTP, StatusCode: 404, Message: "model not found"}
	assert.Equal(t, "gemini http error (status 404): model not found", err.Error())
}

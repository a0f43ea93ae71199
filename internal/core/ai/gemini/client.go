package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"
	"ai-chef-service/internal/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIKeyHeader API Key 標頭
const APIKeyHeader = "x-goog-api-key"

// Client 生成式文字端點客戶端，內含重試、退避與整體時限
type Client struct {
	client *resty.Client
	config config.GeminiConfig
}

// NewClient 創建新的客戶端
func NewClient(cfg config.GeminiConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		config: cfg,
	}
}

// Model 返回使用中的模型名稱
func (c *Client) Model() string {
	return c.config.Model
}

// Configured API Key 是否可用
func (c *Client) Configured() bool {
	return c.config.HasAPIKey()
}

// Generate 送出 prompt 並返回第一個候選文字。
// 回應結構不符時返回空字串且 err 為 nil。
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		metrics.ObserveLLMAttempt(metrics.OutcomeUnconfigured)
		common.LogWarn("Gemini API key not configured, skipping AI call")
		return "", ErrNotConfigured
	}

	if c.config.MaxTotalTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.MaxTotalTime)
		defer cancel()
	}

	body := c.buildRequest(prompt)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", c.abort(err, lastErr)
		}

		start := time.Now()
		text, err := c.call(ctx, body)
		common.LogAICall(c.config.Model, attempt+1, time.Since(start), err)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// 呼叫途中整體時限到期
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", c.abort(ctxErr, lastErr)
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return "", err
		}
		if attempt == c.config.MaxRetries {
			break
		}

		delay := c.backoff(apiErr.Kind, attempt+1)
		common.LogInfo("Retrying AI request",
			zap.Int("retry", attempt+1),
			zap.String("reason", apiErr.Kind.String()),
			zap.Duration("delay", delay),
		)
		metrics.ObserveLLMRetry()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", c.abort(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.config.MaxRetries+1, lastErr)
}

func (c *Client) buildRequest(prompt string) *Request {
	return &Request{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     c.config.Temperature,
			TopP:            c.config.TopP,
			TopK:            c.config.TopK,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
	}
}

// backoff 傳輸錯誤線性遞增，503 指數遞增；retry 從 1 開始
func (c *Client) backoff(kind ErrorKind, retry int) time.Duration {
	if kind == KindOverloaded {
		return c.config.BaseDelay * time.Duration(1<<(retry-1))
	}
	return c.config.BaseDelay * time.Duration(retry)
}

func (c *Client) abort(ctxErr, lastErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		common.LogWarn("AI request aborted by overall deadline",
			zap.Duration("max_total_time", c.config.MaxTotalTime),
			zap.NamedError("last_error", lastErr),
		)
		return fmt.Errorf("%w (%s)", ErrDeadlineExceeded, c.config.MaxTotalTime)
	}
	return ctxErr
}

// call 執行單次 HTTP 呼叫並分類結果
func (c *Client) call(ctx context.Context, body *Request) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(APIKeyHeader, c.config.APIKey).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:generateContent", c.config.Model))
	if err != nil {
		kind := classifyTransport(err)
		if kind == KindNetwork {
			metrics.ObserveLLMAttempt(metrics.OutcomeTimeout)
		} else {
			metrics.ObserveLLMAttempt(metrics.OutcomeFatal)
		}
		return "", &Error{Kind: kind, Err: err}
	}

	switch {
	case resp.StatusCode() == http.StatusServiceUnavailable:
		metrics.ObserveLLMAttempt(metrics.OutcomeOverloaded)
		return "", &Error{
			Kind:       KindOverloaded,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
		}
	case resp.StatusCode() != http.StatusOK:
		metrics.ObserveLLMAttempt(metrics.OutcomeFatal)
		return "", &Error{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
		}
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		metrics.ObserveLLMAttempt(metrics.OutcomeFatal)
		return "", &Error{Kind: KindMalformed, StatusCode: resp.StatusCode(), Err: err}
	}

	text := result.Text()
	if text == "" {
		metrics.ObserveLLMAttempt(metrics.OutcomeParseMiss)
		fields := []zap.Field{zap.Int("candidates", len(result.Candidates))}
		if result.Error != nil {
			fields = append(fields, zap.String("api_error", result.Error.Message))
		}
		common.LogWarn("AI response has no candidate text", fields...)
		return "", nil
	}

	metrics.ObserveLLMAttempt(metrics.OutcomeSuccess)
	return text, nil
}

func classifyTransport(err error) ErrorKind {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

func errorMessage(body []byte) string {
	var parsed Response
	if err := common.ParseJSONBytes(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	return common.Truncate(string(body), 200)
}

package gemini

import (
	"errors"
	"fmt"
)

// Part 文字片段
type Part struct {
	Text string `json:"text"`
}

// Content 對話內容
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// Request 表示 generateContent 請求
type Request struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Candidate 候選回應
type Candidate struct {
	Content Content `json:"content"`
}

// APIErrorBody 回應中的 error 欄位
type APIErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Response 表示 generateContent 回應
type Response struct {
	Candidates []Candidate   `json:"candidates"`
	Error      *APIErrorBody `json:"error,omitempty"`
}

// Text 取出 candidates[0].content.parts[0].text，結構不符時返回空字串
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// ErrorKind 錯誤分類
type ErrorKind int

const (
	// KindNetwork 連線或讀取逾時等傳輸錯誤，可重試
	KindNetwork ErrorKind = iota
	// KindOverloaded HTTP 503，可重試
	KindOverloaded
	// KindHTTP 其他 HTTP 錯誤狀態
	KindHTTP
	// KindMalformed 回應不是合法 JSON
	KindMalformed
	// KindUnknown 無法辨識的錯誤
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindOverloaded:
		return "overloaded"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error 單次呼叫錯誤
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gemini %s error", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 返回原始錯誤
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable 是否可重試
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindOverloaded
}

var (
	// ErrNotConfigured API Key 未設定或為佔位符
	ErrNotConfigured = errors.New("gemini api key not configured")
	// ErrDeadlineExceeded 超過整體時間上限
	ErrDeadlineExceeded = errors.New("gemini overall deadline exceeded")
	// ErrRetriesExhausted 重試次數用盡
	ErrRetriesExhausted = errors.New("gemini retries exhausted")
)

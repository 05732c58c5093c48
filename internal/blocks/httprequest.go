package blocks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BlockTypeHTTPRequest — тег типа блока HTTP-запроса.
const BlockTypeHTTPRequest = "HTTPRequest"

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи входов HTTP-блока.
const (
	inputMethod  = "method"
	inputURL     = "url"
	inputHeaders = "headers"
	inputBody    = "body"
)

// HTTPRequest — блок произвольного HTTP-запроса к внешнему API.
//
// Входы:
//
//	{
//	    "method": "POST",
//	    "url": "https://api.example.com/data",
//	    "headers": {"Authorization": "Bearer {{auth.token}}"},
//	    "body": "{\"q\": \"{{input.text}}\"}"
//	}
//
// Выходы:
//
//	{"status_code": "200", "body": "..."}
type HTTPRequest struct {
	client *http.Client
}

// NewHTTPRequest создаёт новый HTTPRequest.
func NewHTTPRequest() *HTTPRequest {
	return &HTTPRequest{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Type возвращает тег типа блока.
func (b *HTTPRequest) Type() string {
	return BlockTypeHTTPRequest
}

// Run выполняет HTTP-запрос.
func (b *HTTPRequest) Run(ctx context.Context, req *Request) (*Result, error) {
	url := InputString(req.Input, inputURL)
	if url == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidInput, BlockTypeHTTPRequest)
	}

	method := strings.ToUpper(InputString(req.Input, inputMethod))
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body := InputString(req.Input, inputBody); body != "" {
		bodyReader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, value := range InputMapString(req.Input, inputHeaders) {
		httpReq.Header.Set(key, value)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return Plain(map[string]string{
		"status_code": strconv.Itoa(resp.StatusCode),
		"body":        string(respBody),
	}), nil
}

package blocks

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// BlockTypeURLStatusCheck — тег типа блока проверки доступности URL.
const BlockTypeURLStatusCheck = "UrlStatusCheck"

// Ключи входов блока проверки URL.
const (
	inputCheckURL     = "url"
	inputExpectedCode = "code"
)

// URLStatusCheck — условный блок: делает GET-запрос и сравнивает код
// ответа с ожидаемым. Ветка true — код совпал, false — нет (в том
// числе когда запрос вообще не удался).
//
// Входы:
//
//	{"url": "https://example.com/health", "code": 200}
//
// Выходы:
//
//	{"code": "200", "url": "https://example.com/health"}
type URLStatusCheck struct {
	client *http.Client
}

// NewURLStatusCheck создаёт новый URLStatusCheck.
func NewURLStatusCheck() *URLStatusCheck {
	return &URLStatusCheck{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Type возвращает тег типа блока.
func (b *URLStatusCheck) Type() string {
	return BlockTypeURLStatusCheck
}

// Run выполняет проверку.
func (b *URLStatusCheck) Run(ctx context.Context, req *Request) (*Result, error) {
	url := InputString(req.Input, inputCheckURL)
	if url == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidInput, BlockTypeURLStatusCheck)
	}

	expected := InputInt(req.Input, inputExpectedCode)
	if expected == 0 {
		expected = http.StatusOK
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	code := 0
	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockCancelled, ctx.Err())
		}
		// Недоступный хост — не фатальная ошибка, а ветка false.
	} else {
		resp.Body.Close()
		code = resp.StatusCode
	}

	return Branched(code == expected, map[string]string{
		"code": strconv.Itoa(code),
		"url":  url,
	}), nil
}

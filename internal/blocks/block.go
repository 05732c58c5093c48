package blocks

import (
	"context"
	"errors"
	"strconv"
)

// Ошибки блоков.
var (
	// ErrBlockNotFound — тип блока не найден в реестре.
	ErrBlockNotFound = errors.New("block type not found")

	// ErrInvalidInput — невалидные входные данные блока.
	ErrInvalidInput = errors.New("invalid block input")

	// ErrBlockCancelled — выполнение блока отменено.
	ErrBlockCancelled = errors.New("block execution cancelled")
)

// Handler — интерфейс обработчика типа блока.
//
// Каждый тип блока (условие, HTTP-запрос, вебхук) реализует этот
// интерфейс. Обработчик получает уже отрезолвленные входы (без
// placeholder-ов) и возвращает выходы и, для условных блоков, исход
// ветвления.
//
// Обработчики должны быть идемпотентны насколько это возможно:
// доставка продолжений at-least-once, после сбоя шаг выполняется
// повторно.
type Handler interface {
	// Type возвращает тег типа блока.
	Type() string

	// Run выполняет блок. Обработчик должен уважать ctx.Done()
	// для graceful shutdown.
	Run(ctx context.Context, req *Request) (*Result, error)
}

// Request — входные данные для выполнения блока.
type Request struct {
	// NodeID — идентификатор узла в графе.
	NodeID string

	// Input — входы блока с уже подставленными значениями
	// placeholder-ов.
	Input map[string]any
}

// Result — результат выполнения блока.
//
// Обычный блок возвращает только Outputs; условный блок дополнительно
// заполняет Branch — взятую ветку для pruning-а.
type Result struct {
	// Outputs — выходные значения блока; мержатся в outputs-карту
	// run-а под ключами "{nodeId}.{key}".
	Outputs map[string]string

	// Branch — исход условного блока; nil для обычных блоков.
	Branch *bool
}

// Plain создаёт результат обычного блока.
func Plain(outputs map[string]string) *Result {
	if outputs == nil {
		outputs = make(map[string]string)
	}
	return &Result{Outputs: outputs}
}

// Branched создаёт результат условного блока.
func Branched(outcome bool, outputs map[string]string) *Result {
	if outputs == nil {
		outputs = make(map[string]string)
	}
	return &Result{Outputs: outputs, Branch: &outcome}
}

// InputString извлекает строковое значение из входов.
func InputString(input map[string]any, key string) string {
	if v, ok := input[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// InputInt извлекает числовое значение из входов.
// Строки тоже принимаются: после подстановки placeholder-ов числа
// приходят строками.
func InputInt(input map[string]any, key string) int {
	switch v := input[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// InputBool извлекает булево значение из входов.
func InputBool(input map[string]any, key string, defaultVal bool) bool {
	switch v := input[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// InputMapString извлекает map[string]string из входов.
func InputMapString(input map[string]any, key string) map[string]string {
	v, ok := input[key]
	if !ok {
		return nil
	}

	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			if s, ok := item.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

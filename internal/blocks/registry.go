package blocks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр типов блоков.
//
// Позволяет регистрировать и получать обработчики по тегу типа.
// Потокобезопасен.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными блоками.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewManualTrigger())
	r.Register(NewTextInput())
	r.Register(NewIfCondition())
	r.Register(NewHTTPRequest())
	r.Register(NewURLStatusCheck())
	r.Register(NewSlackWebhook())

	return r
}

// Register регистрирует обработчик в реестре.
// Обработчик с тем же типом перезаписывается.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Type()] = h
}

// Get возвращает обработчик по тегу типа.
// Возвращает ErrBlockNotFound, если тип не зарегистрирован.
func (r *Registry) Get(blockType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, exists := r.handlers[blockType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, blockType)
	}

	return h, nil
}

// Has проверяет, зарегистрирован ли тип.
func (r *Registry) Has(blockType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.handlers[blockType]
	return exists
}

// Types возвращает список всех зарегистрированных типов блоков.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count возвращает количество зарегистрированных типов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

package engine

import (
	"errors"
	"fmt"
)

// Ошибки валидации definition.
var (
	// ErrEmptyDefinition — definition не содержит узлов.
	ErrEmptyDefinition = errors.New("workflow definition has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEdgeNode — ребро ссылается на несуществующий узел.
	ErrUnknownEdgeNode = errors.New("edge references unknown node")

	// ErrGraphNotAcyclic — граф содержит цикл, план не строится.
	ErrGraphNotAcyclic = errors.New("workflow graph is not acyclic")
)

// Kind-ы фатальных ошибок. Публикуются в failure-событии прогресса
// и сохраняются в Run.Error, поэтому имена — часть внешнего контракта.
const (
	KindGraphNotAcyclic     = "GraphNotAcyclicError"
	KindUnresolvedReference = "UnresolvedReferenceError"
	KindUnknownBlockType    = "UnknownBlockTypeError"
	KindHandlerExecution    = "HandlerExecutionError"
)

// UnresolvedReferenceError — placeholder ссылается на ключ, которого
// нет в outputs. Это всегда фатально: оставить literal-токен в данных,
// уходящих наружу, значит молча испортить результат.
type UnresolvedReferenceError struct {
	// NodeID — узел, чьи входы резолвились.
	NodeID string

	// Placeholder — literal-текст placeholder-а, например "{{c.z}}".
	Placeholder string
}

// Error реализует интерфейс error.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("node %s: unresolved reference %s", e.NodeID, e.Placeholder)
}

// UnknownBlockTypeError — тег типа блока не зарегистрирован в реестре.
type UnknownBlockTypeError struct {
	NodeID    string
	BlockType string
}

// Error реализует интерфейс error.
func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("node %s: unknown block type %q", e.NodeID, e.BlockType)
}

// HandlerExecutionError — обработчик блока вернул ошибку.
// Ошибка обработчика проходит без изменений (Unwrap); движок не делает
// retry — повторные попытки внутри обработчика вне зоны движка.
type HandlerExecutionError struct {
	NodeID string
	Err    error
}

// Error реализует интерфейс error.
func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("node %s: handler failed: %v", e.NodeID, e.Err)
}

// Unwrap возвращает исходную ошибку обработчика.
func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}

// ErrorKind классифицирует фатальную ошибку для failure-события.
func ErrorKind(err error) string {
	var unresolved *UnresolvedReferenceError
	var unknown *UnknownBlockTypeError

	switch {
	case errors.Is(err, ErrGraphNotAcyclic):
		return KindGraphNotAcyclic
	case errors.As(err, &unresolved):
		return KindUnresolvedReference
	case errors.As(err, &unknown):
		return KindUnknownBlockType
	default:
		return KindHandlerExecution
	}
}

// ValidationError — ошибка валидации definition с контекстом.
type ValidationError struct {
	NodeID  string // ID узла, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

package blocks

import "context"

// BlockTypeManualTrigger — тег типа блока ручного запуска.
const BlockTypeManualTrigger = "ManualTriggerBlock"

// ManualTrigger — точка входа workflow, запускаемого вручную.
//
// Блок ничего не делает: он существует, чтобы графу было с чего
// начинаться, и чтобы последующие узлы могли на него ссылаться.
type ManualTrigger struct{}

// NewManualTrigger создаёт новый ManualTrigger.
func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{}
}

// Type возвращает тег типа блока.
func (b *ManualTrigger) Type() string {
	return BlockTypeManualTrigger
}

// Run выполняет блок.
func (b *ManualTrigger) Run(_ context.Context, _ *Request) (*Result, error) {
	return Plain(nil), nil
}

package blocks

import "context"

// BlockTypeTextInput — тег типа блока текстового входа.
const BlockTypeTextInput = "TextInputWebhook"

// Ключи входов текстового блока.
const (
	inputText = "text"
)

// TextInput — блок, публикующий статический текст как выход.
//
// Используется как источник данных для placeholder-ов: последующие
// узлы ссылаются на него через {{nodeId.text}}.
//
// Входы:
//
//	{"text": "hello"}
//
// Выходы:
//
//	{"text": "hello"}
type TextInput struct{}

// NewTextInput создаёт новый TextInput.
func NewTextInput() *TextInput {
	return &TextInput{}
}

// Type возвращает тег типа блока.
func (b *TextInput) Type() string {
	return BlockTypeTextInput
}

// Run выполняет блок.
func (b *TextInput) Run(_ context.Context, req *Request) (*Result, error) {
	return Plain(map[string]string{
		inputText: InputString(req.Input, inputText),
	}), nil
}

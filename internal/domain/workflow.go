package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow — сохранённое определение рабочего процесса.
//
// Workflow — это "чертёж" автоматизации: набор блоков (nodes) и
// зависимостей между ними (edges). Каждый запуск (Run) выполняет
// определение целиком, от корневых узлов до листьев.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	// Name — имя workflow (например, "url-monitor", "content-refresh").
	Name string `json:"name"`

	// UserID — владелец workflow.
	UserID string `json:"user_id"`

	// Definition — граф узлов и рёбер.
	Definition Definition `json:"definition"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения определения.
	UpdatedAt time.Time `json:"updated_at"`
}

// Definition — граф workflow: узлы + рёбра.
//
// Definition неизменяемо после валидации: планировщик строит по нему
// очередь выполнения, сам граф при выполнении не модифицируется.
// Wire-формат — camelCase, его же использует фронтенд-редактор.
type Definition struct {
	// Nodes — узлы графа. Порядок объявления значим: при равной
	// топологической глубине узлы выполняются в порядке объявления.
	Nodes []Node `json:"nodes"`

	// Edges — направленные зависимости между узлами.
	Edges []Edge `json:"edges"`
}

// Node — экземпляр блока внутри workflow.
type Node struct {
	// ID — уникальный идентификатор узла в рамках definition.
	// Используется в placeholder-ссылках: {{nodeId.key}}.
	ID string `json:"id"`

	// Block — спецификация блока: тип + объявленные входы.
	Block Block `json:"block"`
}

// Block — единица работы с объявленной схемой входов.
type Block struct {
	// Type — тег типа блока: "IfCondition", "UrlStatusCheck",
	// "SlackWebhook" и т.д. По тегу реестр находит обработчик.
	Type string `json:"type"`

	// Input — объявленные входные поля. Строковые значения могут
	// содержать placeholder-ы {{nodeId.key}}, которые резолвятся
	// из выходов уже выполненных узлов. Нестроковые значения
	// передаются обработчику как есть.
	Input map[string]any `json:"input"`
}

// Edge — направленная зависимость между двумя узлами.
type Edge struct {
	// Source — id узла-источника.
	Source string `json:"source"`

	// Target — id зависимого узла.
	Target string `json:"target"`

	// SourceHandle — метка ветки условного узла ("true"/"false").
	// Пустая метка = безусловная зависимость.
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Метки веток условного узла.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// BranchHandle возвращает метку ветки для исхода условного узла.
func BranchHandle(outcome bool) string {
	if outcome {
		return HandleTrue
	}
	return HandleFalse
}

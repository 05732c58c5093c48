package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Cascade/internal/domain"
)

// Status — состояние машины диспетчеризации одного run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → MERGING → PENDING (очередь не пуста)
//	                            ↘ TERMINAL (очередь пуста)
//	любой нефинальный → FAILED (фатальная ошибка шага)
type Status string

const (
	// StatusPending — очередь не пуста, следующий узел готов к шагу.
	StatusPending Status = "PENDING"

	// StatusRunning — голова очереди резолвится и выполняется.
	StatusRunning Status = "RUNNING"

	// StatusMerging — выходы узла мержатся, применяется pruning.
	StatusMerging Status = "MERGING"

	// StatusTerminal — очередь опустела, run завершён успешно.
	StatusTerminal Status = "TERMINAL"

	// StatusFailed — шаг упал с фатальной ошибкой; уже смерженные
	// outputs остаются видимыми, отката нет.
	StatusFailed Status = "FAILED"
)

// IsTerminal возвращает true для финальных состояний.
func (s Status) IsTerminal() bool {
	return s == StatusTerminal || s == StatusFailed
}

// State — полное сериализуемое состояние выполнения одного run.
//
// State создаётся планировщиком (Plan), мутируется шаг за шагом циклом
// диспетчеризации и уничтожается когда очередь пустеет или шаг падает.
// Сериализуемость — ключевое свойство: между шагами State целиком
// публикуется во внешнюю очередь, поэтому продолжение может выполнить
// любой процесс, а падение между шагами теряет максимум текущий шаг
// (at-least-once; обработчики обязаны переживать повторный вызов).
//
// Queue хранит полные Node (а не только id): для выполнения узла нужна
// спецификация блока, а definition на стороне потребителя недоступно.
type State struct {
	// WorkflowID — id workflow; им же маршрутизируются события прогресса.
	WorkflowID string `json:"workflowId"`

	// UserID — от чьего имени выполняется run.
	UserID string `json:"userId"`

	// RunID — id операционной записи run (для корреляции и отмены).
	RunID string `json:"runId"`

	// Queue — оставшиеся узлы в топологическом порядке.
	// Инвариант: каждый id встречается не более одного раза.
	Queue []domain.Node `json:"queue"`

	// Outputs — карта "{nodeId}.{key}" → значение, append-only.
	// Ключи не перезаписываются: каждый узел выполняется один раз.
	Outputs map[string]string `json:"outputs"`

	// Edges — копия рёбер definition для pruning-а веток.
	Edges []domain.Edge `json:"edges"`

	// Status — текущее состояние машины диспетчеризации.
	Status Status `json:"status"`
}

// Remaining возвращает количество узлов, оставшихся в очереди.
func (s *State) Remaining() int {
	return len(s.Queue)
}

// Head возвращает голову очереди, не извлекая её.
func (s *State) Head() *domain.Node {
	if len(s.Queue) == 0 {
		return nil
	}
	return &s.Queue[0]
}

// pop извлекает голову очереди, сохраняя относительный порядок хвоста.
func (s *State) pop() domain.Node {
	node := s.Queue[0]
	s.Queue = s.Queue[1:]
	return node
}

// merge добавляет выходы узла в Outputs под ключами "{nodeId}.{field}".
// Коллизий не бывает: узел извлекается из очереди не более одного раза.
func (s *State) merge(nodeID string, outputs map[string]string) {
	for field, value := range outputs {
		s.Outputs[OutputKey(nodeID, field)] = value
	}
}

// Prune убирает из очереди прямые цели не взятой ветки условного узла.
//
// Среди рёбер с source == nodeID выбираются те, чья метка НЕ совпадает
// с меткой взятой ветки ("true"/"false"), и их target-ы удаляются из
// очереди; порядок оставшихся узлов сохраняется. Ребро без метки тоже
// не совпадает со взятой меткой и потому обрезается.
//
// Pruning одношаговый: удаляются только прямые target-ы, не их потомки.
// Потомок, достижимый только через обрезанный узел, остаётся в очереди
// и упадёт с UnresolvedReferenceError, когда его входы сошлются на
// выходы обрезанного предка. Это зафиксированное поведение, не баг.
//
// Возвращает id удалённых узлов.
func (s *State) Prune(nodeID string, outcome bool) []string {
	taken := domain.BranchHandle(outcome)

	prune := make(map[string]bool)
	for _, edge := range s.Edges {
		if edge.Source != nodeID {
			continue
		}
		if edge.SourceHandle != taken {
			prune[edge.Target] = true
		}
	}

	if len(prune) == 0 {
		return nil
	}

	kept := s.Queue[:0]
	var removed []string
	for _, node := range s.Queue {
		if prune[node.ID] {
			removed = append(removed, node.ID)
			continue
		}
		kept = append(kept, node)
	}
	s.Queue = kept

	return removed
}

// Marshal сериализует State для публикации во внешнюю очередь.
func (s *State) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// UnmarshalState восстанавливает State из сообщения продолжения.
func UnmarshalState(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if state.Outputs == nil {
		state.Outputs = make(map[string]string)
	}
	return &state, nil
}

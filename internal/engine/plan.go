package engine

import (
	"fmt"
	"sort"

	"github.com/shaiso/Cascade/internal/domain"
)

// PlanRequest — входные данные планировщика.
type PlanRequest struct {
	// WorkflowID — id workflow, которому принадлежит run.
	WorkflowID string

	// UserID — от чьего имени создаётся run.
	UserID string

	// RunID — id операционной записи run.
	RunID string

	// Definition — граф узлов и рёбер.
	Definition domain.Definition
}

// Plan валидирует definition и строит начальный State: очередь узлов
// в топологическом порядке, пустая outputs-карта, статус PENDING.
//
// Порядок детерминирован: при нескольких одновременно готовых узлах
// первым идёт объявленный раньше в definition. Это делает план
// воспроизводимым — один и тот же definition всегда даёт одну и ту же
// очередь.
//
// Цикл в графе — ErrGraphNotAcyclic ещё до выполнения чего-либо.
func Plan(req PlanRequest) (*State, error) {
	def := req.Definition

	if err := validate(def); err != nil {
		return nil, err
	}

	order, err := topoSort(def)
	if err != nil {
		return nil, err
	}

	edges := make([]domain.Edge, len(def.Edges))
	copy(edges, def.Edges)

	return &State{
		WorkflowID: req.WorkflowID,
		UserID:     req.UserID,
		RunID:      req.RunID,
		Queue:      order,
		Outputs:    make(map[string]string),
		Edges:      edges,
		Status:     StatusPending,
	}, nil
}

// validate проверяет структурную корректность definition.
func validate(def domain.Definition) error {
	if len(def.Nodes) == 0 {
		return NewValidationError("", "nodes", "workflow definition has no nodes", ErrEmptyDefinition)
	}

	seen := make(map[string]bool, len(def.Nodes))
	for _, node := range def.Nodes {
		if node.ID == "" {
			return NewValidationError("", "id", "node has empty ID", ErrEmptyNodeID)
		}
		if seen[node.ID] {
			return NewValidationError(node.ID, "id",
				fmt.Sprintf("duplicate node ID %q", node.ID), ErrDuplicateNodeID)
		}
		seen[node.ID] = true
	}

	for _, edge := range def.Edges {
		if !seen[edge.Source] {
			return NewValidationError(edge.Source, "source",
				fmt.Sprintf("edge source %q does not exist", edge.Source), ErrUnknownEdgeNode)
		}
		if !seen[edge.Target] {
			return NewValidationError(edge.Target, "target",
				fmt.Sprintf("edge target %q does not exist", edge.Target), ErrUnknownEdgeNode)
		}
	}

	return nil
}

// topoSort строит топологический порядок узлов алгоритмом Кана.
// Список готовых узлов держится отсортированным по индексу объявления,
// что и даёт детерминированный tie-break.
func topoSort(def domain.Definition) ([]domain.Node, error) {
	index := make(map[string]int, len(def.Nodes))
	for i, node := range def.Nodes {
		index[node.ID] = i
	}

	indegree := make(map[string]int, len(def.Nodes))
	successors := make(map[string][]string, len(def.Nodes))
	for _, edge := range def.Edges {
		indegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	var ready []int
	for i, node := range def.Nodes {
		if indegree[node.ID] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	order := make([]domain.Node, 0, len(def.Nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		node := def.Nodes[i]
		order = append(order, node)

		for _, succ := range successors[node.ID] {
			indegree[succ]--
			if indegree[succ] == 0 {
				j := index[succ]
				at := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[at+1:], ready[at:])
				ready[at] = j
			}
		}
	}

	if len(order) != len(def.Nodes) {
		return nil, ErrGraphNotAcyclic
	}

	return order, nil
}

package blocks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// BlockTypeIfCondition — тег типа условного блока.
const BlockTypeIfCondition = "IfCondition"

// Ключи входов условного блока.
const (
	inputValueOne = "valueOne"
	inputOperator = "operator"
	inputValueTwo = "valueTwo"
)

// IfCondition — условный блок: сравнивает два значения и выбирает
// ветку. Рёбра из такого узла помечаются "true"/"false"; цели рёбер
// не взятой ветки обрезаются из очереди.
//
// Входы:
//
//	{"valueOne": "{{check.code}}", "operator": "==", "valueTwo": "200"}
//
// Операторы: ==, !=, <, <=, >, >=. Если оба значения парсятся как
// числа, сравнение числовое, иначе лексикографическое.
//
// Выходы:
//
//	{"result": "true"}
type IfCondition struct{}

// NewIfCondition создаёт новый IfCondition.
func NewIfCondition() *IfCondition {
	return &IfCondition{}
}

// Type возвращает тег типа блока.
func (b *IfCondition) Type() string {
	return BlockTypeIfCondition
}

// Run выполняет блок.
func (b *IfCondition) Run(_ context.Context, req *Request) (*Result, error) {
	one := InputString(req.Input, inputValueOne)
	two := InputString(req.Input, inputValueTwo)
	op := strings.TrimSpace(InputString(req.Input, inputOperator))

	outcome, err := compare(one, op, two)
	if err != nil {
		return nil, err
	}

	return Branched(outcome, map[string]string{
		"result": strconv.FormatBool(outcome),
	}), nil
}

// compare сравнивает два значения оператором op.
func compare(one, op, two string) (bool, error) {
	// Числовое сравнение, если обе стороны — числа.
	n1, err1 := strconv.ParseFloat(one, 64)
	n2, err2 := strconv.ParseFloat(two, 64)
	numeric := err1 == nil && err2 == nil

	switch op {
	case "==":
		if numeric {
			return n1 == n2, nil
		}
		return one == two, nil
	case "!=":
		if numeric {
			return n1 != n2, nil
		}
		return one != two, nil
	case "<":
		if numeric {
			return n1 < n2, nil
		}
		return one < two, nil
	case "<=":
		if numeric {
			return n1 <= n2, nil
		}
		return one <= two, nil
	case ">":
		if numeric {
			return n1 > n2, nil
		}
		return one > two, nil
	case ">=":
		if numeric {
			return n1 >= n2, nil
		}
		return one >= two, nil
	default:
		return false, fmt.Errorf("%w: %s: unknown operator %q", ErrInvalidInput, BlockTypeIfCondition, op)
	}
}

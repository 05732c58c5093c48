package engine

import (
	"regexp"
	"strings"
)

// placeholderPattern — синтаксис ссылки на выход другого узла:
// {{nodeId.key}}, обе части из [A-Za-z0-9_-]+.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\.([A-Za-z0-9_-]+)\}\}`)

// OutputKey возвращает ключ outputs-карты для выхода узла: "{nodeId}.{field}".
func OutputKey(nodeID, field string) string {
	return nodeID + "." + field
}

// ResolveInputs резолвит placeholder-ы во входных полях узла по текущей
// outputs-карте.
//
// Правила:
//   - строковое поле: каждое вхождение {{nodeId.key}} заменяется значением
//     outputs["nodeId.key"]; поле может содержать несколько разных
//     placeholder-ов, каждый резолвится независимо
//   - нестроковое поле проходит без изменений
//   - поле без placeholder-ов возвращается как есть (идемпотентность)
//
// Отсутствующий ключ — фатальная UnresolvedReferenceError с literal-текстом
// placeholder-а; топологический порядок гарантирует, что для корректной
// (не обрезанной pruning-ом) зависимости ключ уже смержен.
func ResolveInputs(nodeID string, input map[string]any, outputs map[string]string) (map[string]any, error) {
	resolved := make(map[string]any, len(input))

	for field, value := range input {
		s, ok := value.(string)
		if !ok {
			resolved[field] = value
			continue
		}

		r, err := resolveString(nodeID, s, outputs)
		if err != nil {
			return nil, err
		}
		resolved[field] = r
	}

	return resolved, nil
}

// resolveString заменяет все placeholder-ы в одной строке.
func resolveString(nodeID, value string, outputs map[string]string) (string, error) {
	matches := placeholderPattern.FindAllStringSubmatch(value, -1)

	for _, m := range matches {
		literal := m[0]
		key := OutputKey(m[1], m[2])

		replacement, ok := outputs[key]
		if !ok {
			return "", &UnresolvedReferenceError{NodeID: nodeID, Placeholder: literal}
		}

		value = strings.ReplaceAll(value, literal, replacement)
	}

	return value, nil
}

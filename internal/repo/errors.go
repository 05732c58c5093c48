package repo

import "errors"

// Ошибки уровня хранилища. Обработчики API транслируют их в HTTP-коды,
// не зная деталей SQL.
var (
	// ErrNotFound — запрошенной записи нет.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState — запись существует, но операция несовместима
	// с её текущим статусом (например, отмена финального run-а).
	ErrInvalidState = errors.New("invalid state")
)

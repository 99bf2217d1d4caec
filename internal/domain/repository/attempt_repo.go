package repository

// AttemptRepository определяет методы для работы со счётчиком начатых попыток.
// Счётчик живёт отдельно от записей результатов и никогда не уменьшается:
// он отслеживает именно начатые попытки, а не завершённые.
type AttemptRepository interface {
	// IncrementWithCap атомарно увеличивает счётчик пользователя, если текущее
	// значение меньше max. Возвращает итоговое значение счётчика и признак
	// того, что инкремент произошёл. При достижении лимита состояние
	// хранилища не меняется.
	IncrementWithCap(userID string, max int) (int64, bool, error)

	// GetCount возвращает текущее значение счётчика.
	// Возвращает apperrors.ErrNotFound, если счётчика для пользователя нет.
	GetCount(userID string) (int64, error)
}

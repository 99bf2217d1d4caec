package service

import "errors"

// Ошибки уровня сервисов
var (
	// ErrAttemptLimitReached возвращается, когда пользователь уже начал
	// максимально допустимое число попыток. Счётчик при этом не меняется.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
)

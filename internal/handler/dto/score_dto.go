package dto

// BestScoreEntry представляет лучший результат одного пользователя:
// запись с минимальным ключом (moves, timeMs, createdAt) среди всех его
// прохождений. Именно этот список попадает в кеш лидерборда.
type BestScoreEntry struct {
	UserID         string `json:"userId"`         // Идентификатор пользователя (как прислал клиент)
	Nickname       string `json:"nickname"`       // Ник из лучшей записи
	Moves          int    `json:"moves"`          // Количество ходов
	TimeMs         int64  `json:"timeMs"`         // Время прохождения в миллисекундах
	CreatedAt      int64  `json:"createdAt"`      // Время приёма записи (мс Unix-эпохи)
	CompletedCount int64  `json:"completedCount"` // Сколько результатов пользователь сдал всего
}

// LeaderboardRow представляет строку ответа лидерборда.
// AttemptsCount никогда не кешируется: счётчик попыток меняется независимо
// от сданных результатов и подмешивается к каждому ответу заново.
type LeaderboardRow struct {
	BestScoreEntry
	AttemptsCount int64 `json:"attemptsCount"` // Сколько попыток пользователь начал
}

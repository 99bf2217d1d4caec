package service

import (
	"sort"

	"github.com/yourusername/puzzle-api/internal/domain/entity"
	"github.com/yourusername/puzzle-api/internal/handler/dto"
)

const (
	// DefaultLeaderboardLimit используется при отсутствующем или некорректном limit
	DefaultLeaderboardLimit = 50
	// MaxLeaderboardLimit — верхняя граница размера выборки
	MaxLeaderboardLimit = 100
)

// clampLimit приводит запрошенный размер лидерборда к диапазону [1, 100].
// Некорректные значения заменяются значением по умолчанию.
func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// rankKeyLess сравнивает два ключа сортировки (moves, timeMs, createdAt).
// Меньше ходов — лучше; при равенстве быстрее — лучше; при равенстве
// времени лучше более ранняя запись.
func rankKeyLess(aMoves int, aTimeMs, aCreatedAt int64, bMoves int, bTimeMs, bCreatedAt int64) bool {
	if aMoves != bMoves {
		return aMoves < bMoves
	}
	if aTimeMs != bTimeMs {
		return aTimeMs < bTimeMs
	}
	return aCreatedAt < bCreatedAt
}

// computeTopN выбирает лучший результат каждого пользователя и возвращает
// до limit записей, отсортированных по возрастанию ключа
// (moves, timeMs, createdAt). Функция чистая: входной набор не меняется.
// При полном совпадении ключа у двух записей пользователя побеждает первая
// встреченная (порядок чтения из хранилища стабилен по id).
func computeTopN(scores []entity.Score, limit int) []dto.BestScoreEntry {
	limit = clampLimit(limit)

	best := make(map[string]*dto.BestScoreEntry)
	for _, s := range scores {
		cur, ok := best[s.UserID]
		if !ok {
			best[s.UserID] = &dto.BestScoreEntry{
				UserID:         s.UserID,
				Nickname:       s.Nickname,
				Moves:          s.Moves,
				TimeMs:         s.TimeMs,
				CreatedAt:      s.CreatedAt,
				CompletedCount: 1,
			}
			continue
		}

		cur.CompletedCount++
		if rankKeyLess(s.Moves, s.TimeMs, s.CreatedAt, cur.Moves, cur.TimeMs, cur.CreatedAt) {
			cur.Nickname = s.Nickname
			cur.Moves = s.Moves
			cur.TimeMs = s.TimeMs
			cur.CreatedAt = s.CreatedAt
		}
	}

	entries := make([]dto.BestScoreEntry, 0, len(best))
	for _, e := range best {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		return rankKeyLess(a.Moves, a.TimeMs, a.CreatedAt, b.Moves, b.TimeMs, b.CreatedAt)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

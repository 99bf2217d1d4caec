package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/puzzle-api/internal/domain/entity"
	"github.com/yourusername/puzzle-api/internal/domain/repository"
	"github.com/yourusername/puzzle-api/internal/handler/dto"
	apperrors "github.com/yourusername/puzzle-api/internal/pkg/errors"
)

// leaderboardCacheKeyFmt — ключ кеша лидерборда. Версия схемы входит в ключ,
// чтобы смена формата BestScoreEntry не отдавала клиентам старые записи.
const leaderboardCacheKeyFmt = "leaderboard:top:%d:best_per_user:v2"

// LeaderboardService отвечает за выдачу лидерборда, учёт начатых попыток
// и приём завершённых результатов
type LeaderboardService struct {
	scoreRepo   repository.ScoreRepository
	attemptRepo repository.AttemptRepository
	cacheRepo   repository.CacheRepository
	maxAttempts int
	cacheTTL    time.Duration
}

// NewLeaderboardService создает новый сервис лидерборда
func NewLeaderboardService(
	scoreRepo repository.ScoreRepository,
	attemptRepo repository.AttemptRepository,
	cacheRepo repository.CacheRepository,
	maxAttempts int,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		scoreRepo:   scoreRepo,
		attemptRepo: attemptRepo,
		cacheRepo:   cacheRepo,
		maxAttempts: maxAttempts,
		cacheTTL:    cacheTTL,
	}
}

func leaderboardCacheKey(limit int) string {
	return fmt.Sprintf(leaderboardCacheKeyFmt, limit)
}

// GetLeaderboard возвращает до limit лучших результатов (по одному на
// пользователя), дополненных живым счётчиком начатых попыток.
// Список лучших результатов берётся из кеша; счётчики попыток — никогда,
// они меняются независимо от сданных результатов.
func (s *LeaderboardService) GetLeaderboard(limit int) ([]dto.LeaderboardRow, error) {
	limit = clampLimit(limit)
	cacheKey := leaderboardCacheKey(limit)

	var entries []dto.BestScoreEntry
	err := s.cacheRepo.GetJSON(cacheKey, &entries)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			// Недоступный кеш — это промах, а не отказ запроса
			log.Printf("[LeaderboardService] Ошибка чтения кеша %s: %v. Пересчитываем напрямую.", cacheKey, err)
		}

		scores, err := s.scoreRepo.GetAll()
		if err != nil {
			log.Printf("[LeaderboardService] Ошибка чтения результатов из хранилища: %v", err)
			return nil, err
		}
		entries = computeTopN(scores, limit)

		// Запись в кеш не задерживает ответ; неудача просто означает
		// промах для следующего запроса, TTL ограничивает устаревание
		cached := entries
		go func() {
			if err := s.cacheRepo.SetJSON(cacheKey, cached, s.cacheTTL); err != nil {
				log.Printf("[LeaderboardService] Не удалось записать кеш %s: %v", cacheKey, err)
			}
		}()
	}

	rows := make([]dto.LeaderboardRow, len(entries))
	for i, entry := range entries {
		count, err := s.attemptRepo.GetCount(entry.UserID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[LeaderboardService] Ошибка чтения счётчика попыток %s: %v. Используем completedCount.", entry.UserID, err)
			}
			// Счётчика ещё нет — показываем число сданных результатов
			count = entry.CompletedCount
		}
		rows[i] = dto.LeaderboardRow{
			BestScoreEntry: entry,
			AttemptsCount:  count,
		}
	}
	return rows, nil
}

// BeginAttempt регистрирует начало новой попытки пользователя.
// Возвращает актуальное значение счётчика; при исчерпанном лимите —
// ErrAttemptLimitReached, счётчик при этом не увеличивается.
func (s *LeaderboardService) BeginAttempt(userID string) (int64, error) {
	count, incremented, err := s.attemptRepo.IncrementWithCap(userID, s.maxAttempts)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка инкремента счётчика попыток %s: %v", userID, err)
		return 0, err
	}
	if !incremented {
		return count, ErrAttemptLimitReached
	}
	return count, nil
}

// SubmitScore принимает завершённый результат: проставляет серверное время
// приёма, сохраняет запись и сбрасывает кеш лидерборда.
// Счётчик попыток здесь намеренно не трогается: учёт начатых и сданных
// попыток — независимые подсистемы.
func (s *LeaderboardService) SubmitScore(userID, nickname string, moves int, timeMs int64) error {
	score := &entity.Score{
		UserID:    userID,
		Nickname:  nickname,
		Moves:     moves,
		TimeMs:    timeMs,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.scoreRepo.Save(score); err != nil {
		log.Printf("[LeaderboardService] Ошибка сохранения результата пользователя %s: %v", userID, err)
		return err
	}

	s.invalidateLeaderboardCache()
	return nil
}

// invalidateLeaderboardCache сбрасывает кеш для ходовых размеров выборки.
// Ошибки игнорируются: TTL в любом случае ограничивает устаревание,
// а ответ клиенту от кеша зависеть не должен.
func (s *LeaderboardService) invalidateLeaderboardCache() {
	for _, limit := range []int{DefaultLeaderboardLimit, MaxLeaderboardLimit} {
		key := leaderboardCacheKey(limit)
		if err := s.cacheRepo.Delete(key); err != nil {
			log.Printf("[LeaderboardService] Не удалось сбросить кеш %s: %v", key, err)
		}
	}
}

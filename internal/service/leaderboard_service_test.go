package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/puzzle-api/internal/domain/entity"
	"github.com/yourusername/puzzle-api/internal/handler/dto"
	apperrors "github.com/yourusername/puzzle-api/internal/pkg/errors"
)

// ============================================================================
// Моки для LeaderboardService
// ============================================================================

// MockScoreRepoForLeaderboard реализует repository.ScoreRepository
type MockScoreRepoForLeaderboard struct {
	mock.Mock
}

func (m *MockScoreRepoForLeaderboard) Save(score *entity.Score) error {
	args := m.Called(score)
	return args.Error(0)
}

func (m *MockScoreRepoForLeaderboard) GetAll() ([]entity.Score, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Score), args.Error(1)
}

// MockAttemptRepoForLeaderboard реализует repository.AttemptRepository
type MockAttemptRepoForLeaderboard struct {
	mock.Mock
}

func (m *MockAttemptRepoForLeaderboard) IncrementWithCap(userID string, max int) (int64, bool, error) {
	args := m.Called(userID, max)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockAttemptRepoForLeaderboard) GetCount(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepoForLeaderboard реализует repository.CacheRepository
type MockCacheRepoForLeaderboard struct {
	mock.Mock
}

func (m *MockCacheRepoForLeaderboard) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepoForLeaderboard) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepoForLeaderboard) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// ============================================================================
// createTestLeaderboardService создаёт LeaderboardService для тестирования
// ============================================================================

func createTestLeaderboardService(
	scoreRepo *MockScoreRepoForLeaderboard,
	attemptRepo *MockAttemptRepoForLeaderboard,
	cacheRepo *MockCacheRepoForLeaderboard,
) *LeaderboardService {
	return NewLeaderboardService(scoreRepo, attemptRepo, cacheRepo, 3, 30*time.Second)
}

// ============================================================================
// Тесты для GetLeaderboard
// ============================================================================

func TestLeaderboardService_GetLeaderboard_CacheMiss(t *testing.T) {
	// Arrange
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	scores := []entity.Score{
		{UserID: "u1", Nickname: "alice", Moves: 5, TimeMs: 1000, CreatedAt: 100},
		{UserID: "u1", Nickname: "alice", Moves: 3, TimeMs: 2000, CreatedAt: 200},
		{UserID: "u2", Nickname: "bob", Moves: 4, TimeMs: 1500, CreatedAt: 150},
	}

	mockCacheRepo.On("GetJSON", "leaderboard:top:10:best_per_user:v2", mock.Anything).
		Return(apperrors.ErrNotFound)
	mockCacheRepo.On("SetJSON", "leaderboard:top:10:best_per_user:v2", mock.Anything, 30*time.Second).
		Return(nil).Maybe() // запись в кеш асинхронная, ответа не ждёт
	mockScoreRepo.On("GetAll").Return(scores, nil)
	mockAttemptRepo.On("GetCount", "u1").Return(int64(3), nil)
	mockAttemptRepo.On("GetCount", "u2").Return(int64(1), nil)

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	rows, err := svc.GetLeaderboard(10)

	// Assert
	require.NoError(t, err, "Промах кеша не должен приводить к ошибке")
	require.Len(t, rows, 2)

	assert.Equal(t, "u1", rows[0].UserID, "Лучший результат u1 — 3 хода")
	assert.Equal(t, int64(2), rows[0].CompletedCount)
	assert.Equal(t, int64(3), rows[0].AttemptsCount, "attemptsCount берётся из счётчика попыток")

	assert.Equal(t, "u2", rows[1].UserID)
	assert.Equal(t, int64(1), rows[1].AttemptsCount)

	mockScoreRepo.AssertExpectations(t)
	mockAttemptRepo.AssertExpectations(t)
}

func TestLeaderboardService_GetLeaderboard_CacheHit(t *testing.T) {
	// Arrange: кеш содержит готовый список, хранилище не должно трогаться
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	cachedEntries := []dto.BestScoreEntry{
		{UserID: "u1", Nickname: "alice", Moves: 3, TimeMs: 2000, CreatedAt: 200, CompletedCount: 2},
	}

	mockCacheRepo.On("GetJSON", "leaderboard:top:10:best_per_user:v2", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*[]dto.BestScoreEntry)
			*dest = cachedEntries
		}).
		Return(nil)
	mockAttemptRepo.On("GetCount", "u1").Return(int64(3), nil)

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	rows, err := svc.GetLeaderboard(10)

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, int64(3), rows[0].AttemptsCount, "Счётчик попыток подмешивается даже при попадании в кеш")

	mockScoreRepo.AssertNotCalled(t, "GetAll")
	mockCacheRepo.AssertExpectations(t)
}

func TestLeaderboardService_GetLeaderboard_AttemptsFallbackToCompleted(t *testing.T) {
	// Arrange: счётчика попыток для пользователя ещё нет
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	scores := []entity.Score{
		{UserID: "u1", Nickname: "alice", Moves: 3, TimeMs: 2000, CreatedAt: 200},
		{UserID: "u1", Nickname: "alice", Moves: 6, TimeMs: 500, CreatedAt: 300},
	}

	mockCacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(apperrors.ErrNotFound)
	mockCacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mockScoreRepo.On("GetAll").Return(scores, nil)
	mockAttemptRepo.On("GetCount", "u1").Return(int64(0), apperrors.ErrNotFound)

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	rows, err := svc.GetLeaderboard(10)

	// Assert: отсутствие счётчика — не ошибка, подставляется completedCount
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].CompletedCount)
	assert.Equal(t, int64(2), rows[0].AttemptsCount, "При отсутствии счётчика attemptsCount = completedCount")
}

func TestLeaderboardService_GetLeaderboard_CacheFailureDegradesToMiss(t *testing.T) {
	// Arrange: Redis недоступен, запрос должен пройти напрямую
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	scores := []entity.Score{
		{UserID: "u1", Nickname: "alice", Moves: 3, TimeMs: 2000, CreatedAt: 200},
	}

	mockCacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	mockCacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused")).Maybe()
	mockScoreRepo.On("GetAll").Return(scores, nil)
	mockAttemptRepo.On("GetCount", "u1").Return(int64(0), errors.New("connection refused"))

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	rows, err := svc.GetLeaderboard(10)

	// Assert: отказ кеша и счётчика не валит запрос
	require.NoError(t, err, "Отказ кеша должен деградировать до прямого вычисления")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].AttemptsCount, "При отказе счётчика подставляется completedCount")
}

func TestLeaderboardService_GetLeaderboard_StoreErrorPropagates(t *testing.T) {
	// Arrange: упало основное хранилище
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	mockCacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(apperrors.ErrNotFound)
	mockScoreRepo.On("GetAll").Return(nil, errors.New("pq: connection reset"))

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	rows, err := svc.GetLeaderboard(10)

	// Assert: в отличие от кеша, отказ БД — это отказ запроса
	require.Error(t, err)
	assert.Nil(t, rows)
}

// ============================================================================
// Тесты для BeginAttempt
// ============================================================================

func TestLeaderboardService_BeginAttempt_SequenceUpToCap(t *testing.T) {
	// Arrange: три попытки проходят, четвёртая упирается в лимит
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	mockAttemptRepo.On("IncrementWithCap", "u1", 3).Return(int64(1), true, nil).Once()
	mockAttemptRepo.On("IncrementWithCap", "u1", 3).Return(int64(2), true, nil).Once()
	mockAttemptRepo.On("IncrementWithCap", "u1", 3).Return(int64(3), true, nil).Once()
	mockAttemptRepo.On("IncrementWithCap", "u1", 3).Return(int64(3), false, nil).Once()

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act / Assert: первые три вызова успешны с растущим счётчиком
	for want := int64(1); want <= 3; want++ {
		count, err := svc.BeginAttempt("u1")
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	// Четвёртый вызов отклоняется, счётчик остаётся на лимите
	count, err := svc.BeginAttempt("u1")
	require.ErrorIs(t, err, ErrAttemptLimitReached)
	assert.Equal(t, int64(3), count, "Отклонённый вызов возвращает текущее значение счётчика")

	mockAttemptRepo.AssertExpectations(t)
}

func TestLeaderboardService_BeginAttempt_StoreErrorPropagates(t *testing.T) {
	// Arrange
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	mockAttemptRepo.On("IncrementWithCap", "u1", 3).Return(int64(0), false, errors.New("redis down"))

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	_, err := svc.BeginAttempt("u1")

	// Assert: счётчик — не кеш, его отказ поверхностно не маскируется
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAttemptLimitReached)
}

// ============================================================================
// Тесты для SubmitScore
// ============================================================================

func TestLeaderboardService_SubmitScore_SavesAndInvalidatesCache(t *testing.T) {
	// Arrange
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	var saved *entity.Score
	mockScoreRepo.On("Save", mock.AnythingOfType("*entity.Score")).
		Run(func(args mock.Arguments) {
			saved = args.Get(0).(*entity.Score)
		}).
		Return(nil)
	mockCacheRepo.On("Delete", "leaderboard:top:50:best_per_user:v2").Return(nil).Once()
	mockCacheRepo.On("Delete", "leaderboard:top:100:best_per_user:v2").Return(nil).Once()

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	before := time.Now().UnixMilli()

	// Act
	err := svc.SubmitScore("u1", "alice", 7, 4200)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, saved, "Результат должен дойти до хранилища")
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "alice", saved.Nickname)
	assert.Equal(t, 7, saved.Moves)
	assert.Equal(t, int64(4200), saved.TimeMs)
	assert.GreaterOrEqual(t, saved.CreatedAt, before, "createdAt проставляется сервером в момент приёма")
	assert.LessOrEqual(t, saved.CreatedAt, time.Now().UnixMilli())

	mockCacheRepo.AssertExpectations(t)
	// Счётчик попыток при сдаче результата не трогается
	mockAttemptRepo.AssertNotCalled(t, "IncrementWithCap")
}

func TestLeaderboardService_SubmitScore_CacheInvalidationFailureIgnored(t *testing.T) {
	// Arrange: сброс кеша падает, но сдача результата должна пройти
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	mockScoreRepo.On("Save", mock.Anything).Return(nil)
	mockCacheRepo.On("Delete", mock.Anything).Return(errors.New("redis down"))

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	err := svc.SubmitScore("u1", "alice", 7, 4200)

	// Assert: устаревание и так ограничено TTL
	assert.NoError(t, err, "Ошибка сброса кеша не должна доходить до клиента")
}

func TestLeaderboardService_SubmitScore_StoreErrorPropagates(t *testing.T) {
	// Arrange
	mockScoreRepo := new(MockScoreRepoForLeaderboard)
	mockAttemptRepo := new(MockAttemptRepoForLeaderboard)
	mockCacheRepo := new(MockCacheRepoForLeaderboard)

	mockScoreRepo.On("Save", mock.Anything).Return(errors.New("pq: connection reset"))

	svc := createTestLeaderboardService(mockScoreRepo, mockAttemptRepo, mockCacheRepo)

	// Act
	err := svc.SubmitScore("u1", "alice", 7, 4200)

	// Assert: при отказе записи кеш не сбрасывается
	require.Error(t, err)
	mockCacheRepo.AssertNotCalled(t, "Delete")
}

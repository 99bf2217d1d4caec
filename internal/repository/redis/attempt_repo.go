package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/puzzle-api/internal/pkg/errors"
)

// attemptKeyPrefix — пространство ключей счётчиков попыток.
// Не пересекается с ключами кеша лидерборда.
const attemptKeyPrefix = "attempts:"

// incrementWithCapScript атомарно выполняет проверку лимита и инкремент на
// стороне Redis, исключая гонку read-modify-write между конкурентными begin.
// Повреждённые и отрицательные значения читаются как 0 и перезаписываются.
var incrementWithCapScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1])) or 0
if current < 0 then
  current = 0
end
if current >= tonumber(ARGV[1]) then
  return {current, 0}
end
current = current + 1
redis.call('SET', KEYS[1], current)
return {current, 1}
`)

// AttemptRepo реализует repository.AttemptRepository поверх Redis.
// Ключи не имеют TTL: счётчик живёт, пока жив сам Redis.
type AttemptRepo struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewAttemptRepo создает новый репозиторий счётчиков попыток
func NewAttemptRepo(client redis.UniversalClient) (*AttemptRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for AttemptRepo")
	}
	return &AttemptRepo{
		client: client,
		ctx:    context.Background(),
	}, nil
}

func attemptKey(userID string) string {
	return attemptKeyPrefix + userID
}

// IncrementWithCap увеличивает счётчик пользователя, если лимит не достигнут.
// Возвращает итоговое значение и признак того, что инкремент произошёл.
func (r *AttemptRepo) IncrementWithCap(userID string, max int) (int64, bool, error) {
	res, err := incrementWithCapScript.Run(r.ctx, r.client, []string{attemptKey(userID)}, max).Result()
	if err != nil {
		return 0, false, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, false, fmt.Errorf("unexpected reply from attempt counter script: %v", res)
	}
	count, okCount := vals[0].(int64)
	incremented, okFlag := vals[1].(int64)
	if !okCount || !okFlag {
		return 0, false, fmt.Errorf("unexpected reply from attempt counter script: %v", res)
	}
	return count, incremented == 1, nil
}

// GetCount возвращает текущее значение счётчика пользователя.
// Отсутствующий или повреждённый счётчик считается отсутствующим:
// вызывающая сторона подставляет собственный fallback.
func (r *AttemptRepo) GetCount(userID string) (int64, error) {
	val, err := r.client.Get(r.ctx, attemptKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperrors.ErrNotFound
		}
		return 0, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil || count < 0 {
		return 0, apperrors.ErrNotFound
	}
	return count, nil
}

package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/puzzle-api/internal/domain/entity"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий результатов
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Save добавляет новую запись результата
func (r *ScoreRepo) Save(score *entity.Score) error {
	return r.db.Create(score).Error
}

// GetAll возвращает все записи результатов.
// Порядок чтения стабилен (по id), поэтому при полном совпадении ключа
// сортировки первой встречается более ранняя запись.
func (r *ScoreRepo) GetAll() ([]entity.Score, error) {
	var scores []entity.Score
	err := r.db.Order("id ASC").Find(&scores).Error
	// Пустой слайс — валидный результат, ErrRecordNotFound здесь не бывает
	return scores, err
}

package repository

import (
	"github.com/yourusername/puzzle-api/internal/domain/entity"
)

// ScoreRepository определяет методы для работы с результатами прохождений
type ScoreRepository interface {
	// Save добавляет новую запись результата. Записи не перезаписываются.
	Save(score *entity.Score) error
	// GetAll возвращает все записи результатов. Агрегация лучших результатов
	// выполняется в памяти поверх полного набора.
	GetAll() ([]entity.Score, error)
}

package entity

// Score представляет одну завершённую попытку прохождения головоломки.
// Таблица append-only: записи никогда не обновляются и не удаляются.
type Score struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	UserID   string `gorm:"size:64;not null;index" json:"userId"`
	Nickname string `gorm:"size:32;not null" json:"nickname"`
	Moves    int    `gorm:"not null" json:"moves"`
	TimeMs   int64  `gorm:"not null" json:"timeMs"`

	// CreatedAt — миллисекунды Unix-эпохи. Присваивается сервером в момент
	// приёма результата, поэтому автозаполнение GORM отключено.
	CreatedAt int64 `gorm:"not null;autoCreateTime:false" json:"createdAt"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

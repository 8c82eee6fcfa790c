package domain

import "time"

// CuratedList подборка ссылок со своим slug. Дополнительный короткий
// ShortSlug опционален и участвует в том же пространстве имен slug'ов.
// У подборки нет флага активности - она активна по построению.
type CuratedList struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Title      string    `gorm:"column:title;size:255" json:"title"`
	Slug       string    `gorm:"column:slug;size:64;uniqueIndex;not null" json:"slug"`
	ShortSlug  *string   `gorm:"column:short_slug;size:64;uniqueIndex" json:"short_slug,omitempty"`
	ClickCount int64     `gorm:"column:click_count;not null;default:0" json:"click_count"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	URLs []ListURL `gorm:"foreignKey:ListID" json:"urls,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (CuratedList) TableName() string {
	return "curated_lists"
}

// ListURL отдельная ссылка внутри подборки, на нее может ссылаться ListClick
type ListURL struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	ListID    int64     `gorm:"column:list_id;not null;index" json:"list_id"`
	Title     string    `gorm:"column:title;size:255" json:"title"`
	TargetURL string    `gorm:"column:target_url;type:text;not null" json:"target_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (ListURL) TableName() string {
	return "list_urls"
}

package domain

import "time"

// CustomLink произвольная короткая ссылка пользователя. Участвует в
// глобальной уникальности slug'ов, но клики по ней не попадают в
// аналитическую схему (clicks/list_clicks).
type CustomLink struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Title      string    `gorm:"column:title;size:255" json:"title"`
	TargetURL  string    `gorm:"column:target_url;type:text;not null" json:"target_url"`
	Slug       string    `gorm:"column:slug;size:64;uniqueIndex;not null" json:"slug"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ClickCount int64     `gorm:"column:click_count;not null;default:0" json:"click_count"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (CustomLink) TableName() string {
	return "custom_links"
}

package domain

import "time"

// AffiliateLink партнерская ссылка на товар, доступная по короткому slug.
// ClickCount - денормализованный счетчик кликов, обновляется атомарно
// вместе с записью клика (но не в одной транзакции с ней).
type AffiliateLink struct {
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
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}

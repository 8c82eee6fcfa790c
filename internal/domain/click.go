package domain

import (
	"net"
	"time"
)

// Click неизменяемая запись клика по партнерской ссылке. Создается один раз
// на успешный редирект и больше не обновляется этой подсистемой; флаг
// Converted выставляет внешняя логика конверсий.
type Click struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	LinkID    int64     `gorm:"column:link_id;not null;index" json:"link_id"`
	IPAddress *net.IP   `gorm:"column:ip_address;type:inet" json:"ip_address,omitempty"`
	UserAgent *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referrer  *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	Country   *string   `gorm:"column:country;size:100" json:"country,omitempty"`
	City      *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	Device    *string   `gorm:"column:device;size:10" json:"device,omitempty"` // 'desktop', 'mobile', 'tablet'
	Browser   *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS        *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	Converted bool      `gorm:"column:converted;not null;default:false" json:"converted"`
	ClickedAt time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`

	// Relationships
	Link *AffiliateLink `gorm:"foreignKey:LinkID" json:"link,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Click) TableName() string {
	return "clicks"
}

// ListClick клик в рамках подборки, опционально привязанный к конкретной
// ссылке внутри нее. Та же аналитическая схема, что и у Click.
type ListClick struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	ListID    int64     `gorm:"column:list_id;not null;index" json:"list_id"`
	ListURLID *int64    `gorm:"column:list_url_id;index" json:"list_url_id,omitempty"`
	IPAddress *net.IP   `gorm:"column:ip_address;type:inet" json:"ip_address,omitempty"`
	UserAgent *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referrer  *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	Country   *string   `gorm:"column:country;size:100" json:"country,omitempty"`
	City      *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	Device    *string   `gorm:"column:device;size:10" json:"device,omitempty"`
	Browser   *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS        *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	ClickedAt time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`

	// Relationships
	List *CuratedList `gorm:"foreignKey:ListID" json:"list,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (ListClick) TableName() string {
	return "list_clicks"
}

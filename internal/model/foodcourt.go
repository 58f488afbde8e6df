package model

import (
	"time"

	"gorm.io/gorm"
)

// 档口营业状态 (老板每日开关)
const (
	OperatingStatusOpen   = "open"
	OperatingStatusClosed = "closed"
)

// Foodcourt 档口
type Foodcourt struct {
	BaseModel
	AuditMixin
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 档口老板，可为空 (未分配的档口)
	OwnerID *string  `gorm:"size:36;index" json:"owner_id"`
	Owner   *SysUser `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	// IsActive 由管理员控制；OperatingStatus 由老板控制，仅在 IsActive 时可切换
	IsActive        bool           `json:"is_active"`
	OperatingStatus string         `gorm:"size:20;not null" json:"operating_status"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	MenuItems   []MenuItem   `gorm:"foreignKey:FoodcourtID" json:"menu_items,omitempty"`
	Permissions []Permission `gorm:"foreignKey:FoodcourtID" json:"-"`
}

func (Foodcourt) TableName() string {
	return "foodcourts"
}

// IsOwnedBy 是否由该用户直接拥有
func (f *Foodcourt) IsOwnedBy(userID string) bool {
	return f.OwnerID != nil && userID != "" && *f.OwnerID == userID
}

// ==================== Table 餐桌 ====================

// Table 物理餐桌 (二维码绑定)
type Table struct {
	BaseModel
	Number int    `gorm:"uniqueIndex;not null" json:"number"`
	Label  string `gorm:"size:50" json:"label"`
}

func (Table) TableName() string {
	return "tables"
}

// TableSession 餐桌会话 ("开台")，同一餐桌同一时间最多一个活跃会话
type TableSession struct {
	BaseModel
	TableID        string     `gorm:"size:36;index;uniqueIndex:idx_table_sessions_active,where:is_active;not null" json:"table_id"`
	IsActive       bool       `gorm:"index" json:"is_active"`
	OpenedAt       time.Time  `json:"opened_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ClosedAt       *time.Time `json:"closed_at"`
}

func (TableSession) TableName() string {
	return "table_sessions"
}

package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OwnerNotification 档口老板通知 (客户端轮询)
type OwnerNotification struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	FoodcourtID string            `gorm:"size:36;index;not null" json:"foodcourt_id"`
	OrderID     string            `gorm:"size:36;index;not null" json:"order_id"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	Payload     datatypes.JSONMap `json:"payload"`
	IsRead      bool              `gorm:"index" json:"is_read"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (OwnerNotification) TableName() string {
	return "owner_notifications"
}

// CustomerNotification 顾客通知，每个订单一条
type CustomerNotification struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string            `gorm:"size:36;index;not null" json:"order_id"`
	TableID     string            `gorm:"size:36;index;not null" json:"table_id"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	Payload     datatypes.JSONMap `json:"payload"`
	IsDisplayed bool              `json:"is_displayed"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (CustomerNotification) TableName() string {
	return "customer_notifications"
}

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&SysUser{}, &Foodcourt{}, &Table{}, &TableSession{}, &MenuItem{},
		&Permission{}, &DefaultPermission{}, &PermissionTemplate{},
		&Order{}, &OrderItem{}, &OrderLog{},
		&OwnerNotification{}, &CustomerNotification{},
	}
}

func (n *OwnerNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	return nil
}

func (n *CustomerNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	return nil
}

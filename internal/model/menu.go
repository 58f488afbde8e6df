package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem 菜品
type MenuItem struct {
	BaseModel
	AuditMixin
	FoodcourtID string          `gorm:"size:36;index;not null" json:"foodcourt_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool            `gorm:"index" json:"is_available"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Foodcourt *Foodcourt `gorm:"foreignKey:FoodcourtID" json:"-"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

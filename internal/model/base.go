package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 主键使用 UUID 字符串，创建前自动生成
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 生成主键
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AuditMixin 审计字段 (由 middleware.RegisterAuditCallbacks 自动填充)
type AuditMixin struct {
	CreatedBy string `gorm:"size:36;index" json:"created_by"`
	UpdatedBy string `gorm:"size:36" json:"updated_by"`
}

// NewID 生成新的实体 ID
func NewID() string {
	return uuid.NewString()
}

package model

import "gorm.io/gorm"

// 系统级角色
const (
	RoleAdmin = "admin" // 管理员
	RoleOwner = "owner" // 档口老板
	RoleUser  = "user"  // 普通登录用户
)

// SysUser 系统用户
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Email    string `gorm:"size:100" json:"email"`

	// 系统角色: admin / owner / user
	// 注意区分：档口内的细粒度权限在 Permission 表
	Role      string         `gorm:"size:20;not null" json:"role"`
	IsActive  bool           `json:"is_active"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 拥有的档口
	Foodcourts []Foodcourt `gorm:"foreignKey:OwnerID" json:"-"`
}

func (SysUser) TableName() string {
	return "sys_users"
}

// Principal 当前操作人
// 由鉴权层解析后传入，核心逻辑不再回查用户表
type Principal struct {
	ID   string
	Role string
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsZero 未配置/未登录
func (p Principal) IsZero() bool {
	return p.ID == ""
}

package model

// 权限来源
const (
	PermissionSourceDefault  = "default"
	PermissionSourceTemplate = "template"
	PermissionSourceManual   = "manual"
)

// DefaultPermissionID 默认权限单例的固定主键
const DefaultPermissionID = "default"

// PermissionFlags 三项细粒度权限
type PermissionFlags struct {
	CanEditMenu     bool `json:"can_edit_menu"`
	CanViewOrders   bool `json:"can_view_orders"`
	CanUpdateOrders bool `json:"can_update_orders"`
}

// Permission 老板在某个档口上的授权
// (owner_id, foodcourt_id) 唯一；仅在非直接拥有、非管理员时生效
type Permission struct {
	BaseModel
	OwnerID     string `gorm:"size:36;not null;uniqueIndex:idx_owner_foodcourt" json:"owner_id"`
	FoodcourtID string `gorm:"size:36;not null;uniqueIndex:idx_owner_foodcourt;index" json:"foodcourt_id"`
	PermissionFlags

	Source     string  `gorm:"size:20" json:"source"`
	TemplateID *string `gorm:"size:36" json:"template_id"`
}

func (Permission) TableName() string {
	return "permissions"
}

// DefaultPermission 默认权限 (单例)
// 修改只影响之后的新分配，不回写已有 Permission
type DefaultPermission struct {
	BaseModel
	AuditMixin
	PermissionFlags
}

func (DefaultPermission) TableName() string {
	return "default_permissions"
}

// PermissionTemplate 权限模板
type PermissionTemplate struct {
	BaseModel
	AuditMixin
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	PermissionFlags
}

func (PermissionTemplate) TableName() string {
	return "permission_templates"
}

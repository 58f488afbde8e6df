package dto

import "foodcourt_dev_v1_202610/internal/model"

// PermissionFlagsRequest 三项权限，必须全部给出
type PermissionFlagsRequest struct {
	CanEditMenu     *bool `json:"can_edit_menu" binding:"required"`
	CanViewOrders   *bool `json:"can_view_orders" binding:"required"`
	CanUpdateOrders *bool `json:"can_update_orders" binding:"required"`
}

// ToFlags 转换为模型
func (r PermissionFlagsRequest) ToFlags() model.PermissionFlags {
	return model.PermissionFlags{
		CanEditMenu:     r.CanEditMenu != nil && *r.CanEditMenu,
		CanViewOrders:   r.CanViewOrders != nil && *r.CanViewOrders,
		CanUpdateOrders: r.CanUpdateOrders != nil && *r.CanUpdateOrders,
	}
}

// TemplateRequest 新建/修改权限模板
type TemplateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	PermissionFlagsRequest
}

// ApplyTemplateRequest 模板下发
type ApplyTemplateRequest struct {
	OwnerIDs []string `json:"owner_ids" binding:"required,min=1"`
}

// UpdatePermissionRequest 手动修改授权
type UpdatePermissionRequest struct {
	OwnerID     string `json:"owner_id" binding:"required"`
	FoodcourtID string `json:"foodcourt_id" binding:"required"`
	PermissionFlagsRequest
}

// PermissionListQuery 授权查询
type PermissionListQuery struct {
	OwnerID     string `form:"owner_id"`
	FoodcourtID string `form:"foodcourt_id"`
}

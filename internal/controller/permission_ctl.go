package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt_dev_v1_202610/internal/api/dto"
	"foodcourt_dev_v1_202610/internal/repository"
	"foodcourt_dev_v1_202610/internal/service"
)

// PermissionController 授权管理 (管理员)
type PermissionController struct {
	adminSvc *service.PermissionAdminService
}

func NewPermissionController(adminSvc *service.PermissionAdminService) *PermissionController {
	return &PermissionController{adminSvc: adminSvc}
}

// ==================== 默认权限 ====================

// GetDefault GET /api/permissions/default
func (c *PermissionController) GetDefault(ctx *gin.Context) {
	def, err := c.adminSvc.GetDefault(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, def)
}

// UpdateDefault PUT /api/permissions/default
func (c *PermissionController) UpdateDefault(ctx *gin.Context) {
	var req dto.PermissionFlagsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	def, err := c.adminSvc.UpdateDefault(ctx.Request.Context(), req.ToFlags())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, def)
}

// ==================== 授权 ====================

// ListPermissions GET /api/permissions
func (c *PermissionController) ListPermissions(ctx *gin.Context) {
	var query dto.PermissionListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	list, err := c.adminSvc.ListPermissions(ctx.Request.Context(), repository.PermissionFilter{
		OwnerID:     query.OwnerID,
		FoodcourtID: query.FoodcourtID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, list)
}

// UpdatePermission PUT /api/permissions
func (c *PermissionController) UpdatePermission(ctx *gin.Context) {
	var req dto.UpdatePermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	perm, err := c.adminSvc.UpdatePermission(ctx.Request.Context(), req.OwnerID, req.FoodcourtID, req.ToFlags())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, perm)
}

// AssignOwner PUT /api/foodcourts/:id/owner
func (c *PermissionController) AssignOwner(ctx *gin.Context) {
	var req dto.AssignOwnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	perm, err := c.adminSvc.AssignOwner(ctx.Request.Context(), ctx.Param("id"), req.OwnerID, req.TemplateID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, perm)
}

// RevokeOwner DELETE /api/foodcourts/:id/owner
func (c *PermissionController) RevokeOwner(ctx *gin.Context) {
	if err := c.adminSvc.RevokeOwner(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ==================== 权限模板 ====================

// ListTemplates GET /api/permission-templates
func (c *PermissionController) ListTemplates(ctx *gin.Context) {
	list, err := c.adminSvc.ListTemplates(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, list)
}

// GetTemplate GET /api/permission-templates/:id
func (c *PermissionController) GetTemplate(ctx *gin.Context) {
	tpl, err := c.adminSvc.GetTemplate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, tpl)
}

// CreateTemplate POST /api/permission-templates
func (c *PermissionController) CreateTemplate(ctx *gin.Context) {
	var req dto.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	tpl, err := c.adminSvc.CreateTemplate(ctx.Request.Context(), service.TemplateInput{
		Name:            req.Name,
		Description:     req.Description,
		PermissionFlags: req.ToFlags(),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, tpl)
}

// UpdateTemplate PUT /api/permission-templates/:id
func (c *PermissionController) UpdateTemplate(ctx *gin.Context) {
	var req dto.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	tpl, err := c.adminSvc.UpdateTemplate(ctx.Request.Context(), ctx.Param("id"), service.TemplateInput{
		Name:            req.Name,
		Description:     req.Description,
		PermissionFlags: req.ToFlags(),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, tpl)
}

// DeleteTemplate DELETE /api/permission-templates/:id
func (c *PermissionController) DeleteTemplate(ctx *gin.Context) {
	if err := c.adminSvc.DeleteTemplate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ApplyTemplate POST /api/permission-templates/:id/apply
// @Summary 模板批量下发
// @Tags 授权
// @Security BearerAuth
// @Param id path string true "模板 ID"
// @Param body body dto.ApplyTemplateRequest true "老板 ID 列表"
// @Success 200 {object} dto.BatchOperationResponse
// @Router /permission-templates/{id}/apply [post]
// 部分老板失败时仍返回 200，明细见 errors
func (c *PermissionController) ApplyTemplate(ctx *gin.Context) {
	var req dto.ApplyTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	result, err := c.adminSvc.ApplyTemplate(ctx.Request.Context(), ctx.Param("id"), req.OwnerIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.BatchOperationResponse{
		Success: result.Successful,
		Failed:  result.Failed,
		Errors:  result.Errors,
	})
}

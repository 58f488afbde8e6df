package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// Action 需要鉴权的档口操作
type Action string

const (
	ActionEditMenu     Action = "edit_menu"
	ActionViewOrders   Action = "view_orders"
	ActionUpdateOrders Action = "update_orders"
	ActionEditStall    Action = "edit_stall"
)

// Decide 权限判定 (纯函数)
// 顺序不可调整：
//  1. 管理员 → 允许
//  2. 档口未启用 → 拒绝
//  3. 直接拥有 → 允许 (不看 Permission 行)
//  4. Permission 行对应开关
//  5. 其余拒绝
func Decide(p model.Principal, action Action, fc *model.Foodcourt, perm *model.Permission) bool {
	if p.IsAdmin() {
		return true
	}
	if p.IsZero() || fc == nil || !fc.IsActive {
		return false
	}
	if fc.IsOwnedBy(p.ID) {
		return true
	}
	if perm == nil || perm.OwnerID != p.ID || perm.FoodcourtID != fc.ID {
		return false
	}

	switch action {
	case ActionEditMenu:
		return perm.CanEditMenu
	case ActionViewOrders:
		return perm.CanViewOrders
	case ActionUpdateOrders:
		return perm.CanUpdateOrders
	default:
		// 编辑档口没有对应授权位
		return false
	}
}

// needsGrant 前三步无法决定时才需要查 Permission 行
func needsGrant(p model.Principal, fc *model.Foodcourt) bool {
	return !p.IsAdmin() && !p.IsZero() && fc.IsActive && !fc.IsOwnedBy(p.ID)
}

// ==================== PermissionService 权限解析 ====================

// PermissionService 权限解析服务，只读
type PermissionService struct {
	foodcourtRepo  repository.FoodcourtRepository
	permissionRepo repository.PermissionRepository
}

// NewPermissionService 创建权限解析服务
func NewPermissionService(
	foodcourtRepo repository.FoodcourtRepository,
	permissionRepo repository.PermissionRepository,
) *PermissionService {
	return &PermissionService{
		foodcourtRepo:  foodcourtRepo,
		permissionRepo: permissionRepo,
	}
}

// CanPerform 判断操作人能否在已解析的档口上执行操作
func (s *PermissionService) CanPerform(ctx context.Context, p model.Principal, action Action, fc *model.Foodcourt) (bool, error) {
	var perm *model.Permission
	if needsGrant(p, fc) {
		var err error
		perm, err = s.permissionRepo.Get(ctx, p.ID, fc.ID)
		if err != nil {
			return false, fmt.Errorf("查询档口授权失败: %w", err)
		}
	}
	return Decide(p, action, fc, perm), nil
}

// Authorize 解析档口并鉴权
// 档口不存在返回 ErrNotFound，拒绝返回 ErrForbidden
func (s *PermissionService) Authorize(ctx context.Context, p model.Principal, action Action, foodcourtID string) (*model.Foodcourt, error) {
	fc, err := s.foodcourtRepo.GetByID(ctx, foodcourtID)
	if err != nil {
		return nil, fmt.Errorf("查询档口失败: %w", err)
	}
	if fc == nil {
		return nil, notFound("档口", foodcourtID)
	}

	ok, err := s.CanPerform(ctx, p, action, fc)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 拒绝不落库，只记日志
		zap.L().Info("permission denied",
			zap.String("principal", p.ID),
			zap.String("role", p.Role),
			zap.String("action", string(action)),
			zap.String("foodcourt", fc.ID),
		)
		return nil, fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return fc, nil
}

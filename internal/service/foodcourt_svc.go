package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// StallInput 档口资料
type StallInput struct {
	Name        string
	Description string
}

// MenuItemPatch 菜品修改，nil 字段不变
type MenuItemPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	IsAvailable *bool
}

// ==================== FoodcourtService 档口与菜单 ====================

// FoodcourtService 档口资料、营业状态、菜单维护
type FoodcourtService struct {
	foodcourtRepo repository.FoodcourtRepository
	menuRepo      repository.MenuRepository
	perms         *PermissionService
}

// NewFoodcourtService 创建档口服务
func NewFoodcourtService(
	foodcourtRepo repository.FoodcourtRepository,
	menuRepo repository.MenuRepository,
	perms *PermissionService,
) *FoodcourtService {
	return &FoodcourtService{
		foodcourtRepo: foodcourtRepo,
		menuRepo:      menuRepo,
		perms:         perms,
	}
}

// CreateFoodcourt 新建档口 (管理员)，默认启用、未营业
func (s *FoodcourtService) CreateFoodcourt(ctx context.Context, p model.Principal, in StallInput) (*model.Foodcourt, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: 仅管理员可新建档口", ErrForbidden)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("档口名称不能为空")
	}

	fc := &model.Foodcourt{
		Name:            name,
		Description:     in.Description,
		IsActive:        true,
		OperatingStatus: model.OperatingStatusClosed,
	}
	if err := s.foodcourtRepo.Create(ctx, fc); err != nil {
		return nil, fmt.Errorf("创建档口失败: %w", err)
	}
	return fc, nil
}

// GetFoodcourt 档口详情
func (s *FoodcourtService) GetFoodcourt(ctx context.Context, id string) (*model.Foodcourt, error) {
	fc, err := s.foodcourtRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询档口失败: %w", err)
	}
	if fc == nil {
		return nil, notFound("档口", id)
	}
	return fc, nil
}

// SetActive 启用/停用档口 (管理员)
// 停用时同时置为未营业
func (s *FoodcourtService) SetActive(ctx context.Context, p model.Principal, id string, active bool) (*model.Foodcourt, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: 仅管理员可启停档口", ErrForbidden)
	}
	fc, err := s.GetFoodcourt(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"is_active": active}
	if !active {
		fields["operating_status"] = model.OperatingStatusClosed
	}
	if err := s.foodcourtRepo.UpdateFields(ctx, fc.ID, fields); err != nil {
		return nil, fmt.Errorf("更新档口状态失败: %w", err)
	}

	zap.L().Info("foodcourt activation changed",
		zap.String("foodcourt", fc.ID),
		zap.Bool("active", active),
	)
	return s.GetFoodcourt(ctx, fc.ID)
}

// SetOperatingStatus 每日开关档
// 档口停用期间不可操作
func (s *FoodcourtService) SetOperatingStatus(ctx context.Context, p model.Principal, id, status string) (*model.Foodcourt, error) {
	if status != model.OperatingStatusOpen && status != model.OperatingStatusClosed {
		return nil, validation("未知营业状态 %q", status)
	}

	fc, err := s.perms.Authorize(ctx, p, ActionEditStall, id)
	if err != nil {
		return nil, err
	}
	if !fc.IsActive {
		return nil, fmt.Errorf("%w: 档口已停用", ErrInvalidState)
	}

	if err := s.foodcourtRepo.UpdateFields(ctx, fc.ID, map[string]interface{}{"operating_status": status}); err != nil {
		return nil, fmt.Errorf("更新营业状态失败: %w", err)
	}
	fc.OperatingStatus = status
	return fc, nil
}

// UpdateStall 修改档口资料
func (s *FoodcourtService) UpdateStall(ctx context.Context, p model.Principal, id string, in StallInput) (*model.Foodcourt, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("档口名称不能为空")
	}

	fc, err := s.perms.Authorize(ctx, p, ActionEditStall, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":        name,
		"description": in.Description,
	}
	if err := s.foodcourtRepo.UpdateFields(ctx, fc.ID, fields); err != nil {
		return nil, fmt.Errorf("更新档口失败: %w", err)
	}
	return s.GetFoodcourt(ctx, fc.ID)
}

// ==================== 菜单 ====================

// CreateMenuItem 新增菜品
func (s *FoodcourtService) CreateMenuItem(ctx context.Context, p model.Principal, foodcourtID, name string, price decimal.Decimal) (*model.MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation("菜品名称不能为空")
	}
	price, err := normalizePrice(price)
	if err != nil {
		return nil, err
	}

	fc, err := s.perms.Authorize(ctx, p, ActionEditMenu, foodcourtID)
	if err != nil {
		return nil, err
	}

	item := &model.MenuItem{
		FoodcourtID: fc.ID,
		Name:        name,
		Price:       price,
		IsAvailable: true,
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("创建菜品失败: %w", err)
	}
	return item, nil
}

// UpdateMenuItem 修改菜品价格/可售状态
// 已下单的订单项保留下单时价格
func (s *FoodcourtService) UpdateMenuItem(ctx context.Context, p model.Principal, itemID string, patch MenuItemPatch) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("查询菜品失败: %w", err)
	}
	if item == nil {
		return nil, notFound("菜品", itemID)
	}

	if _, err := s.perms.Authorize(ctx, p, ActionEditMenu, item.FoodcourtID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validation("菜品名称不能为空")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		price, err := normalizePrice(*patch.Price)
		if err != nil {
			return nil, err
		}
		fields["price"] = price
	}
	if patch.IsAvailable != nil {
		fields["is_available"] = *patch.IsAvailable
	}
	if len(fields) == 0 {
		return item, nil
	}

	if err := s.menuRepo.UpdateFields(ctx, item.ID, fields); err != nil {
		return nil, fmt.Errorf("更新菜品失败: %w", err)
	}
	return s.menuRepo.GetByID(ctx, item.ID)
}

// normalizePrice 按分取整后再校验，避免极小正数被存成 0
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	rounded := price.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, validation("价格必须大于 0 且至少 0.01")
	}
	return rounded, nil
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ApplyResult 模板批量下发结果
type ApplyResult struct {
	Successful int
	Failed     int
	Errors     []string
}

// TemplateInput 模板创建/更新参数
type TemplateInput struct {
	Name        string
	Description string
	model.PermissionFlags
}

// ==================== PermissionAdminService 授权管理 ====================

// PermissionAdminService 默认权限、权限模板、档口归属管理
// 入口均为管理员接口，由路由层限制角色
type PermissionAdminService struct {
	uow          *repository.OwnershipUnitOfWork
	userRepo     repository.UserRepository
	defaultRepo  repository.DefaultPermissionRepository
	templateRepo repository.PermissionTemplateRepository
	concurrency  int
}

// NewPermissionAdminService 创建授权管理服务
// concurrency 为模板下发时并行处理的老板数
func NewPermissionAdminService(
	uow *repository.OwnershipUnitOfWork,
	userRepo repository.UserRepository,
	defaultRepo repository.DefaultPermissionRepository,
	templateRepo repository.PermissionTemplateRepository,
	concurrency int,
) *PermissionAdminService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PermissionAdminService{
		uow:          uow,
		userRepo:     userRepo,
		defaultRepo:  defaultRepo,
		templateRepo: templateRepo,
		concurrency:  concurrency,
	}
}

// ==================== 默认权限 ====================

// GetDefault 获取默认权限，不存在时按全部开启创建
func (s *PermissionAdminService) GetDefault(ctx context.Context) (*model.DefaultPermission, error) {
	def, err := s.defaultRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询默认权限失败: %w", err)
	}
	if def != nil {
		return def, nil
	}

	def = &model.DefaultPermission{
		PermissionFlags: model.PermissionFlags{
			CanEditMenu:     true,
			CanViewOrders:   true,
			CanUpdateOrders: true,
		},
	}
	if err := s.defaultRepo.Save(ctx, def); err != nil {
		return nil, fmt.Errorf("初始化默认权限失败: %w", err)
	}
	return def, nil
}

// UpdateDefault 修改默认权限
// 只影响之后的分配，已有授权不变
func (s *PermissionAdminService) UpdateDefault(ctx context.Context, flags model.PermissionFlags) (*model.DefaultPermission, error) {
	def, err := s.GetDefault(ctx)
	if err != nil {
		return nil, err
	}
	def.PermissionFlags = flags
	if err := s.defaultRepo.Save(ctx, def); err != nil {
		return nil, fmt.Errorf("保存默认权限失败: %w", err)
	}
	return def, nil
}

// ==================== 权限模板 ====================

// CreateTemplate 创建模板
func (s *PermissionAdminService) CreateTemplate(ctx context.Context, in TemplateInput) (*model.PermissionTemplate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("模板名称不能为空")
	}

	tpl := &model.PermissionTemplate{
		Name:            name,
		Description:     in.Description,
		PermissionFlags: in.PermissionFlags,
	}
	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("创建模板失败: %w", err)
	}
	return tpl, nil
}

// GetTemplate 模板详情
func (s *PermissionAdminService) GetTemplate(ctx context.Context, id string) (*model.PermissionTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询模板失败: %w", err)
	}
	if tpl == nil {
		return nil, notFound("模板", id)
	}
	return tpl, nil
}

// ListTemplates 模板列表
func (s *PermissionAdminService) ListTemplates(ctx context.Context) ([]model.PermissionTemplate, error) {
	return s.templateRepo.List(ctx)
}

// UpdateTemplate 修改模板
// 已下发的授权不随模板变化
func (s *PermissionAdminService) UpdateTemplate(ctx context.Context, id string, in TemplateInput) (*model.PermissionTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		tpl.Name = name
	}
	tpl.Description = in.Description
	tpl.PermissionFlags = in.PermissionFlags
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("更新模板失败: %w", err)
	}
	return tpl, nil
}

// DeleteTemplate 删除模板，已下发的授权保留
func (s *PermissionAdminService) DeleteTemplate(ctx context.Context, id string) error {
	rows, err := s.templateRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("删除模板失败: %w", err)
	}
	if rows == 0 {
		return notFound("模板", id)
	}
	return nil
}

// ApplyTemplate 将模板下发到老板名下全部档口
// 老板之间相互独立并行处理，单个失败不影响其他
func (s *PermissionAdminService) ApplyTemplate(ctx context.Context, templateID string, ownerIDs []string) (*ApplyResult, error) {
	tpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	owners := dedupe(ownerIDs)
	if len(owners) == 0 {
		return nil, validation("老板列表不能为空")
	}

	var (
		successful int64
		failed     int64
		mu         sync.Mutex
		errs       []string
	)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, ownerID := range owners {
		ownerID := ownerID
		g.Go(func() error {
			if err := s.applyToOwner(ctx, tpl, ownerID); err != nil {
				atomic.AddInt64(&failed, 1)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("%s: %v", ownerID, err))
				mu.Unlock()
				return nil
			}
			atomic.AddInt64(&successful, 1)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(errs)
	result := &ApplyResult{
		Successful: int(successful),
		Failed:     int(failed),
		Errors:     errs,
	}

	zap.L().Info("permission template applied",
		zap.String("template", tpl.ID),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *PermissionAdminService) applyToOwner(ctx context.Context, tpl *model.PermissionTemplate, ownerID string) error {
	if _, err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}

	return s.uow.Transaction(ctx, func(uow *repository.OwnershipUnitOfWork) error {
		stalls, err := uow.Foodcourts.ListByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("查询名下档口失败: %w", err)
		}
		if len(stalls) == 0 {
			return fmt.Errorf("%w: 名下没有档口", ErrInvalidState)
		}

		for _, fc := range stalls {
			templateID := tpl.ID
			if err := uow.Permissions.Upsert(ctx, &model.Permission{
				OwnerID:         ownerID,
				FoodcourtID:     fc.ID,
				PermissionFlags: tpl.PermissionFlags,
				Source:          model.PermissionSourceTemplate,
				TemplateID:      &templateID,
			}); err != nil {
				return fmt.Errorf("写入档口 %s 授权失败: %w", fc.ID, err)
			}
		}
		return nil
	})
}

// ==================== 档口归属 ====================

// AssignOwner 指定档口老板
// 旧老板的授权移除，新老板按模板 (未指定则默认权限) 生成授权
func (s *PermissionAdminService) AssignOwner(ctx context.Context, foodcourtID, ownerID string, templateID *string) (*model.Permission, error) {
	if _, err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	perm := &model.Permission{
		OwnerID:     ownerID,
		FoodcourtID: foodcourtID,
		Source:      model.PermissionSourceDefault,
	}
	if templateID != nil && *templateID != "" {
		tpl, err := s.GetTemplate(ctx, *templateID)
		if err != nil {
			return nil, err
		}
		perm.PermissionFlags = tpl.PermissionFlags
		perm.Source = model.PermissionSourceTemplate
		perm.TemplateID = &tpl.ID
	} else {
		def, err := s.GetDefault(ctx)
		if err != nil {
			return nil, err
		}
		perm.PermissionFlags = def.PermissionFlags
	}

	var saved *model.Permission
	err := s.uow.Transaction(ctx, func(uow *repository.OwnershipUnitOfWork) error {
		fc, err := uow.Foodcourts.GetByID(ctx, foodcourtID)
		if err != nil {
			return fmt.Errorf("查询档口失败: %w", err)
		}
		if fc == nil {
			return notFound("档口", foodcourtID)
		}

		if fc.OwnerID != nil && *fc.OwnerID != ownerID {
			if err := uow.Permissions.Delete(ctx, *fc.OwnerID, fc.ID); err != nil {
				return fmt.Errorf("移除原老板授权失败: %w", err)
			}
		}
		if err := uow.Foodcourts.SetOwner(ctx, fc.ID, &ownerID); err != nil {
			return fmt.Errorf("更新档口老板失败: %w", err)
		}
		if err := uow.Permissions.Upsert(ctx, perm); err != nil {
			return fmt.Errorf("写入授权失败: %w", err)
		}

		saved, err = uow.Permissions.Get(ctx, ownerID, fc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("foodcourt owner assigned",
		zap.String("foodcourt", foodcourtID),
		zap.String("owner", ownerID),
		zap.String("source", saved.Source),
	)
	return saved, nil
}

// RevokeOwner 收回档口，同时删除该老板在档口上的授权
func (s *PermissionAdminService) RevokeOwner(ctx context.Context, foodcourtID string) error {
	return s.uow.Transaction(ctx, func(uow *repository.OwnershipUnitOfWork) error {
		fc, err := uow.Foodcourts.GetByID(ctx, foodcourtID)
		if err != nil {
			return fmt.Errorf("查询档口失败: %w", err)
		}
		if fc == nil {
			return notFound("档口", foodcourtID)
		}
		if fc.OwnerID == nil {
			return fmt.Errorf("%w: 档口未分配老板", ErrInvalidState)
		}

		if err := uow.Permissions.Delete(ctx, *fc.OwnerID, fc.ID); err != nil {
			return fmt.Errorf("删除授权失败: %w", err)
		}
		return uow.Foodcourts.SetOwner(ctx, fc.ID, nil)
	})
}

// UpdatePermission 手动修改单条授权
func (s *PermissionAdminService) UpdatePermission(ctx context.Context, ownerID, foodcourtID string, flags model.PermissionFlags) (*model.Permission, error) {
	var saved *model.Permission
	err := s.uow.Transaction(ctx, func(uow *repository.OwnershipUnitOfWork) error {
		existing, err := uow.Permissions.Get(ctx, ownerID, foodcourtID)
		if err != nil {
			return fmt.Errorf("查询授权失败: %w", err)
		}
		if existing == nil {
			return notFound("授权", ownerID+"/"+foodcourtID)
		}

		if err := uow.Permissions.Upsert(ctx, &model.Permission{
			OwnerID:         ownerID,
			FoodcourtID:     foodcourtID,
			PermissionFlags: flags,
			Source:          model.PermissionSourceManual,
		}); err != nil {
			return fmt.Errorf("更新授权失败: %w", err)
		}
		saved, err = uow.Permissions.Get(ctx, ownerID, foodcourtID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListPermissions 授权列表
func (s *PermissionAdminService) ListPermissions(ctx context.Context, filter repository.PermissionFilter) ([]model.Permission, error) {
	return s.uow.Permissions.List(ctx, filter)
}

// requireOwner 校验用户存在且为老板角色
func (s *PermissionAdminService) requireOwner(ctx context.Context, userID string) (*model.SysUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, notFound("用户", userID)
	}
	if user.Role != model.RoleOwner {
		return nil, validation("用户 %s 不是档口老板", userID)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: 用户已停用", ErrInvalidState)
	}
	return user, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

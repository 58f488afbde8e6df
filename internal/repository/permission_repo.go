package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodcourt_dev_v1_202610/internal/model"
)

// ==================== 过滤条件 ====================

// PermissionFilter 权限过滤条件
type PermissionFilter struct {
	OwnerID     string
	FoodcourtID string
}

// ==================== PermissionRepository 档口授权仓库 ====================

// PermissionRepository 档口授权仓库接口
type PermissionRepository interface {
	Get(ctx context.Context, ownerID, foodcourtID string) (*model.Permission, error)
	Upsert(ctx context.Context, perm *model.Permission) error
	Delete(ctx context.Context, ownerID, foodcourtID string) error
	List(ctx context.Context, filter PermissionFilter) ([]model.Permission, error)
}

type permissionRepo struct {
	db *gorm.DB
}

// NewPermissionRepository 创建授权仓库
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Get(ctx context.Context, ownerID, foodcourtID string) (*model.Permission, error) {
	var perm model.Permission
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND foodcourt_id = ?", ownerID, foodcourtID).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// Upsert 按 (owner_id, foodcourt_id) 插入或覆盖
func (r *permissionRepo) Upsert(ctx context.Context, perm *model.Permission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "foodcourt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_edit_menu", "can_view_orders", "can_update_orders",
			"source", "template_id", "updated_at",
		}),
	}).Create(perm).Error
}

func (r *permissionRepo) Delete(ctx context.Context, ownerID, foodcourtID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND foodcourt_id = ?", ownerID, foodcourtID).
		Delete(&model.Permission{}).Error
}

func (r *permissionRepo) List(ctx context.Context, filter PermissionFilter) ([]model.Permission, error) {
	var list []model.Permission
	query := r.db.WithContext(ctx).Model(&model.Permission{})
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.FoodcourtID != "" {
		query = query.Where("foodcourt_id = ?", filter.FoodcourtID)
	}
	err := query.Order("created_at ASC").Find(&list).Error
	return list, err
}

// ==================== DefaultPermissionRepository 默认权限 ====================

// DefaultPermissionRepository 默认权限仓库接口 (单例)
type DefaultPermissionRepository interface {
	Get(ctx context.Context) (*model.DefaultPermission, error)
	Save(ctx context.Context, def *model.DefaultPermission) error
}

type defaultPermissionRepo struct {
	db *gorm.DB
}

// NewDefaultPermissionRepository 创建默认权限仓库
func NewDefaultPermissionRepository(db *gorm.DB) DefaultPermissionRepository {
	return &defaultPermissionRepo{db: db}
}

// Get 读取单例，不存在返回 nil
func (r *defaultPermissionRepo) Get(ctx context.Context) (*model.DefaultPermission, error) {
	var def model.DefaultPermission
	err := r.db.WithContext(ctx).Where("id = ?", model.DefaultPermissionID).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// Save 写入单例
func (r *defaultPermissionRepo) Save(ctx context.Context, def *model.DefaultPermission) error {
	def.ID = model.DefaultPermissionID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_edit_menu", "can_view_orders", "can_update_orders",
			"updated_by", "updated_at",
		}),
	}).Create(def).Error
}

// ==================== PermissionTemplateRepository 权限模板 ====================

// PermissionTemplateRepository 权限模板仓库接口
type PermissionTemplateRepository interface {
	Create(ctx context.Context, tpl *model.PermissionTemplate) error
	GetByID(ctx context.Context, id string) (*model.PermissionTemplate, error)
	List(ctx context.Context) ([]model.PermissionTemplate, error)
	Update(ctx context.Context, tpl *model.PermissionTemplate) error
	Delete(ctx context.Context, id string) (int64, error)
}

type permissionTemplateRepo struct {
	db *gorm.DB
}

// NewPermissionTemplateRepository 创建权限模板仓库
func NewPermissionTemplateRepository(db *gorm.DB) PermissionTemplateRepository {
	return &permissionTemplateRepo{db: db}
}

func (r *permissionTemplateRepo) Create(ctx context.Context, tpl *model.PermissionTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *permissionTemplateRepo) GetByID(ctx context.Context, id string) (*model.PermissionTemplate, error) {
	var tpl model.PermissionTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *permissionTemplateRepo) List(ctx context.Context) ([]model.PermissionTemplate, error) {
	var list []model.PermissionTemplate
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *permissionTemplateRepo) Update(ctx context.Context, tpl *model.PermissionTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *permissionTemplateRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PermissionTemplate{})
	return result.RowsAffected, result.Error
}

// ==================== OwnershipUnitOfWork 档口归属工作单元 ====================

// OwnershipUnitOfWork 档口归属与授权在同一事务内变更
type OwnershipUnitOfWork struct {
	db          *gorm.DB
	Foodcourts  FoodcourtRepository
	Permissions PermissionRepository
}

// NewOwnershipUnitOfWork 创建工作单元
func NewOwnershipUnitOfWork(db *gorm.DB) *OwnershipUnitOfWork {
	return &OwnershipUnitOfWork{
		db:          db,
		Foodcourts:  NewFoodcourtRepository(db),
		Permissions: NewPermissionRepository(db),
	}
}

// Transaction 执行事务
func (u *OwnershipUnitOfWork) Transaction(ctx context.Context, fn func(uow *OwnershipUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewOwnershipUnitOfWork(tx))
	})
}

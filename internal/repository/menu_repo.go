package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodcourt_dev_v1_202610/internal/model"
)

// MenuRepository 菜品仓库接口
// 订单核心只读：GetAvailableByIDs 是下单时唯一的价格/可售来源
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)
	GetAvailableByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type menuRepo struct {
	db *gorm.DB
}

// NewMenuRepository 创建菜品仓库
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepo{db: db}
}

func (r *menuRepo) Create(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepo) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAvailableByIDs 批量获取当前可售的菜品，停用档口的菜品视为不可售
func (r *menuRepo) GetAvailableByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Joins("JOIN foodcourts ON foodcourts.id = menu_items.foodcourt_id AND foodcourts.is_active = ? AND foodcourts.deleted_at IS NULL", true).
		Where("menu_items.id IN ? AND menu_items.is_available = ?", ids, true).
		Find(&items).Error
	return items, err
}

func (r *menuRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.MenuItem{}).Where("id = ?", id).Updates(fields).Error
}

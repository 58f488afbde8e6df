package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodcourt_dev_v1_202610/internal/model"
)

// ==================== FoodcourtRepository 档口仓库 ====================

// FoodcourtRepository 档口仓库接口
type FoodcourtRepository interface {
	Create(ctx context.Context, fc *model.Foodcourt) error
	GetByID(ctx context.Context, id string) (*model.Foodcourt, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Foodcourt, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	SetOwner(ctx context.Context, id string, ownerID *string) error
}

type foodcourtRepo struct {
	db *gorm.DB
}

// NewFoodcourtRepository 创建档口仓库
func NewFoodcourtRepository(db *gorm.DB) FoodcourtRepository {
	return &foodcourtRepo{db: db}
}

func (r *foodcourtRepo) Create(ctx context.Context, fc *model.Foodcourt) error {
	return r.db.WithContext(ctx).Create(fc).Error
}

func (r *foodcourtRepo) GetByID(ctx context.Context, id string) (*model.Foodcourt, error) {
	var fc model.Foodcourt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

// ListByOwner 老板直接拥有的档口
func (r *foodcourtRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Foodcourt, error) {
	var list []model.Foodcourt
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *foodcourtRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Foodcourt{}).Where("id = ?", id).Updates(fields).Error
}

// SetOwner 设置或清空档口老板
func (r *foodcourtRepo) SetOwner(ctx context.Context, id string, ownerID *string) error {
	return r.db.WithContext(ctx).Model(&model.Foodcourt{}).Where("id = ?", id).Update("owner_id", ownerID).Error
}

// ==================== TableRepository 餐桌仓库 ====================

// TableRepository 餐桌仓库接口
type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id string) (*model.Table, error)
}

type tableRepo struct {
	db *gorm.DB
}

// NewTableRepository 创建餐桌仓库
func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepo{db: db}
}

func (r *tableRepo) Create(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepo) GetByID(ctx context.Context, id string) (*model.Table, error) {
	var table model.Table
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// ==================== TableSessionRepository 餐桌会话仓库 ====================

// TableSessionRepository 餐桌会话仓库接口
type TableSessionRepository interface {
	GetActiveByTable(ctx context.Context, tableID string) (*model.TableSession, error)
	OpenOrTouch(ctx context.Context, tableID string, now time.Time) (*model.TableSession, error)
	CloseByTable(ctx context.Context, tableID string, now time.Time) (int64, error)
	CloseIdle(ctx context.Context, idleBefore, now time.Time) (int64, error)
}

type tableSessionRepo struct {
	db *gorm.DB
}

// NewTableSessionRepository 创建餐桌会话仓库
func NewTableSessionRepository(db *gorm.DB) TableSessionRepository {
	return &tableSessionRepo{db: db}
}

func (r *tableSessionRepo) GetActiveByTable(ctx context.Context, tableID string) (*model.TableSession, error) {
	var session model.TableSession
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND is_active = ?", tableID, true).
		Order("opened_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// OpenOrTouch 复用活跃会话并刷新活动时间，没有则开台
func (r *tableSessionRepo) OpenOrTouch(ctx context.Context, tableID string, now time.Time) (*model.TableSession, error) {
	session, err := r.GetActiveByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if session != nil {
		session.LastActivityAt = now
		err = r.db.WithContext(ctx).Model(session).Update("last_activity_at", now).Error
		return session, err
	}

	session = &model.TableSession{
		TableID:        tableID,
		IsActive:       true,
		OpenedAt:       now,
		LastActivityAt: now,
	}
	// 活跃会话由部分唯一索引约束，并发开台时后到者读取已存在的会话
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(session)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return session, nil
	}

	existing, err := r.GetActiveByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("开台冲突后未找到活跃会话")
	}
	return existing, nil
}

// CloseByTable 关闭餐桌的活跃会话
func (r *tableSessionRepo) CloseByTable(ctx context.Context, tableID string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.TableSession{}).
		Where("table_id = ? AND is_active = ?", tableID, true).
		Updates(map[string]interface{}{"is_active": false, "closed_at": now})
	return result.RowsAffected, result.Error
}

// CloseIdle 关闭最后活动早于 idleBefore 的会话
func (r *tableSessionRepo) CloseIdle(ctx context.Context, idleBefore, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.TableSession{}).
		Where("is_active = ? AND last_activity_at < ?", true, idleBefore).
		Updates(map[string]interface{}{"is_active": false, "closed_at": now})
	return result.RowsAffected, result.Error
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodcourt_dev_v1_202610/internal/model"
)

// NotificationRepository 通知仓库接口
// 通知只追加，唯一允许的修改是已读/已展示标记
type NotificationRepository interface {
	CreateOwnerBatch(ctx context.Context, list []model.OwnerNotification) error
	CreateCustomer(ctx context.Context, n *model.CustomerNotification) error

	GetOwnerByID(ctx context.Context, id string) (*model.OwnerNotification, error)
	ListOwnerByFoodcourt(ctx context.Context, foodcourtID string, unreadOnly bool) ([]model.OwnerNotification, error)
	MarkOwnerRead(ctx context.Context, id string) error

	GetCustomerByID(ctx context.Context, id string) (*model.CustomerNotification, error)
	ListCustomerByOrder(ctx context.Context, orderID string) ([]model.CustomerNotification, error)
	MarkCustomerDisplayed(ctx context.Context, id string) error
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateOwnerBatch(ctx context.Context, list []model.OwnerNotification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&list).Error
}

func (r *notificationRepo) CreateCustomer(ctx context.Context, n *model.CustomerNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) GetOwnerByID(ctx context.Context, id string) (*model.OwnerNotification, error) {
	var n model.OwnerNotification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListOwnerByFoodcourt(ctx context.Context, foodcourtID string, unreadOnly bool) ([]model.OwnerNotification, error) {
	var list []model.OwnerNotification
	query := r.db.WithContext(ctx).Where("foodcourt_id = ?", foodcourtID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	err := query.Order("created_at DESC").Limit(200).Find(&list).Error
	return list, err
}

func (r *notificationRepo) MarkOwnerRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.OwnerNotification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepo) GetCustomerByID(ctx context.Context, id string) (*model.CustomerNotification, error) {
	var n model.CustomerNotification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListCustomerByOrder(ctx context.Context, orderID string) ([]model.CustomerNotification, error) {
	var list []model.CustomerNotification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *notificationRepo) MarkCustomerDisplayed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.CustomerNotification{}).Where("id = ?", id).Update("is_displayed", true).Error
}

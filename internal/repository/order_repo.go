package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodcourt_dev_v1_202610/internal/model"
)

// ==================== 过滤条件 ====================

// OrderItemFilter 订单项过滤条件
type OrderItemFilter struct {
	FoodcourtID string
	Status      string
	Limit       int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 只写订单主表，订单项由 OrderItemRepository 写入
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Logs").Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithItems(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

// ==================== OrderItemRepository 订单项仓库 ====================

// OrderItemRepository 订单项仓库接口
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []model.OrderItem) error
	GetByID(ctx context.Context, id string) (*model.OrderItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.OrderItem, error)
	List(ctx context.Context, filter OrderItemFilter) ([]model.OrderItem, error)
	CompareAndSwapStatus(ctx context.Context, id, from, to string) (bool, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单项仓库
func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&items, 100).Error
}

func (r *orderItemRepository) GetByID(ctx context.Context, id string) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderItemRepository) ListByOrder(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *orderItemRepository) List(ctx context.Context, filter OrderItemFilter) ([]model.OrderItem, error) {
	var items []model.OrderItem
	query := r.db.WithContext(ctx).Model(&model.OrderItem{})
	if filter.FoodcourtID != "" {
		query = query.Where("foodcourt_id = ?", filter.FoodcourtID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	err := query.Order("created_at DESC").Limit(filter.Limit).Find(&items).Error
	return items, err
}

// CompareAndSwapStatus 条件更新：仅当当前状态为 from 时改为 to
// 返回 false 表示状态已被他人修改
func (r *orderItemRepository) CompareAndSwapStatus(ctx context.Context, id, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ==================== OrderLogRepository 状态流水仓库 ====================

// OrderLogRepository 状态流水仓库接口 (只追加)
type OrderLogRepository interface {
	Create(ctx context.Context, log *model.OrderLog) error
	ListByOrder(ctx context.Context, orderID string) ([]model.OrderLog, error)
}

type orderLogRepository struct {
	db *gorm.DB
}

// NewOrderLogRepository 创建状态流水仓库
func NewOrderLogRepository(db *gorm.DB) OrderLogRepository {
	return &orderLogRepository{db: db}
}

func (r *orderLogRepository) Create(ctx context.Context, log *model.OrderLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *orderLogRepository) ListByOrder(ctx context.Context, orderID string) ([]model.OrderLog, error) {
	var logs []model.OrderLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// ==================== OrderUnitOfWork 订单工作单元 ====================

// OrderUnitOfWork 订单工作单元（事务）
// 下单时菜单快照读取与订单写入在同一事务内完成
type OrderUnitOfWork struct {
	db            *gorm.DB
	Orders        OrderRepository
	Items         OrderItemRepository
	Logs          OrderLogRepository
	Notifications NotificationRepository
	Sessions      TableSessionRepository
	Menu          MenuRepository
}

// NewOrderUnitOfWork 创建工作单元
func NewOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return newOrderUnitOfWork(db)
}

func newOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return &OrderUnitOfWork{
		db:            db,
		Orders:        NewOrderRepository(db),
		Items:         NewOrderItemRepository(db),
		Logs:          NewOrderLogRepository(db),
		Notifications: NewNotificationRepository(db),
		Sessions:      NewTableSessionRepository(db),
		Menu:          NewMenuRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误时整体回滚
func (u *OrderUnitOfWork) Transaction(ctx context.Context, fn func(uow *OrderUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newOrderUnitOfWork(tx))
	})
}

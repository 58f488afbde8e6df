package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// 订单 / 订单项共用状态
const (
	OrderStatusPending   = "pending"   // 待处理
	OrderStatusPreparing = "preparing" // 制作中
	OrderStatusReady     = "ready"     // 待取餐
	OrderStatusDelivered = "delivered" // 已送达
	OrderStatusCanceled  = "canceled"  // 已取消
)

// 推进顺序，取消不在其中
var statusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusPreparing: 1,
	OrderStatusReady:     2,
	OrderStatusDelivered: 3,
}

// IsValidStatus 是否为已知状态
func IsValidStatus(status string) bool {
	if status == OrderStatusCanceled {
		return true
	}
	_, ok := statusRank[status]
	return ok
}

// IsTerminalStatus 终态不可再变更
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCanceled
}

// CanTransition 校验状态流转
// 只能向前推进 (可跳步)，非终态均可取消
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) || !IsValidStatus(from) || !IsValidStatus(to) {
		return false
	}
	if to == OrderStatusCanceled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// DeriveOrderStatus 由订单项状态推导订单状态
//   - 全部取消 → canceled
//   - 未取消的项全部送达 → delivered
//   - 否则取未完成项中进度最慢的状态
func DeriveOrderStatus(statuses []string) string {
	if len(statuses) == 0 {
		return OrderStatusPending
	}

	slowest := ""
	allCanceled := true
	for _, s := range statuses {
		if s == OrderStatusCanceled {
			continue
		}
		allCanceled = false
		if s == OrderStatusDelivered {
			continue
		}
		if slowest == "" || statusRank[s] < statusRank[slowest] {
			slowest = s
		}
	}

	switch {
	case allCanceled:
		return OrderStatusCanceled
	case slowest == "":
		return OrderStatusDelivered
	default:
		return slowest
	}
}

// ==================== Order 订单主表 ====================

// Order 订单 (聚合根)
// Status 为派生字段，只能由订单项状态变更事务内重算
type Order struct {
	BaseModel
	TableID        string          `gorm:"size:36;index;not null" json:"table_id"`
	TableSessionID string          `gorm:"size:36;index" json:"table_session_id"`
	CustomerName   string          `gorm:"size:100;not null" json:"customer_name"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status         string          `gorm:"size:20;index;not null" json:"status"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Logs  []OrderLog  `gorm:"foreignKey:OrderID" json:"logs,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// FoodcourtIDs 订单涉及的档口，按首次出现顺序去重
func (o *Order) FoodcourtIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.FoodcourtID]; ok {
			continue
		}
		seen[item.FoodcourtID] = struct{}{}
		ids = append(ids, item.FoodcourtID)
	}
	return ids
}

// ItemStatuses 所有订单项状态
func (o *Order) ItemStatuses() []string {
	statuses := make([]string, len(o.Items))
	for i, item := range o.Items {
		statuses[i] = item.Status
	}
	return statuses
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项
// FoodcourtID / UnitPrice 为下单时快照，之后不随菜单变化
type OrderItem struct {
	BaseModel
	OrderID             string          `gorm:"size:36;index;not null" json:"order_id"`
	MenuItemID          string          `gorm:"size:36;index;not null" json:"menu_item_id"`
	FoodcourtID         string          `gorm:"size:36;index;not null" json:"foodcourt_id"`
	Name                string          `gorm:"size:255" json:"name"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Status              string          `gorm:"size:20;index;not null" json:"status"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ==================== OrderLog 状态流水 ====================

// OrderLog 状态变更审计，只追加
// OrderItemID 为空表示订单级记录
type OrderLog struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID        string    `gorm:"size:36;index;not null" json:"order_id"`
	OrderItemID    *string   `gorm:"size:36;index" json:"order_item_id"`
	PreviousStatus *string   `gorm:"size:20" json:"previous_status"`
	NewStatus      string    `gorm:"size:20;not null" json:"new_status"`
	ActorID        string    `gorm:"size:36;not null" json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (OrderLog) TableName() string {
	return "order_logs"
}

func (l *OrderLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

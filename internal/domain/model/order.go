package model

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// ParseOrderStatus は既知のステータスだけ受け付ける。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCanceled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// CanTransition は許可された遷移だけ true を返す。
// CREATED → PAID → SHIPPED → DELIVERED、CANCELED は CREATED/PAID からのみ。
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return to == OrderStatusPaid || to == OrderStatusCanceled
	case OrderStatusPaid:
		return to == OrderStatusShipped || to == OrderStatusCanceled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		// DELIVERED / CANCELED は終端
		return false
	}
}

type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"not null;index" json:"user_id"`
	Address     string `gorm:"type:text;not null" json:"address"`
	PhoneNumber string `gorm:"type:varchar(20);not null" json:"phone_number"`
	// 合計金額（最小通貨単位）
	Amount     int64  `gorm:"not null" json:"amount"`
	CouponCode string `gorm:"type:varchar(50)" json:"coupon_code"`
	// 決済ゲートウェイの取引ID。同じ取引で二重注文させない
	TransactionID string      `gorm:"type:varchar(100);not null;uniqueIndex" json:"transaction_id"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

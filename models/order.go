package models

import "time"

/************************************************
/**** MARK: ORDER STATUS ****/
/************************************************/
const ORDER_STATUS_PENDING = "pending"
const ORDER_STATUS_PAID = "paid"
const ORDER_STATUS_SHIPPED = "shipped"
const ORDER_STATUS_CANCELLED = "cancelled"

type Order struct {
	ID            int64       `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID      int64       `gorm:"not null;index" json:"member_id"`
	AssociationID int64       `gorm:"not null;index" json:"association_id"`
	Status        string      `gorm:"not null;default:'pending';index" json:"status"`
	TotalCents    int64       `gorm:"not null;default:0" json:"total_cents"`
	Currency      string      `gorm:"not null;default:'EUR'" json:"currency"`
	PointsEarned  int64       `gorm:"not null;default:0" json:"points_earned"`
	Items         []OrderItem `gorm:"association_autoupdate:false;association_autocreate:false" json:"items"`
	CreatedAt     *time.Time  `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at"`
}

type OrderItem struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrderID        int64      `gorm:"not null;index" json:"order_id"`
	ProductID      int64      `gorm:"not null;index" json:"product_id"`
	ProductName    string     `gorm:"not null;default:''" json:"product_name"`
	Quantity       int64      `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents int64      `gorm:"not null;default:0" json:"unit_price_cents"`
	CreatedAt      *time.Time `json:"created_at"`
}

func IsValidOrderStatus(status string) bool {
	switch status {
	case ORDER_STATUS_PENDING, ORDER_STATUS_PAID, ORDER_STATUS_SHIPPED, ORDER_STATUS_CANCELLED:
		return true
	}
	return false
}

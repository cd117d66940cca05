package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&shippingInstanceRecord{},
		&checkoutSessionRecord{},
		&orderRecord{},
	)
}

// Shipping instance schema mirrors the shipping registry adapter.
type shippingInstanceRecord struct {
	ID               int64          `gorm:"primaryKey;autoIncrement:false;column:id"`
	MethodID         string         `gorm:"column:method_id;type:varchar(64);index"`
	Title            string         `gorm:"column:title"`
	Cost             float64        `gorm:"column:cost;type:decimal(10,2)"`
	FreeShipping     bool           `gorm:"column:free_shipping"`
	Carriers         pq.StringArray `gorm:"column:carriers;type:text[]"`
	AllowCustom      bool           `gorm:"column:allow_custom"`
	CustomFieldLabel string         `gorm:"column:custom_field_label"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (shippingInstanceRecord) TableName() string { return "shipping_instances" }

// Checkout session schema mirrors the selection session store.
type checkoutSessionRecord struct {
	ID            string         `gorm:"primaryKey;column:id;size:128"`
	Selections    map[string]any `gorm:"column:selections;serializer:json"`
	LastSaves     map[string]any `gorm:"column:last_saves;serializer:json"`
	ChosenMethods pq.StringArray `gorm:"column:chosen_methods;type:text[]"`
	ExpiresAt     time.Time      `gorm:"column:expires_at;index"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (checkoutSessionRecord) TableName() string { return "checkout_sessions" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            int64          `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID     string         `gorm:"column:session_id;size:128;index"`
	Status        string         `gorm:"column:status;type:varchar(32);index"`
	ShippingLines []any          `gorm:"column:shipping_lines;serializer:json"`
	Carriers      map[string]any `gorm:"column:carriers;serializer:json"`
	CarrierCount  int            `gorm:"column:carrier_count"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

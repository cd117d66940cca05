package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. Shipping
// lines and the carrier record are stored as JSON documents.
type orderRecord struct {
	ID            int64          `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID     string         `gorm:"column:session_id;size:128;index"`
	Status        string         `gorm:"column:status;type:varchar(32);index"`
	ShippingLines []shippingLine `gorm:"column:shipping_lines;serializer:json"`
	Carriers      *carrierRecord `gorm:"column:carriers;serializer:json"`
	CarrierCount  int            `gorm:"column:carrier_count"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type shippingLine struct {
	ID          int64   `json:"id"`
	MethodID    string  `json:"methodId"`
	InstanceID  int64   `json:"instanceId"`
	MethodTitle string  `json:"methodTitle"`
	Total       float64 `json:"total"`
}

type carrierRecord struct {
	Carriers     map[shipdomain.InstanceID]string `json:"carriers"`
	MethodTitles map[shipdomain.InstanceID]string `json:"methodTitles,omitempty"`
	Trigger      string                           `json:"trigger"`
	ResolvedAt   time.Time                        `json:"resolvedAt"`
}

// Create inserts a new order and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns all orders.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Update locks the order row, applies fn and writes the result back in
// the same transaction. Concurrent commit triggers queue on the row lock.
func (r *Repository) Update(ctx context.Context, id int64, fn func(*domain.Order) error) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := record.toDomain()
		if err := fn(order); err != nil {
			return err
		}
		if err := order.Validate(); err != nil {
			return err
		}
		next := toRecord(order)
		next.CreatedAt = record.CreatedAt
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:        order.ID,
		SessionID: order.SessionID,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, line := range order.ShippingLines {
		rec.ShippingLines = append(rec.ShippingLines, shippingLine{
			ID:          line.ID,
			MethodID:    line.MethodID,
			InstanceID:  int64(line.InstanceID),
			MethodTitle: line.MethodTitle,
			Total:       line.Total,
		})
	}
	if order.Carriers != nil {
		frozen := order.Carriers.Clone()
		rec.Carriers = &carrierRecord{
			Carriers:     frozen.Carriers,
			MethodTitles: frozen.MethodTitles,
			Trigger:      string(frozen.Trigger),
			ResolvedAt:   frozen.ResolvedAt,
		}
		rec.CarrierCount = len(frozen.Carriers)
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		SessionID: r.SessionID,
		Status:    domain.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, line := range r.ShippingLines {
		order.ShippingLines = append(order.ShippingLines, domain.ShippingLine{
			ID:          line.ID,
			MethodID:    line.MethodID,
			InstanceID:  shipdomain.InstanceID(line.InstanceID),
			MethodTitle: line.MethodTitle,
			Total:       line.Total,
		})
	}
	if r.Carriers != nil {
		rec := domain.CarrierRecord{
			Carriers:     r.Carriers.Carriers,
			MethodTitles: r.Carriers.MethodTitles,
			Trigger:      domain.Trigger(r.Carriers.Trigger),
			ResolvedAt:   r.Carriers.ResolvedAt,
		}.Clone()
		order.Carriers = &rec
	}
	return order
}

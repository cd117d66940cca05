package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

var _ ports.Registry = (*Registry)(nil)

// Registry persists shipping instances in PostgreSQL using GORM.
type Registry struct {
	db *gorm.DB
}

// NewRegistry wires a PostgreSQL-backed registry. Caller manages DB lifecycle.
func NewRegistry(db *gorm.DB) *Registry {
	reg := &Registry{db: db}
	if db != nil {
		_ = db.AutoMigrate(&instanceRecord{})
	}
	return reg
}

type instanceRecord struct {
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

func (instanceRecord) TableName() string { return "shipping_instances" }

func (r *Registry) Save(ctx context.Context, instance *domain.Instance) (*domain.Instance, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("instance is nil")
	}
	record := toRecord(instance)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"method_id":          record.MethodID,
				"title":              record.Title,
				"cost":               record.Cost,
				"free_shipping":      record.FreeShipping,
				"carriers":           record.Carriers,
				"allow_custom":       record.AllowCustom,
				"custom_field_label": record.CustomFieldLabel,
				"updated_at":         gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, domain.InstanceID(record.ID))
}

func (r *Registry) Get(ctx context.Context, id domain.InstanceID) (*domain.Instance, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record instanceRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Registry) List(ctx context.Context) ([]*domain.Instance, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []instanceRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Instance, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Registry) Delete(ctx context.Context, id domain.InstanceID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&instanceRecord{}, int64(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Registry) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres shipping registry not configured")
	}
	return nil
}

func toRecord(inst *domain.Instance) instanceRecord {
	return instanceRecord{
		ID:               int64(inst.ID),
		MethodID:         inst.MethodID,
		Title:            inst.Title,
		Cost:             inst.Cost,
		FreeShipping:     inst.FreeShipping,
		Carriers:         pq.StringArray(append([]string(nil), inst.Carriers...)),
		AllowCustom:      inst.AllowCustom,
		CustomFieldLabel: inst.CustomFieldLabel,
	}
}

func (r instanceRecord) toDomain() *domain.Instance {
	return &domain.Instance{
		ID:               domain.InstanceID(r.ID),
		MethodID:         r.MethodID,
		Title:            r.Title,
		Cost:             r.Cost,
		FreeShipping:     r.FreeShipping,
		Carriers:         append([]string(nil), r.Carriers...),
		AllowCustom:      r.AllowCustom,
		CustomFieldLabel: r.CustomFieldLabel,
	}
}

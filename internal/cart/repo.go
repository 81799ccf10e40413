package cart

import (
	"context"
	"time"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for cart rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// AddQuantity merges quantity into the shopper's row for the product. The
// upsert is a single statement so concurrent adds never lose increments.
func (r *Repository) AddQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`,
		uuid.New(), userID, productID, quantity, now, now,
	).Error
}

// SetQuantity overwrites the quantity on an existing row.
func (r *Repository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes the shopper's row for the product.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindItem returns the shopper's row for the product.
func (r *Repository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var record models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type cartItemRecord struct {
	ProductID uuid.UUID      `gorm:"column:product_id"`
	Name      string         `gorm:"column:name"`
	Images    pq.StringArray `gorm:"column:images;type:text[]"`
	PriceB2C  int            `gorm:"column:price_b2c"`
	PriceB2B  *int           `gorm:"column:price_b2b"`
	Quantity  int            `gorm:"column:quantity"`
	AddedAt   time.Time      `gorm:"column:added_at"`
}

func (rec cartItemRecord) primaryImage() string {
	if len(rec.Images) == 0 {
		return ""
	}
	return rec.Images[0]
}

// ListItems returns the shopper's cart rows joined with catalog data,
// oldest first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID) ([]cartItemRecord, error) {
	var rows []cartItemRecord
	err := r.db.WithContext(ctx).
		Table("cart_items ci").
		Select("ci.product_id, p.name, p.images, p.price_b2c, p.price_b2b, ci.quantity, ci.created_at AS added_at").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListEntries returns the raw cart rows for the shopper, oldest first.
func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteItems removes the shopper's rows for the given products. Rows for
// other products, and for other shoppers, are untouched.
func (r *Repository) DeleteItems(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&models.CartItem{}).Error
}

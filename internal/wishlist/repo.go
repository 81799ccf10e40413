package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrToggleContention is returned when concurrent toggles starve the
// bounded retry loop.
var ErrToggleContention = errors.New("wishlist toggle contention")

const toggleAttempts = 3

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
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

// Toggle flips the wishlist membership for the product. The insert and the
// conditional delete each decide the outcome by affected rows, so two
// concurrent toggles can never both report the same result.
func (r *Repository) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		insert := r.db.WithContext(ctx).Exec(
			`INSERT INTO wishlist_items (id, user_id, product_id, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (user_id, product_id) DO NOTHING`,
			uuid.New(), userID, productID, time.Now().UTC(),
		)
		if insert.Error != nil {
			return false, insert.Error
		}
		if insert.RowsAffected > 0 {
			return true, nil
		}

		del := r.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.WishlistItem{})
		if del.Error != nil {
			return false, del.Error
		}
		if del.RowsAffected > 0 {
			return false, nil
		}
	}
	return false, ErrToggleContention
}

// Contains reports whether the product is on the shopper's wishlist.
func (r *Repository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type wishlistItemRecord struct {
	ProductID uuid.UUID      `gorm:"column:product_id"`
	Name      string         `gorm:"column:name"`
	Images    pq.StringArray `gorm:"column:images;type:text[]"`
	PriceB2C  int            `gorm:"column:price_b2c"`
	PriceB2B  *int           `gorm:"column:price_b2b"`
	IsActive  bool           `gorm:"column:is_active"`
	AddedAt   time.Time      `gorm:"column:added_at"`
}

func (rec wishlistItemRecord) primaryImage() string {
	if len(rec.Images) == 0 {
		return ""
	}
	return rec.Images[0]
}

// ListItems returns the shopper's wishlist joined with catalog data,
// newest first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID) ([]wishlistItemRecord, error) {
	var rows []wishlistItemRecord
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select("wi.product_id, p.name, p.images, p.price_b2c, p.price_b2b, p.is_active, wi.created_at AS added_at").
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("wi.user_id = ?", userID).
		Order("wi.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing.
//
// Prices are stored as whole rupees. PriceB2B is the trade price offered to
// reseller accounts and falls back to PriceB2C when unset.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug        string         `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	Category    string         `gorm:"column:category;not null"`
	Images      pq.StringArray `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	PriceB2C    int            `gorm:"column:price_b2c;not null"`
	PriceB2B    *int           `gorm:"column:price_b2b"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool           `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceFor returns the effective unit price for the given role flag.
func (p Product) PriceFor(reseller bool) int {
	if reseller && p.PriceB2B != nil {
		return *p.PriceB2B
	}
	return p.PriceB2C
}

// PrimaryImage returns the first catalog image, or empty when none exist.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

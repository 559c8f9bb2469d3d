package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents catalog_product table
type Product struct {
	ProductID   uint            `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id,omitempty"`
	SKU         string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,4);not null;default:0" json:"price"`
	Inventory   int             `gorm:"column:inventory;not null;default:0" json:"inventory"`
	IsActive    bool            `gorm:"column:is_active;not null;default:1" json:"is_active"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at,omitempty"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants"`
	Options  []Option  `gorm:"foreignKey:ProductID" json:"variant_options"`
}

func (Product) TableName() string {
	return "catalog_product"
}

// HasVariants reports whether the product is sold through concrete variants
// rather than product-level inventory.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// AvailableInventory returns the stock pool an add-to-cart draws from: the
// variant's own inventory when variantID is given, the product-level count
// otherwise. Second return is false when variantID does not belong to p.
func (p *Product) AvailableInventory(variantID *uint) (int, bool) {
	if variantID == nil {
		return p.Inventory, true
	}
	for i := range p.Variants {
		if p.Variants[i].VariantID == *variantID {
			return p.Variants[i].Inventory, true
		}
	}
	return 0, false
}

package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents quote_item table: one line of a cart. Quantity is capped
// at the owning variant's (or product's) inventory; the cap is enforced by
// the cart service, never by the UI.
type Item struct {
	ItemID    string          `gorm:"column:item_id;type:varchar(36);primaryKey" json:"item_id"`
	CartID    string          `gorm:"column:cart_id;type:varchar(36);index;not null" json:"cart_id,omitempty"`
	ProductID uint            `gorm:"column:product_id;not null" json:"product_id"`
	VariantID *uint           `gorm:"column:variant_id" json:"variant_id,omitempty"`
	Quantity  int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(12,4);not null;default:0" json:"unit_price"`
	Position  int             `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at,omitempty"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Item) TableName() string {
	return "quote_item"
}

// LineTotal returns unit price times quantity.
func (i *Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Matches reports whether the line is for the given product+variant pair.
func (i *Item) Matches(productID uint, variantID *uint) bool {
	if i.ProductID != productID {
		return false
	}
	if (i.VariantID == nil) != (variantID == nil) {
		return false
	}
	return i.VariantID == nil || *i.VariantID == *variantID
}

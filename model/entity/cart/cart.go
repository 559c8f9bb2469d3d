package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart owner kinds. Exactly one cart of each kind may exist at a time for a
// given session/account pairing.
const (
	OwnerKindGuest = "guest"
	OwnerKindUser  = "user"
)

// Cart represents quote table: one shopping cart, guest or user owned.
// Created lazily on first add-to-cart; a guest cart is absorbed into a user
// cart by a transfer.
type Cart struct {
	CartID     string          `gorm:"column:cart_id;type:varchar(36);primaryKey" json:"cart_id"`
	OwnerKind  string          `gorm:"column:owner_kind;type:varchar(8);not null;index:idx_quote_owner,priority:1" json:"owner_kind"`
	OwnerKey   string          `gorm:"column:owner_key;type:varchar(64);not null;index:idx_quote_owner,priority:2" json:"owner_key"`
	TotalItems int             `gorm:"column:total_items;not null;default:0" json:"total_items"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:decimal(20,4);not null;default:0" json:"total_price"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at,omitempty"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Items []Item `gorm:"foreignKey:CartID" json:"items"`
}

func (Cart) TableName() string {
	return "quote"
}

// Recompute refreshes TotalItems and TotalPrice from the item lines.
func (c *Cart) Recompute() {
	items := 0
	total := decimal.Zero
	for i := range c.Items {
		items += c.Items[i].Quantity
		total = total.Add(c.Items[i].LineTotal())
	}
	c.TotalItems = items
	c.TotalPrice = total
}

// FindItem returns the first line matching product+variant, or nil.
func (c *Cart) FindItem(productID uint, variantID *uint) *Item {
	for i := range c.Items {
		if c.Items[i].Matches(productID, variantID) {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no item lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

package catalog

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Variant represents catalog_product_variant table. A variant is one
// purchasable SKU of a product, distinguished by its property values
// (color=red, size=M, ...). Variants are written by catalog import only;
// the storefront reads them.
type Variant struct {
	VariantID    uint              `gorm:"column:variant_id;primaryKey;autoIncrement" json:"variant_id,omitempty"`
	ProductID    uint              `gorm:"column:product_id;index;not null" json:"product_id,omitempty"`
	SKU          string            `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Price        decimal.Decimal   `gorm:"column:price;type:decimal(12,4);not null;default:0" json:"price"`
	SalePrice    decimal.Decimal   `gorm:"column:sale_price;type:decimal(12,4);not null;default:0" json:"sale_price"`
	Inventory    int               `gorm:"column:inventory;not null;default:0" json:"inventory"`
	IsDefault    bool              `gorm:"column:is_default;not null;default:0" json:"is_default"`
	IsActive     bool              `gorm:"column:is_active;not null;default:1" json:"is_active"`
	Properties   datatypes.JSONMap `gorm:"column:properties;type:json" json:"properties"`
	DisplayTitle string            `gorm:"column:display_title;type:varchar(255)" json:"display_title"`
	Position     int               `gorm:"column:position;not null;default:0" json:"position"`
}

func (Variant) TableName() string {
	return "catalog_product_variant"
}

// Property returns the variant's value for a property name ("" if unset).
func (v *Variant) Property(name string) string {
	if v.Properties == nil {
		return ""
	}
	if s, ok := v.Properties[name].(string); ok {
		return s
	}
	return ""
}

// InStock reports whether the variant can be added to a cart.
func (v *Variant) InStock() bool {
	return v.IsActive && v.Inventory > 0
}

// EffectivePrice returns the sale price when one is set, the regular price
// otherwise.
func (v *Variant) EffectivePrice() decimal.Decimal {
	if v.SalePrice.IsPositive() {
		return v.SalePrice
	}
	return v.Price
}

package config

import (
	"gorm.io/gorm"

	cartEntity "storefront.GO/model/entity/cart"
	catalogEntity "storefront.GO/model/entity/catalog"
)

// AutoMigrate creates or updates the cart store schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogEntity.Product{},
		&catalogEntity.Variant{},
		&catalogEntity.Option{},
		&catalogEntity.OptionValue{},
		&cartEntity.Cart{},
		&cartEntity.Item{},
	)
}

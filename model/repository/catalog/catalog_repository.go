package catalog

import (
	"database/sql"

	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
)

type CatalogRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewCatalogRepository(db *gorm.DB) (*CatalogRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{db: db, sqlDB: sqlDB}, nil
}

// GetProduct returns a product with variants and option schema preloaded,
// both in display order.
func (r *CatalogRepository) GetProduct(id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	err := r.db.
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, variant_id")
		}).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, option_id")
		}).
		Preload("Options.Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, value_id")
		}).
		First(&p, "product_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVariant returns a single variant by id.
func (r *CatalogRepository) GetVariant(id uint) (*catalogEntity.Variant, error) {
	var v catalogEntity.Variant
	if err := r.db.First(&v, "variant_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// GetInventory returns the purchasable stock for a product or, when
// variantID is non-nil, for that variant. Uses raw SQL for minimal overhead.
func (r *CatalogRepository) GetInventory(productID uint, variantID *uint) (int, error) {
	var qty sql.NullInt64
	if variantID != nil {
		const q = `SELECT inventory FROM catalog_product_variant WHERE variant_id = ? AND product_id = ? LIMIT 1`
		if err := r.sqlDB.QueryRow(q, *variantID, productID).Scan(&qty); err != nil {
			return 0, err
		}
	} else {
		const q = `SELECT inventory FROM catalog_product WHERE product_id = ? LIMIT 1`
		if err := r.sqlDB.QueryRow(q, productID).Scan(&qty); err != nil {
			return 0, err
		}
	}
	if !qty.Valid {
		return 0, nil
	}
	return int(qty.Int64), nil
}

package cart

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartEntity "storefront.GO/model/entity/cart"
)

type CartRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewCartRepository(db *gorm.DB) (*CartRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &CartRepository{db: db, sqlDB: sqlDB}, nil
}

// DB exposes the underlying gorm handle for transactional services.
func (r *CartRepository) DB() *gorm.DB {
	return r.db
}

// GetByOwner returns the cart for an owner with items in line order, or
// (nil, nil) when none exists.
func (r *CartRepository) GetByOwner(kind, key string) (*cartEntity.Cart, error) {
	return getByOwner(r.db, kind, key)
}

func getByOwner(db *gorm.DB, kind, key string) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, created_at")
		}).
		First(&c, "owner_kind = ? AND owner_key = ?", kind, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate returns the owner's cart, creating an empty one if absent.
func (r *CartRepository) GetOrCreate(kind, key string) (*cartEntity.Cart, error) {
	c, err := r.GetByOwner(kind, key)
	if err != nil || c != nil {
		return c, err
	}
	c = &cartEntity.Cart{
		CartID:     uuid.NewString(),
		OwnerKind:  kind,
		OwnerKey:   key,
		TotalPrice: decimal.Zero,
	}
	if err := r.db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns a cart by primary key, or (nil, nil) when absent.
func (r *CartRepository) GetByID(id string) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, created_at")
		}).
		First(&c, "cart_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetItem returns an item line scoped to its cart, or (nil, nil).
func (r *CartRepository) GetItem(cartID, itemID string) (*cartEntity.Item, error) {
	var it cartEntity.Item
	err := r.db.First(&it, "cart_id = ? AND item_id = ?", cartID, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Exists answers the cheap "does a cart with items exist" check without
// loading item rows. Uses raw SQL for minimal overhead.
func (r *CartRepository) Exists(kind, key string) (cartEntity.ExistsResult, error) {
	const q = `SELECT q.total_items, q.total_price FROM quote q WHERE q.owner_kind = ? AND q.owner_key = ? LIMIT 1`
	var items sql.NullInt64
	var total sql.NullString
	err := r.sqlDB.QueryRow(q, kind, key).Scan(&items, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return cartEntity.ExistsResult{Total: decimal.Zero}, nil
	}
	if err != nil {
		return cartEntity.ExistsResult{}, err
	}
	res := cartEntity.ExistsResult{
		Exists:    items.Valid && items.Int64 > 0,
		ItemCount: int(items.Int64),
		Total:     decimal.Zero,
	}
	if total.Valid {
		if d, err := decimal.NewFromString(total.String); err == nil {
			res.Total = d
		}
	}
	return res, nil
}

// SaveCart persists header totals and all item lines.
func (r *CartRepository) SaveCart(c *cartEntity.Cart) error {
	return saveCart(r.db, c)
}

func saveCart(db *gorm.DB, c *cartEntity.Cart) error {
	c.Recompute()
	if err := db.Save(c).Error; err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].CartID = c.CartID
		if err := db.Save(&c.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes one line and refreshes the header totals.
func (r *CartRepository) DeleteItem(c *cartEntity.Cart, itemID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&cartEntity.Item{}, "cart_id = ? AND item_id = ?", c.CartID, itemID).Error; err != nil {
			return err
		}
		kept := c.Items[:0]
		for i := range c.Items {
			if c.Items[i].ItemID != itemID {
				kept = append(kept, c.Items[i])
			}
		}
		c.Items = kept
		c.Recompute()
		return tx.Model(c).Updates(map[string]interface{}{
			"total_items": c.TotalItems,
			"total_price": c.TotalPrice,
		}).Error
	})
}

// DeleteCart removes a cart and all of its lines.
func (r *CartRepository) DeleteCart(id string) error {
	return deleteCart(r.db, id)
}

func deleteCart(db *gorm.DB, id string) error {
	if err := db.Delete(&cartEntity.Item{}, "cart_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&cartEntity.Cart{}, "cart_id = ?", id).Error
}

// DeleteIdleGuestCarts removes guest carts not touched since the cutoff.
// Returns the number of carts removed. Run from the cleanup cron job.
func (r *CartRepository) DeleteIdleGuestCarts(cutoff time.Time) (int64, error) {
	var ids []string
	err := r.db.Model(&cartEntity.Cart{}).
		Where("owner_kind = ? AND updated_at < ?", cartEntity.OwnerKindGuest, cutoff).
		Pluck("cart_id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&cartEntity.Item{}, "cart_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Delete(&cartEntity.Cart{}, "cart_id IN ?", ids).Error
	})
	return int64(len(ids)), err
}

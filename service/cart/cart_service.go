package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartEntity "storefront.GO/model/entity/cart"
	cartRepo "storefront.GO/model/repository/cart"
	catalogRepo "storefront.GO/model/repository/catalog"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrCartNotFound    = errors.New("cart: cart not found")
	ErrItemNotFound    = errors.New("cart: item not found")
	ErrProductNotFound = errors.New("cart: product not found")
)

// OutOfStockError reports an add or update that asked for more units than
// the variant (or product) has.
type OutOfStockError struct {
	ProductID uint
	VariantID *uint
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("cart: requested %d of product %d, only %d in stock", e.Requested, e.ProductID, e.Available)
}

// Service owns all cart mutations. Every write revalidates quantity against
// catalog inventory; the storefront never mutates cart rows directly.
type Service struct {
	db      *gorm.DB
	carts   *cartRepo.CartRepository
	catalog *catalogRepo.CatalogRepository
}

func NewService(db *gorm.DB) (*Service, error) {
	carts, err := cartRepo.NewCartRepository(db)
	if err != nil {
		return nil, err
	}
	catalog, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		return nil, err
	}
	return &Service{db: db, carts: carts, catalog: catalog}, nil
}

// Carts exposes the repository for read-only callers (existence checks).
func (s *Service) Carts() *cartRepo.CartRepository {
	return s.carts
}

// GetCart returns the owner's cart. A missing cart comes back as an empty,
// unpersisted cart; carts are only created on the first add.
func (s *Service) GetCart(kind, key string) (*cartEntity.Cart, error) {
	c, err := s.carts.GetByOwner(kind, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &cartEntity.Cart{OwnerKind: kind, OwnerKey: key, Items: []cartEntity.Item{}}
	}
	return c, nil
}

// AddItem appends quantity units of a product (or one of its variants) to
// the owner's cart, creating the cart if this is the first add. An existing
// line for the same product+variant has its quantity increased instead.
func (s *Service) AddItem(kind, key string, productID uint, quantity int, variantID *uint) (*cartEntity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	available, ok := p.AvailableInventory(variantID)
	if !ok {
		return nil, ErrProductNotFound
	}

	c, err := s.carts.GetOrCreate(kind, key)
	if err != nil {
		return nil, err
	}

	unitPrice := p.Price
	if variantID != nil {
		for i := range p.Variants {
			if p.Variants[i].VariantID == *variantID {
				unitPrice = p.Variants[i].EffectivePrice()
			}
		}
	}

	if line := c.FindItem(productID, variantID); line != nil {
		if line.Quantity+quantity > available {
			return nil, &OutOfStockError{ProductID: productID, VariantID: variantID, Requested: line.Quantity + quantity, Available: available}
		}
		line.Quantity += quantity
	} else {
		if quantity > available {
			return nil, &OutOfStockError{ProductID: productID, VariantID: variantID, Requested: quantity, Available: available}
		}
		c.Items = append(c.Items, cartEntity.Item{
			ItemID:    uuid.NewString(),
			CartID:    c.CartID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Position:  len(c.Items),
		})
	}
	if err := s.carts.SaveCart(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateItemQuantity sets the quantity of one line, revalidated against
// current inventory.
func (s *Service) UpdateItemQuantity(kind, key, itemID string, quantity int) (*cartEntity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.carts.GetByOwner(kind, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}
	var line *cartEntity.Item
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			line = &c.Items[i]
		}
	}
	if line == nil {
		return nil, ErrItemNotFound
	}
	available, err := s.catalog.GetInventory(line.ProductID, line.VariantID)
	if err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, &OutOfStockError{ProductID: line.ProductID, VariantID: line.VariantID, Requested: quantity, Available: available}
	}
	line.Quantity = quantity
	if err := s.carts.SaveCart(c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem deletes one line and returns the updated cart.
func (s *Service) RemoveItem(kind, key, itemID string) (*cartEntity.Cart, error) {
	c, err := s.carts.GetByOwner(kind, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}
	found := false
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			found = true
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}
	if err := s.carts.DeleteItem(c, itemID); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties and destroys the owner's cart.
func (s *Service) Clear(kind, key string) (*cartEntity.Cart, error) {
	c, err := s.carts.GetByOwner(kind, key)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if err := s.carts.DeleteCart(c.CartID); err != nil {
			return nil, err
		}
	}
	return &cartEntity.Cart{OwnerKind: kind, OwnerKey: key, Items: []cartEntity.Item{}}, nil
}

package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartEntity "storefront.GO/model/entity/cart"
)

var ErrInvalidTransferAction = errors.New("cart: invalid transfer action")

// Transfer reconciles the source guest cart into the target user's cart per
// the requested action and returns the resulting user cart. This is the
// server half of the cart identity handshake: the client never discards a
// guest cart on its own, it only ever asks for one of these three moves.
//
// Strategy contract:
//   - merge: every guest line is appended to the user cart, duplicates and
//     all. Two lines for the same SKU stay two lines. Guest cart is removed.
//   - replace: the user cart keeps its identity but its lines are discarded
//     and the guest lines adopted wholesale. Guest cart is removed.
//   - copy: guest lines are added into the user cart, summing quantities
//     into an existing line for the same product+variant (capped at current
//     inventory). The guest cart survives and stays queryable.
func (s *Service) Transfer(req cartEntity.TransferRequest) (*cartEntity.Cart, error) {
	if !req.Action.Valid() {
		return nil, ErrInvalidTransferAction
	}
	source, err := s.carts.GetByID(req.SourceCartID)
	if err != nil {
		return nil, err
	}
	if source == nil || source.OwnerKind != cartEntity.OwnerKindGuest {
		return nil, ErrCartNotFound
	}
	target, err := s.carts.GetOrCreate(cartEntity.OwnerKindUser, req.TargetUserID)
	if err != nil {
		return nil, err
	}
	intent := cartEntity.TransferIntent{GuestCart: source, UserCart: target, Action: req.Action}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch intent.Action {
		case cartEntity.ActionMerge:
			return s.mergeInto(tx, intent.GuestCart, intent.UserCart, true)
		case cartEntity.ActionReplace:
			return s.replaceWith(tx, intent.GuestCart, intent.UserCart)
		case cartEntity.ActionCopy:
			return s.copyInto(tx, intent.GuestCart, intent.UserCart)
		}
		return ErrInvalidTransferAction
	})
	if err != nil {
		return nil, fmt.Errorf("transfer %s: %w", req.Action, err)
	}
	return s.carts.GetByID(target.CartID)
}

// mergeInto appends every guest line to the user cart as a fresh line.
// Collapsing is deliberately not done here.
func (s *Service) mergeInto(tx *gorm.DB, guest, user *cartEntity.Cart, retireGuest bool) error {
	pos := len(user.Items)
	for i := range guest.Items {
		src := guest.Items[i]
		user.Items = append(user.Items, cartEntity.Item{
			ItemID:    uuid.NewString(),
			CartID:    user.CartID,
			ProductID: src.ProductID,
			VariantID: src.VariantID,
			Quantity:  src.Quantity,
			UnitPrice: src.UnitPrice,
			Position:  pos,
		})
		pos++
	}
	if err := saveCartTx(tx, user); err != nil {
		return err
	}
	if retireGuest {
		return deleteCartTx(tx, guest.CartID)
	}
	return nil
}

// replaceWith discards the user lines and adopts the guest lines. The user
// cart id survives; callers only care about the final item list.
func (s *Service) replaceWith(tx *gorm.DB, guest, user *cartEntity.Cart) error {
	if err := tx.Delete(&cartEntity.Item{}, "cart_id = ?", user.CartID).Error; err != nil {
		return err
	}
	user.Items = nil
	return s.mergeInto(tx, guest, user, true)
}

// copyInto adds guest lines into the user cart, summing duplicates, and
// leaves the guest cart alone.
func (s *Service) copyInto(tx *gorm.DB, guest, user *cartEntity.Cart) error {
	pos := len(user.Items)
	for i := range guest.Items {
		src := guest.Items[i]
		if line := user.FindItem(src.ProductID, src.VariantID); line != nil {
			line.Quantity += src.Quantity
			if available, err := s.catalog.GetInventory(src.ProductID, src.VariantID); err == nil && line.Quantity > available {
				line.Quantity = available
			}
			continue
		}
		user.Items = append(user.Items, cartEntity.Item{
			ItemID:    uuid.NewString(),
			CartID:    user.CartID,
			ProductID: src.ProductID,
			VariantID: src.VariantID,
			Quantity:  src.Quantity,
			UnitPrice: src.UnitPrice,
			Position:  pos,
		})
		pos++
	}
	return saveCartTx(tx, user)
}

func saveCartTx(tx *gorm.DB, c *cartEntity.Cart) error {
	c.Recompute()
	if err := tx.Save(c).Error; err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].CartID = c.CartID
		if err := tx.Save(&c.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteCartTx(tx *gorm.DB, id string) error {
	if err := tx.Delete(&cartEntity.Item{}, "cart_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&cartEntity.Cart{}, "cart_id = ?", id).Error
}

package cart

import "github.com/shopspring/decimal"

// TransferAction selects how a guest cart is reconciled into a user cart.
type TransferAction string

const (
	// ActionMerge appends every guest line to the user cart. Duplicate
	// product/variant lines are kept as separate lines, never summed.
	ActionMerge TransferAction = "merge"
	// ActionReplace discards the user cart's lines and adopts the guest
	// cart's lines wholesale.
	ActionReplace TransferAction = "replace"
	// ActionCopy adds guest lines to the user cart, summing quantities into
	// an existing line for the same product/variant, and leaves the guest
	// cart queryable afterwards.
	ActionCopy TransferAction = "copy"
)

// Valid reports whether a is one of the three transfer actions.
func (a TransferAction) Valid() bool {
	switch a {
	case ActionMerge, ActionReplace, ActionCopy:
		return true
	}
	return false
}

// TransferIntent pairs the two live carts with the chosen action. Consumed
// once by the transfer service and discarded.
type TransferIntent struct {
	GuestCart *Cart
	UserCart  *Cart
	Action    TransferAction
}

// TransferRequest is the wire body of POST /cart/transfer.
type TransferRequest struct {
	SourceCartID string         `json:"source_cart_id"`
	TargetUserID string         `json:"target_user_id"`
	Action       TransferAction `json:"action"`
}

// ExistsResult is the wire body of the cheap cart existence checks. Total is
// included so a conflict prompt can show cart value without a full fetch.
type ExistsResult struct {
	Exists    bool            `json:"exists"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

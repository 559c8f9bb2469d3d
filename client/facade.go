package client

import (
	"context"
	"sync"

	cartEntity "storefront.GO/model/entity/cart"
)

// Facade is the single object cart-aware views bind to. It forwards
// mutations to the store, mirrors the returned cart as local state, and
// exposes the reconciler's conflict handling. Collaborators are injected;
// there is no ambient singleton.
//
// Responses are committed under a generation counter: any call started
// before the most recent identity change or invalidation is discarded when
// it lands, so a stale response can never overwrite newer cart state.
type Facade struct {
	store   Store
	catalog CatalogSource
	rec     *Reconciler

	mu       sync.Mutex
	cart     *cartEntity.Cart
	inflight int
	gen      uint64
}

func NewFacade(store Store, catalog CatalogSource, rec *Reconciler) *Facade {
	return &Facade{store: store, catalog: catalog, rec: rec}
}

// Cart returns the last cart state received from the store (nil before the
// first load).
func (f *Facade) Cart() *cartEntity.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cart
}

// Loading reports whether any cart call is in flight. In-flight calls are
// counted, so an older call landing does not drop the flag while a newer
// one is still out.
func (f *Facade) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight > 0
}

// begin marks a call in flight and returns its generation ticket.
func (f *Facade) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight++
	return f.gen
}

// commit installs a response unless the generation moved on meanwhile.
func (f *Facade) commit(ticket uint64, c *cartEntity.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if ticket != f.gen {
		return
	}
	if c != nil {
		f.cart = c
	}
}

// InvalidatePending discards the results of every call currently in
// flight. Call when the owning view goes away or identity changes.
func (f *Facade) InvalidatePending() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
}

// Refresh reloads the active cart from the store.
func (f *Facade) Refresh(ctx context.Context) (*cartEntity.Cart, error) {
	ticket := f.begin()
	c, err := f.store.GetCart(ctx)
	f.commit(ticket, c)
	return c, err
}

// HandleAuthChange records the new user identity ("" on sign-out), checks
// for a cart conflict, and reloads the active cart. Returns the resulting
// reconciler state so the caller knows whether to present the strategy
// prompt.
func (f *Facade) HandleAuthChange(ctx context.Context, userID string) (State, error) {
	f.InvalidatePending()
	f.rec.SetUser(userID)
	state := f.rec.CheckConflicts(ctx, false)
	if state == StateConflictDetected {
		// hold off the reload: which cart is active depends on the
		// shopper's strategy choice
		return state, nil
	}
	_, err := f.Refresh(ctx)
	return state, err
}

// AddItem adds quantity units of a product (or variant) to the active
// cart. Quantity and inventory are validated before the store call so the
// shopper gets an inline message without a failed round trip; the store
// revalidates regardless.
func (f *Facade) AddItem(ctx context.Context, productID uint, quantity int, variantID *uint) (*cartEntity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := f.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	available, ok := p.AvailableInventory(variantID)
	if !ok {
		return nil, ErrNotFound
	}
	if quantity > available {
		return nil, &OutOfStockError{ProductID: productID, VariantID: variantID, Requested: quantity, Available: available}
	}

	ticket := f.begin()
	c, err := f.store.AddItem(ctx, productID, quantity, variantID)
	f.commit(ticket, c)
	return c, err
}

// UpdateQuantity sets one line's quantity. The server's response is the new
// truth: two back-to-back updates never compound a stale client-side base,
// because each response replaces the whole cart.
func (f *Facade) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*cartEntity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	ticket := f.begin()
	c, err := f.store.UpdateItemQuantity(ctx, itemID, quantity)
	f.commit(ticket, c)
	return c, err
}

// RemoveItem deletes one line from the active cart.
func (f *Facade) RemoveItem(ctx context.Context, itemID string) (*cartEntity.Cart, error) {
	ticket := f.begin()
	c, err := f.store.RemoveItem(ctx, itemID)
	f.commit(ticket, c)
	return c, err
}

// Clear empties the active cart.
func (f *Facade) Clear(ctx context.Context) (*cartEntity.Cart, error) {
	ticket := f.begin()
	c, err := f.store.ClearCart(ctx)
	f.commit(ticket, c)
	return c, err
}

// ConflictDetected mirrors the reconciler's flag for the UI.
func (f *Facade) ConflictDetected() bool {
	return f.rec.ConflictDetected()
}

// CheckConflicts re-runs conflict detection (cheap; debounced).
func (f *Facade) CheckConflicts(ctx context.Context, force bool) State {
	return f.rec.CheckConflicts(ctx, force)
}

// ResolveConflict executes the shopper's chosen strategy and installs the
// resulting user cart as the active cart.
func (f *Facade) ResolveConflict(ctx context.Context, action cartEntity.TransferAction) (*cartEntity.Cart, error) {
	ticket := f.begin()
	c, err := f.rec.Resolve(ctx, action)
	f.commit(ticket, c)
	return c, err
}

package client

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"storefront.GO/core/cache"
	cartEntity "storefront.GO/model/entity/cart"
)

// State is the reconciler's position in the guest/user cart handshake.
type State int

const (
	// StateNoConflict: zero or one relevant cart exists; nothing to ask.
	StateNoConflict State = iota
	// StateConflictDetected: both a guest and a user cart exist with items;
	// the shopper must pick a transfer strategy.
	StateConflictDetected
	// StateResolving: a transfer is in flight; further Resolve calls are
	// no-ops until it settles.
	StateResolving
)

func (s State) String() string {
	switch s {
	case StateConflictDetected:
		return "conflict_detected"
	case StateResolving:
		return "resolving"
	default:
		return "no_conflict"
	}
}

// conflictTTLSeconds debounces CheckConflicts: several cart-aware views
// mounting on the same auth transition should cost one pair of existence
// checks, not one per view.
const conflictTTLSeconds = 5

// Reconciler owns the guest/user cart duality. It decides which cart is
// active, detects when both exist with items, and executes the shopper's
// chosen transfer strategy. The guest cart is never discarded client-side;
// only a confirmed server transfer retires it.
type Reconciler struct {
	store  Store
	tokens TokenStore
	checks *cache.Cache

	mu     sync.Mutex
	state  State
	userID string
}

func NewReconciler(store Store, tokens TokenStore) *Reconciler {
	return &Reconciler{
		store:  store,
		tokens: tokens,
		checks: cache.NewCache(),
	}
}

// State returns the current reconciliation state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ConflictDetected reports whether the shopper must pick a strategy.
func (r *Reconciler) ConflictDetected() bool {
	return r.State() == StateConflictDetected
}

// SetUser records the authenticated user id ("" on sign-out). Conflict
// results are cached per (guestToken, userID) pair, so an identity change
// naturally forces a fresh check.
func (r *Reconciler) SetUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userID = userID
	if r.state != StateResolving {
		r.state = StateNoConflict
	}
}

func conflictKey(token, userID string) []interface{} {
	return []interface{}{"conflict", token, userID}
}

// CheckConflicts queries the store for guest-cart-with-items and
// user-cart-with-items and flags a conflict when both exist. Results are
// reused within a short TTL unless force is set. A failed check fails open:
// blocking the shopper over a diagnostics call is worse than a missed
// prompt, so it logs and reports no conflict.
func (r *Reconciler) CheckConflicts(ctx context.Context, force bool) State {
	r.mu.Lock()
	if r.state == StateResolving {
		r.mu.Unlock()
		return StateResolving
	}
	userID := r.userID
	r.mu.Unlock()

	token, err := r.tokens.Current()
	if err != nil {
		log.Printf("cart: conflict check: guest token: %v", err)
		return r.setState(StateNoConflict)
	}
	if token == "" || userID == "" {
		// only one identity in play; the single cart (if any) is active
		return r.setState(StateNoConflict)
	}

	key := conflictKey(token, userID)
	if !force {
		if v, ok := r.checks.GetN(key...); ok {
			if s, ok := v.(State); ok {
				return r.setState(s)
			}
		}
	}

	var guest, user cartEntity.ExistsResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guest, err = r.store.GuestCartExists(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = r.store.UserCartExists(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("cart: conflict check failed, assuming no conflict: %v", err)
		return r.setState(StateNoConflict)
	}

	state := StateNoConflict
	if guest.Exists && user.Exists {
		state = StateConflictDetected
	}
	r.checks.SetN(key, state, conflictTTLSeconds, nil)
	return r.setState(state)
}

func (r *Reconciler) setState(s State) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateResolving {
		r.state = s
	}
	return r.state
}

// Resolve executes one transfer strategy. Only legal from
// StateConflictDetected; a concurrent call while resolving returns
// ErrResolveInFlight and does nothing. On failure the state returns to
// StateConflictDetected so the shopper can retry or switch strategy.
func (r *Reconciler) Resolve(ctx context.Context, action cartEntity.TransferAction) (*cartEntity.Cart, error) {
	r.mu.Lock()
	switch r.state {
	case StateResolving:
		r.mu.Unlock()
		return nil, ErrResolveInFlight
	case StateConflictDetected:
		// proceed
	default:
		r.mu.Unlock()
		return nil, ErrNoConflict
	}
	r.state = StateResolving
	userID := r.userID
	r.mu.Unlock()

	result, err := r.transfer(ctx, action, userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateConflictDetected
		return nil, err
	}
	r.state = StateNoConflict
	return result, nil
}

func (r *Reconciler) transfer(ctx context.Context, action cartEntity.TransferAction, userID string) (*cartEntity.Cart, error) {
	token, err := r.tokens.Current()
	if err != nil || token == "" {
		return nil, &TransferFailedError{Action: action, Err: ErrNotFound}
	}
	guestCart, err := r.store.GuestCart(ctx)
	if err != nil {
		return nil, &TransferFailedError{Action: action, Err: err}
	}
	if guestCart.CartID == "" {
		return nil, &TransferFailedError{Action: action, Err: ErrNotFound}
	}

	result, err := r.store.Transfer(ctx, cartEntity.TransferRequest{
		SourceCartID: guestCart.CartID,
		TargetUserID: userID,
		Action:       action,
	})
	if err != nil {
		return nil, &TransferFailedError{Action: action, Err: err}
	}

	// The pair is settled; don't re-flag it on the next check. For copy the
	// guest cart stays queryable, so the marker (not the token) is what
	// keeps the prompt from reappearing.
	r.checks.SetN(conflictKey(token, userID), StateNoConflict, 0, nil)
	if action != cartEntity.ActionCopy {
		if err := r.tokens.Retire(); err != nil {
			log.Printf("cart: retiring guest token after %s: %v", action, err)
		}
	}
	return result, nil
}

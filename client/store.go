package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront.GO/core/auth"
	cartEntity "storefront.GO/model/entity/cart"
	catalogEntity "storefront.GO/model/entity/catalog"
)

// Store is the cart store contract the reconciler and facade depend on.
// HTTPClient implements it against the REST API; tests substitute fakes.
type Store interface {
	GetCart(ctx context.Context) (*cartEntity.Cart, error)
	// GuestCart fetches the guest-token cart even when a user is signed in.
	// The reconciler needs it to learn the transfer source cart id.
	GuestCart(ctx context.Context) (*cartEntity.Cart, error)
	AddItem(ctx context.Context, productID uint, quantity int, variantID *uint) (*cartEntity.Cart, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*cartEntity.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*cartEntity.Cart, error)
	ClearCart(ctx context.Context) (*cartEntity.Cart, error)
	GuestCartExists(ctx context.Context) (cartEntity.ExistsResult, error)
	UserCartExists(ctx context.Context) (cartEntity.ExistsResult, error)
	Transfer(ctx context.Context, req cartEntity.TransferRequest) (*cartEntity.Cart, error)
}

// CatalogSource is the read-only catalog collaborator.
type CatalogSource interface {
	GetProduct(ctx context.Context, id uint) (*catalogEntity.Product, error)
}

// HTTPClient talks JSON over HTTP to the cart store and catalog. Identity
// travels as headers: the guest token always (when one exists), the user
// id + signature after SetUser.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore

	mu      sync.RWMutex
	userID  string
	userSig string
}

func NewHTTPClient(baseURL string, tokens TokenStore) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
	}
}

// SetUser attaches the signed-in user identity to subsequent requests.
// Signature comes from the auth layer (HMAC of the user id, see
// auth.SignUserID).
func (h *HTTPClient) SetUser(userID, signature string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.userID = userID
	h.userSig = signature
}

// ClearUser drops the user identity, reverting to guest-only requests.
func (h *HTTPClient) ClearUser() {
	h.SetUser("", "")
}

// UserID returns the currently attached user id ("" when signed out).
func (h *HTTPClient) UserID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.userID
}

// identityMode selects which headers a request carries.
type identityMode int

const (
	identityPrimary identityMode = iota // user when signed in, guest otherwise
	identityGuestOnly
	identityUserOnly
)

func (h *HTTPClient) do(ctx context.Context, method, path string, mode identityMode, ensureToken bool, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if mode != identityUserOnly {
		var token string
		if ensureToken {
			token, err = h.tokens.Ensure()
		} else {
			token, err = h.tokens.Current()
		}
		if err != nil {
			return fmt.Errorf("guest token: %w", err)
		}
		if token != "" {
			req.Header.Set(auth.HeaderGuestToken, token)
		}
	}
	if mode != identityGuestOnly {
		h.mu.RLock()
		if h.userID != "" {
			req.Header.Set(auth.HeaderUserID, h.userID)
			if h.userSig != "" {
				req.Header.Set(auth.HeaderUserSignature, h.userSig)
			}
		}
		h.mu.RUnlock()
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError maps wire error codes back onto the client taxonomy.
func decodeError(resp *http.Response) error {
	var body struct {
		Error     string `json:"error"`
		Code      string `json:"code"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	switch body.Code {
	case "invalid_quantity":
		return ErrInvalidQuantity
	case "out_of_stock":
		return &OutOfStockError{Requested: body.Requested, Available: body.Available}
	case "not_found":
		return ErrNotFound
	}
	msg := body.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Code: body.Code, Message: msg}
}

func (h *HTTPClient) GetCart(ctx context.Context) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	if err := h.do(ctx, http.MethodGet, "/api/cart", identityPrimary, false, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) GuestCart(ctx context.Context) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	if err := h.do(ctx, http.MethodGet, "/api/cart", identityGuestOnly, false, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) AddItem(ctx context.Context, productID uint, quantity int, variantID *uint) (*cartEntity.Cart, error) {
	body := map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	}
	if variantID != nil {
		body["variant_id"] = *variantID
	}
	var c cartEntity.Cart
	// first anonymous add mints the guest token
	if err := h.do(ctx, http.MethodPost, "/api/cart/items", identityPrimary, h.UserID() == "", body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	body := map[string]int{"quantity": quantity}
	if err := h.do(ctx, http.MethodPatch, "/api/cart/items/"+itemID, identityPrimary, false, body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) RemoveItem(ctx context.Context, itemID string) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	if err := h.do(ctx, http.MethodDelete, "/api/cart/items/"+itemID, identityPrimary, false, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) ClearCart(ctx context.Context) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	if err := h.do(ctx, http.MethodDelete, "/api/cart", identityPrimary, false, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) GuestCartExists(ctx context.Context) (cartEntity.ExistsResult, error) {
	var res cartEntity.ExistsResult
	err := h.do(ctx, http.MethodGet, "/api/cart/guest-exists", identityGuestOnly, false, nil, &res)
	return res, err
}

func (h *HTTPClient) UserCartExists(ctx context.Context) (cartEntity.ExistsResult, error) {
	var res cartEntity.ExistsResult
	err := h.do(ctx, http.MethodGet, "/api/cart/user-exists", identityUserOnly, false, nil, &res)
	return res, err
}

func (h *HTTPClient) Transfer(ctx context.Context, req cartEntity.TransferRequest) (*cartEntity.Cart, error) {
	var c cartEntity.Cart
	if err := h.do(ctx, http.MethodPost, "/api/cart/transfer", identityPrimary, false, req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) GetProduct(ctx context.Context, id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), identityPrimary, false, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

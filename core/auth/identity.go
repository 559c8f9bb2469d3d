package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/labstack/echo/v4"

	"storefront.GO/config"
	cartEntity "storefront.GO/model/entity/cart"
)

// Shopper identity headers. A request may carry both (signed-in shopper who
// still holds a guest token); the user identity wins as the primary one.
const (
	HeaderGuestToken    = "X-Guest-Token"
	HeaderUserID        = "X-User-Id"
	HeaderUserSignature = "X-User-Signature"
)

var ErrNoIdentity = errors.New("auth: request carries no shopper identity")

// Shopper is the caller identity resolved from request headers.
type Shopper struct {
	Kind       string // cart owner kind the primary identity maps to
	Key        string // owner key: user id or guest token
	GuestToken string // guest token if the request carried one
	UserID     string // verified user id if the request carried one
}

func getCryptKey() string {
	return config.GetEnv("STORE_CRYPT_KEY", "")
}

// verifyUserSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyUserSignature(userID, signature, cryptKey string) bool {
	if cryptKey == "" || userID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(userID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignUserID produces the signature a client must send alongside X-User-Id.
// Exposed for the CLI and tests.
func SignUserID(userID, cryptKey string) string {
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ShopperFrom resolves the caller identity. User identity requires a valid
// signature when STORE_CRYPT_KEY is set; without a crypt key the id header
// is trusted as-is (dev mode). Falls back to the guest token.
func ShopperFrom(c echo.Context) (*Shopper, error) {
	s := &Shopper{
		GuestToken: c.Request().Header.Get(HeaderGuestToken),
	}

	userID := c.Request().Header.Get(HeaderUserID)
	if userID != "" {
		cryptKey := getCryptKey()
		if cryptKey == "" || verifyUserSignature(userID, c.Request().Header.Get(HeaderUserSignature), cryptKey) {
			s.UserID = userID
		}
	}

	switch {
	case s.UserID != "":
		s.Kind = cartEntity.OwnerKindUser
		s.Key = s.UserID
	case s.GuestToken != "":
		s.Kind = cartEntity.OwnerKindGuest
		s.Key = s.GuestToken
	default:
		return nil, ErrNoIdentity
	}
	return s, nil
}

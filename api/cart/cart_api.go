package cart

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront.GO/api"
	"storefront.GO/core/auth"
	cartEntity "storefront.GO/model/entity/cart"
	cartService "storefront.GO/service/cart"
)

func init() {
	api.RegisterModule(RegisterCartRoutes)
}

type addItemRequest struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	VariantID *uint `json:"variant_id,omitempty"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// RegisterCartRoutes wires the cart store endpoints onto the /api group.
func RegisterCartRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc, svcErr := cartService.NewService(db)
	getService := func() (*cartService.Service, error) {
		return svc, svcErr
	}
	// Errors come back as *echo.HTTPError so callers can return them
	// unwritten; writing here would leave callers with a nil error and
	// a nil shopper.
	serviceAndShopper := func(c echo.Context) (*cartService.Service, *auth.Shopper, error) {
		if svcErr != nil {
			return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"error": svcErr.Error(), "code": "internal"})
		}
		shopper, err := auth.ShopperFrom(c)
		if err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": err.Error(), "code": "no_identity"})
		}
		return svc, shopper, nil
	}

	g := apiGroup.Group("/cart")

	// GET /api/cart returns the current cart for the caller identity
	g.GET("", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		crt, err := svc.GetCart(shopper.Kind, shopper.Key)
		if err != nil {
			return cartError(c, err)
		}
		return c.JSON(http.StatusOK, crt)
	})

	// POST /api/cart/items
	g.POST("/items", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		var body addItemRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "bad_request"})
		}
		crt, err := svc.AddItem(shopper.Kind, shopper.Key, body.ProductID, body.Quantity, body.VariantID)
		if err != nil {
			return cartError(c, err)
		}
		invalidateExists(shopper.Kind, shopper.Key)
		return c.JSON(http.StatusOK, crt)
	})

	// PATCH /api/cart/items/:itemId
	g.PATCH("/items/:itemId", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		var body updateItemRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "bad_request"})
		}
		crt, err := svc.UpdateItemQuantity(shopper.Kind, shopper.Key, c.Param("itemId"), body.Quantity)
		if err != nil {
			return cartError(c, err)
		}
		invalidateExists(shopper.Kind, shopper.Key)
		return c.JSON(http.StatusOK, crt)
	})

	// DELETE /api/cart/items/:itemId
	g.DELETE("/items/:itemId", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		crt, err := svc.RemoveItem(shopper.Kind, shopper.Key, c.Param("itemId"))
		if err != nil {
			return cartError(c, err)
		}
		invalidateExists(shopper.Kind, shopper.Key)
		return c.JSON(http.StatusOK, crt)
	})

	// DELETE /api/cart empties and destroys the caller cart
	g.DELETE("", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		crt, err := svc.Clear(shopper.Kind, shopper.Key)
		if err != nil {
			return cartError(c, err)
		}
		invalidateExists(shopper.Kind, shopper.Key)
		return c.JSON(http.StatusOK, crt)
	})

	// GET /api/cart/guest-exists is a cheap check needing only the guest token
	g.GET("/guest-exists", func(c echo.Context) error {
		svc, err := getService()
		if err != nil {
			return cartError(c, err)
		}
		token := c.Request().Header.Get(auth.HeaderGuestToken)
		if token == "" {
			return c.JSON(http.StatusOK, cartEntity.ExistsResult{})
		}
		res, err := cachedExists(svc, cartEntity.OwnerKindGuest, token)
		if err != nil {
			return cartError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/cart/user-exists is the cheap check against the signed-in user
	g.GET("/user-exists", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		if shopper.UserID == "" {
			return c.JSON(http.StatusOK, cartEntity.ExistsResult{})
		}
		res, err := cachedExists(svc, cartEntity.OwnerKindUser, shopper.UserID)
		if err != nil {
			return cartError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	// POST /api/cart/transfer reconciles the guest cart into the user cart
	g.POST("/transfer", func(c echo.Context) error {
		svc, shopper, err := serviceAndShopper(c)
		if err != nil {
			return err
		}
		var body cartEntity.TransferRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "bad_request"})
		}
		if shopper.UserID == "" || body.TargetUserID != shopper.UserID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "transfer target must be the authenticated user", "code": "forbidden"})
		}
		source, err := svc.Carts().GetByID(body.SourceCartID)
		if err != nil {
			return cartError(c, err)
		}
		if source == nil {
			return cartError(c, cartService.ErrCartNotFound)
		}
		if shopper.GuestToken == "" || source.OwnerKey != shopper.GuestToken {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "caller does not hold the source cart token", "code": "forbidden"})
		}
		crt, err := svc.Transfer(body)
		if err != nil {
			return cartError(c, err)
		}
		invalidateExists(cartEntity.OwnerKindGuest, shopper.GuestToken)
		invalidateExists(cartEntity.OwnerKindUser, shopper.UserID)
		return c.JSON(http.StatusOK, crt)
	})
}

// cartError maps service errors onto wire codes the client decodes back
// into its own error taxonomy.
func cartError(c echo.Context, err error) error {
	var oos *cartService.OutOfStockError
	switch {
	case errors.Is(err, cartService.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "invalid_quantity"})
	case errors.As(err, &oos):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     oos.Error(),
			"code":      "out_of_stock",
			"available": oos.Available,
			"requested": oos.Requested,
		})
	case errors.Is(err, cartService.ErrCartNotFound),
		errors.Is(err, cartService.ErrItemNotFound),
		errors.Is(err, cartService.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, cartService.ErrInvalidTransferAction):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "invalid_action"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "code": "internal"})
	}
}

package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront.GO/api"
	catalogRepo "storefront.GO/model/repository/catalog"
	catalogService "storefront.GO/service/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

// RegisterCatalogRoutes wires product read and catalog import endpoints.
func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, repoErr := catalogRepo.NewCatalogRepository(db)

	// GET /api/products/:id returns the product with variants[] and option schema
	apiGroup.GET("/products/:id", func(c echo.Context) error {
		if repoErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": repoErr.Error(), "code": "internal"})
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id", "code": "bad_request"})
		}
		p, err := repo.GetProduct(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found", "code": "not_found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "code": "internal"})
		}
		return c.JSON(http.StatusOK, p)
	})

	// POST /api/catalog/import does a bulk fixture upsert (admin auth via /api middleware)
	apiGroup.POST("/catalog/import", func(c echo.Context) error {
		start := time.Now()
		res, err := catalogService.Seed(db, c.Request().Body)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"products":            res.Products,
			"variants":            res.Variants,
			"options":             res.Options,
			"warnings":            res.Warnings,
			"request_duration_ms": duration,
		})
	})
}

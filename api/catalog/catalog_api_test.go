package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
)

func catalogTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("catalog_api_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogEntity.Product{},
		&catalogEntity.Variant{},
		&catalogEntity.Option{},
		&catalogEntity.OptionValue{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := echo.New()
	RegisterCatalogRoutes(e.Group("/api"), db)
	return e, db
}

func TestCatalogAPI_GetProduct(t *testing.T) {
	e, db := catalogTestServer(t)
	p := catalogEntity.Product{SKU: "TEE", Name: "Logo Tee", Price: decimal.NewFromInt(20), IsActive: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	v := catalogEntity.Variant{
		ProductID:  p.ProductID,
		SKU:        "TEE-RED-M",
		Inventory:  5,
		IsActive:   true,
		Properties: datatypes.JSONMap{"color": "red", "size": "M"},
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+strconv.Itoa(int(p.ProductID)), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["sku"] != "TEE" {
		t.Fatalf("sku = %v", resp["sku"])
	}
	variants, ok := resp["variants"].([]interface{})
	if !ok || len(variants) != 1 {
		t.Fatalf("variants = %v", resp["variants"])
	}
	props := variants[0].(map[string]interface{})["properties"].(map[string]interface{})
	if props["color"] != "red" {
		t.Fatalf("properties = %v", props)
	}
}

func TestCatalogAPI_GetProduct_InvalidID(t *testing.T) {
	e, _ := catalogTestServer(t)
	for _, path := range []string{"/api/products/abc", "/api/products/0"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestCatalogAPI_GetProduct_NotFound(t *testing.T) {
	e, _ := catalogTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/products/999", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCatalogAPI_Import(t *testing.T) {
	e, db := catalogTestServer(t)
	fixture := `
products:
  - sku: MUG
    name: Mug
    price: 7
    inventory: 40
`
	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import", strings.NewReader(fixture))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["products"] != float64(1) {
		t.Fatalf("products = %v, want 1", resp["products"])
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Fatal("duration header missing")
	}

	var count int64
	db.Model(&catalogEntity.Product{}).Count(&count)
	if count != 1 {
		t.Fatalf("imported rows = %d", count)
	}
}

func TestCatalogAPI_Import_BadPayload(t *testing.T) {
	e, _ := catalogTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import", strings.NewReader("products: []"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
	catalogRepo "storefront.GO/model/repository/catalog"
)

const teeFixture = `
products:
  - sku: TEE
    name: Logo Tee
    price: "19.99"
    is_active: 1
    options:
      - code: color
        display_name: Color
        input_type: color
        values: [red, blue]
      - code: size
        display_name: Size
        values: [M, L]
    variants:
      - sku: TEE-RED-M
        price: 19.99
        inventory: 5
        is_default: 1
        properties: {color: red, size: M}
      - sku: TEE-BLUE-L
        price: "21.50"
        sale_price: "18.00"
        inventory: 0
        properties: {color: blue, size: L}
  - sku: MUG
    name: Mug
    price: 7
    inventory: 40
`

func seedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("seed_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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
	return db
}

func TestSeed(t *testing.T) {
	db := seedTestDB(t)
	res, err := Seed(db, strings.NewReader(teeFixture))
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Products != 2 || res.Variants != 2 || res.Options != 2 {
		t.Fatalf("counters = %d/%d/%d, want 2/2/2", res.Products, res.Variants, res.Options)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	repo, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	var tee catalogEntity.Product
	if err := db.Where("sku = ?", "TEE").First(&tee).Error; err != nil {
		t.Fatal(err)
	}
	p, err := repo.GetProduct(tee.ProductID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !p.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("price = %s", p.Price)
	}
	if len(p.Variants) != 2 || len(p.Options) != 2 {
		t.Fatalf("variants/options = %d/%d", len(p.Variants), len(p.Options))
	}

	v := p.Variants[0]
	if v.SKU != "TEE-RED-M" || !v.IsDefault || v.Property("color") != "red" {
		t.Fatalf("first variant wrong: %+v", v)
	}
	if !v.IsActive {
		t.Fatal("variants must default to active when the fixture is silent")
	}
	sale := p.Variants[1]
	if !sale.EffectivePrice().Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("sale price not applied: %s", sale.EffectivePrice())
	}

	// option schema ordering and values
	if p.Options[0].Code != "color" || p.Options[1].Code != "size" {
		t.Fatalf("option order wrong: %+v", p.Options)
	}
	if got := p.Options[0].ValueList(); len(got) != 2 || got[0] != "red" {
		t.Fatalf("color values = %v", got)
	}
	if p.Options[0].InputType != catalogEntity.OptionTypeColor {
		t.Fatalf("input type = %s", p.Options[0].InputType)
	}
	if p.Options[1].InputType != catalogEntity.OptionTypeSelect {
		t.Fatal("input type must default to select")
	}
}

func TestSeed_UpsertRewritesChildren(t *testing.T) {
	db := seedTestDB(t)
	if _, err := Seed(db, strings.NewReader(teeFixture)); err != nil {
		t.Fatal(err)
	}

	// reseed with one variant fewer and a new price
	reseed := `
products:
  - sku: TEE
    name: Logo Tee v2
    price: "24.99"
    variants:
      - sku: TEE-RED-M
        price: 24.99
        inventory: 9
        properties: {color: red, size: M}
`
	res, err := Seed(db, strings.NewReader(reseed))
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if res.Products != 1 || res.Variants != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", res.Products, res.Variants)
	}

	var count int64
	db.Model(&catalogEntity.Product{}).Where("sku = ?", "TEE").Count(&count)
	if count != 1 {
		t.Fatalf("TEE duplicated: %d rows", count)
	}
	var variants int64
	db.Model(&catalogEntity.Variant{}).Count(&variants)
	if variants != 1 {
		t.Fatalf("stale variants survived the rewrite: %d", variants)
	}
	var tee catalogEntity.Product
	db.Where("sku = ?", "TEE").First(&tee)
	if tee.Name != "Logo Tee v2" || !tee.Price.Equal(decimal.RequireFromString("24.99")) {
		t.Fatalf("product not updated: %+v", tee)
	}
}

func TestSeed_SkipsBrokenEntries(t *testing.T) {
	db := seedTestDB(t)
	fixture := `
products:
  - name: No SKU Here
  - sku: OK
    name: Fine
    price: 1
`
	res, err := Seed(db, strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Products != 1 {
		t.Fatalf("Products = %d, want 1", res.Products)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "missing sku") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestSeed_EmptyFixture(t *testing.T) {
	db := seedTestDB(t)
	if _, err := Seed(db, strings.NewReader("products: []")); err == nil {
		t.Fatal("empty fixture must error")
	}
}

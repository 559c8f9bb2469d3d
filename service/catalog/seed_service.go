package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// SeedResult holds counters from a catalog seed run.
type SeedResult struct {
	Products  int
	Variants  int
	Options   int
	Warnings  []string
	TotalTime time.Duration
}

// productFixture is the loose fixture shape a seed file carries. Values are
// weakly typed on purpose: fixtures are hand written and mix numbers and
// strings freely.
type productFixture struct {
	SKU         string                 `mapstructure:"sku"`
	Name        string                 `mapstructure:"name"`
	Description string                 `mapstructure:"description"`
	Price       decimal.Decimal        `mapstructure:"price"`
	Inventory   int                    `mapstructure:"inventory"`
	IsActive    bool                   `mapstructure:"is_active"`
	Options     []optionFixture        `mapstructure:"options"`
	Variants    []variantFixture       `mapstructure:"variants"`
	Extra       map[string]interface{} `mapstructure:",remain"`
}

type optionFixture struct {
	Code        string   `mapstructure:"code"`
	DisplayName string   `mapstructure:"display_name"`
	InputType   string   `mapstructure:"input_type"`
	Values      []string `mapstructure:"values"`
}

type variantFixture struct {
	SKU       string          `mapstructure:"sku"`
	Price     decimal.Decimal `mapstructure:"price"`
	SalePrice decimal.Decimal `mapstructure:"sale_price"`
	Inventory int             `mapstructure:"inventory"`
	IsDefault bool            `mapstructure:"is_default"`
	// nil means the fixture did not say; variants default to active
	IsActive     *bool             `mapstructure:"is_active"`
	Properties   map[string]string `mapstructure:"properties"`
	DisplayTitle string            `mapstructure:"display_title"`
}

func numberToDecimalHook() mapstructure.DecodeHookFunc {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case string:
			return decimal.NewFromString(v)
		}
		return data, nil
	}
}

func intToBoolHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Bool {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		case float64:
			return int(v) != 0, nil
		}
		return data, nil
	}
}

var fixtureDecodeHook = mapstructure.ComposeDecodeHookFunc(
	numberToDecimalHook(),
	intToBoolHook(),
)

func decodeFixture(raw map[string]interface{}) (*productFixture, error) {
	var fx productFixture
	fx.IsActive = true
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       fixtureDecodeHook,
		Result:           &fx,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return &fx, nil
}

// SeedFromFile loads a YAML (or JSON, yaml.v3 parses both) fixture file of
// products and upserts them. Used by the catalog:seed command and the dev
// server's auto-seed.
func SeedFromFile(db *gorm.DB, path string) (*SeedResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Seed(db, f)
}

// Seed reads fixtures from r and upserts products with their variants and
// option schema. Existing products are matched by SKU and rewritten.
func Seed(db *gorm.DB, r io.Reader) (*SeedResult, error) {
	start := time.Now()

	var doc struct {
		Products []map[string]interface{} `yaml:"products"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if len(doc.Products) == 0 {
		return nil, fmt.Errorf("no products in fixture file")
	}

	res := &SeedResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for i, raw := range doc.Products {
			fx, err := decodeFixture(raw)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("product %d: %v", i, err))
				continue
			}
			if fx.SKU == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("product %d: missing sku, skipped", i))
				continue
			}
			if err := upsertProduct(tx, fx, res); err != nil {
				return fmt.Errorf("sku=%s: %w", fx.SKU, err)
			}
			res.Products++
		}
		return nil
	})
	res.TotalTime = time.Since(start)
	return res, err
}

func upsertProduct(tx *gorm.DB, fx *productFixture, res *SeedResult) error {
	var p catalogEntity.Product
	err := tx.Where("sku = ?", fx.SKU).First(&p).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	p.SKU = fx.SKU
	p.Name = fx.Name
	p.Description = fx.Description
	p.Price = fx.Price
	p.Inventory = fx.Inventory
	p.IsActive = fx.IsActive
	if err := tx.Save(&p).Error; err != nil {
		return err
	}

	// Rewrite children wholesale; fixture files are the source of truth.
	if err := tx.Delete(&catalogEntity.Variant{}, "product_id = ?", p.ProductID).Error; err != nil {
		return err
	}
	if err := tx.Exec(
		"DELETE FROM catalog_product_option_value WHERE option_id IN (SELECT option_id FROM catalog_product_option WHERE product_id = ?)",
		p.ProductID,
	).Error; err != nil {
		return err
	}
	if err := tx.Delete(&catalogEntity.Option{}, "product_id = ?", p.ProductID).Error; err != nil {
		return err
	}

	for pos, ofx := range fx.Options {
		inputType := ofx.InputType
		if inputType == "" {
			inputType = catalogEntity.OptionTypeSelect
		}
		opt := catalogEntity.Option{
			ProductID:   p.ProductID,
			Code:        ofx.Code,
			DisplayName: ofx.DisplayName,
			InputType:   inputType,
			Position:    pos,
		}
		if err := tx.Create(&opt).Error; err != nil {
			return err
		}
		for vpos, val := range ofx.Values {
			if err := tx.Create(&catalogEntity.OptionValue{
				OptionID: opt.OptionID,
				Value:    val,
				Position: vpos,
			}).Error; err != nil {
				return err
			}
		}
		res.Options++
	}

	for pos, vfx := range fx.Variants {
		props := make(map[string]interface{}, len(vfx.Properties))
		for k, v := range vfx.Properties {
			props[k] = v
		}
		active := vfx.IsActive == nil || *vfx.IsActive
		v := catalogEntity.Variant{
			ProductID:    p.ProductID,
			SKU:          vfx.SKU,
			Price:        vfx.Price,
			SalePrice:    vfx.SalePrice,
			Inventory:    vfx.Inventory,
			IsDefault:    vfx.IsDefault,
			IsActive:     active,
			Properties:   props,
			DisplayTitle: vfx.DisplayTitle,
			Position:     pos,
		}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
		res.Variants++
	}
	return nil
}

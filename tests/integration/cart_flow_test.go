package integrationtest

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartApi "storefront.GO/api/cart"
	catalogApi "storefront.GO/api/catalog"
	"storefront.GO/client"
	cartEntity "storefront.GO/model/entity/cart"
	catalogEntity "storefront.GO/model/entity/catalog"
)

// startStore boots the cart store on an httptest server backed by a temp
// sqlite file, mirroring how storefront.go wires the real thing.
func startStore(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("integration_%d.db", time.Now().UnixNano()))
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
		&cartEntity.Cart{},
		&cartEntity.Item{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := echo.New()
	api := e.Group("/api")
	cartApi.RegisterCartRoutes(api, db)
	catalogApi.RegisterCatalogRoutes(api, db)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, db
}

func seedFlowProduct(t *testing.T, db *gorm.DB, sku string, price string, inventory int) uint {
	t.Helper()
	p := catalogEntity.Product{
		SKU:       sku,
		Name:      sku,
		Price:     decimal.RequireFromString(price),
		Inventory: inventory,
		IsActive:  true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p.ProductID
}

// newShopper builds the full client stack the way cmd/cart_transfer.go does:
// HTTP client as store and catalog source, reconciler, facade.
func newShopper(url string) (*client.Facade, *client.HTTPClient, *client.Reconciler, *client.MemoryTokenStore) {
	tokens := &client.MemoryTokenStore{}
	hc := client.NewHTTPClient(url, tokens)
	rec := client.NewReconciler(hc, tokens)
	return client.NewFacade(hc, hc, rec), hc, rec, tokens
}

func TestCartFlow_GuestSignInMerge(t *testing.T) {
	srv, db := startStore(t)
	pa := seedFlowProduct(t, db, "A", "10.00", 100)
	pb := seedFlowProduct(t, db, "B", "5.00", 100)
	ctx := context.Background()

	// the same account already has a cart from another device
	otherFacade, otherClient, _, _ := newShopper(srv.URL)
	otherClient.SetUser("u-1", "")
	if _, err := otherFacade.AddItem(ctx, pa, 1, nil); err != nil {
		t.Fatalf("other device add: %v", err)
	}

	// anonymous browsing on this device
	facade, hc, rec, tokens := newShopper(srv.URL)
	if _, err := facade.AddItem(ctx, pa, 2, nil); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if _, err := facade.AddItem(ctx, pb, 1, nil); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if tok, _ := tokens.Current(); tok == "" {
		t.Fatal("first anonymous add must mint a guest token")
	}
	if got := facade.Cart().TotalItems; got != 3 {
		t.Fatalf("guest cart TotalItems = %d, want 3", got)
	}

	// sign in: both carts have items, so the strategy prompt must appear
	hc.SetUser("u-1", "")
	state, err := facade.HandleAuthChange(ctx, "u-1")
	if err != nil {
		t.Fatalf("HandleAuthChange: %v", err)
	}
	if state != client.StateConflictDetected {
		t.Fatalf("state = %v, want conflict", state)
	}

	// shopper picks merge
	merged, err := facade.ResolveConflict(ctx, cartEntity.ActionMerge)
	if err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	if merged.OwnerKind != cartEntity.OwnerKindUser {
		t.Fatalf("merged cart owner = %s", merged.OwnerKind)
	}
	// user A(1) + guest A(2) + guest B(1), merge keeps duplicate lines
	if len(merged.Items) != 3 || merged.TotalItems != 4 {
		t.Fatalf("merged cart = %d lines / %d units, want 3 / 4", len(merged.Items), merged.TotalItems)
	}
	if want := decimal.RequireFromString("35.00"); !merged.TotalPrice.Equal(want) {
		t.Fatalf("merged TotalPrice = %s, want %s", merged.TotalPrice, want)
	}

	// the guest identity is finished: token retired, no conflict on re-check
	if tok, _ := tokens.Current(); tok != "" {
		t.Fatal("guest token must be retired after merge")
	}
	if got := rec.CheckConflicts(ctx, true); got != client.StateNoConflict {
		t.Fatalf("state after merge = %v", got)
	}

	// continue shopping as the user
	if _, err := facade.UpdateQuantity(ctx, merged.Items[0].ItemID, 5); err != nil {
		t.Fatalf("update after merge: %v", err)
	}
	if facade.Cart().Items[0].Quantity != 5 {
		t.Fatalf("update not reflected: %+v", facade.Cart().Items[0])
	}
}

func TestCartFlow_SignInWithoutConflict(t *testing.T) {
	srv, db := startStore(t)
	pid := seedFlowProduct(t, db, "A", "10.00", 100)
	ctx := context.Background()

	facade, hc, _, _ := newShopper(srv.URL)
	if _, err := facade.AddItem(ctx, pid, 2, nil); err != nil {
		t.Fatalf("guest add: %v", err)
	}

	// the account has no cart; sign-in keeps the guest cart active
	hc.SetUser("u-empty", "")
	state, err := facade.HandleAuthChange(ctx, "u-empty")
	if err != nil {
		t.Fatalf("HandleAuthChange: %v", err)
	}
	if state != client.StateNoConflict {
		t.Fatalf("state = %v, want no conflict", state)
	}
}

func TestCartFlow_CopyKeepsGuestCart(t *testing.T) {
	srv, db := startStore(t)
	pid := seedFlowProduct(t, db, "A", "10.00", 100)
	ctx := context.Background()

	otherFacade, otherClient, _, _ := newShopper(srv.URL)
	otherClient.SetUser("u-copy", "")
	if _, err := otherFacade.AddItem(ctx, pid, 1, nil); err != nil {
		t.Fatal(err)
	}

	facade, hc, rec, tokens := newShopper(srv.URL)
	if _, err := facade.AddItem(ctx, pid, 2, nil); err != nil {
		t.Fatal(err)
	}
	hc.SetUser("u-copy", "")
	if state, _ := facade.HandleAuthChange(ctx, "u-copy"); state != client.StateConflictDetected {
		t.Fatal("fixture expected a conflict")
	}

	copied, err := facade.ResolveConflict(ctx, cartEntity.ActionCopy)
	if err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	// copy collapses duplicate product lines: 1 + 2 units in one line
	if len(copied.Items) != 1 || copied.TotalItems != 3 {
		t.Fatalf("copied cart = %d lines / %d units, want 1 / 3", len(copied.Items), copied.TotalItems)
	}

	// the guest cart survives, but the settled pair must not re-prompt
	if tok, _ := tokens.Current(); tok == "" {
		t.Fatal("copy must keep the guest token")
	}
	guest, err := hc.GuestCart(ctx)
	if err != nil {
		t.Fatalf("GuestCart: %v", err)
	}
	if guest.TotalItems != 2 {
		t.Fatalf("guest cart changed by copy: %+v", guest)
	}
	if got := rec.CheckConflicts(ctx, false); got != client.StateNoConflict {
		t.Fatalf("settled pair re-prompted: %v", got)
	}
}

func TestCartFlow_ServerRevalidatesInventory(t *testing.T) {
	srv, db := startStore(t)
	pid := seedFlowProduct(t, db, "SCARCE", "10.00", 3)
	ctx := context.Background()

	facade, _, _, _ := newShopper(srv.URL)
	if _, err := facade.AddItem(ctx, pid, 2, nil); err != nil {
		t.Fatal(err)
	}
	// the pre-check only sees the requested quantity; the server knows the
	// cart already holds 2 and rejects the sum
	_, err := facade.AddItem(ctx, pid, 2, nil)
	var oos *client.OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("expected OutOfStockError, got %v", err)
	}
	if oos.Available != 3 || oos.Requested != 4 {
		t.Fatalf("OutOfStockError = %+v", oos)
	}
	// the cart is unchanged
	c, err := facade.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalItems != 2 {
		t.Fatalf("failed add changed the cart: %d units", c.TotalItems)
	}
}

func TestCartFlow_ProductRead(t *testing.T) {
	srv, db := startStore(t)
	pid := seedFlowProduct(t, db, "A", "10.00", 100)
	ctx := context.Background()

	_, hc, _, _ := newShopper(srv.URL)
	p, err := hc.GetProduct(ctx, pid)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.SKU != "A" || p.Inventory != 100 {
		t.Fatalf("unexpected product %+v", p)
	}
	if _, err := hc.GetProduct(ctx, 9999); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("missing product: expected ErrNotFound, got %v", err)
	}
}

package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cartRepo "storefront.GO/model/repository/cart"
)

// GuestCartCleanupJob removes guest carts idle longer than
// GUEST_CART_TTL_HOURS (default 72). Abandoned guest carts otherwise
// accumulate forever: their tokens live only in shoppers' browsers.
//
// Opens its own DB handle from env; this package cannot import config
// (config/cron.go imports it back).
func GuestCartCleanupJob(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("guestcartcleanup: db: %v", err)
		return
	}
	repo, err := cartRepo.NewCartRepository(db)
	if err != nil {
		log.Printf("guestcartcleanup: repo: %v", err)
		return
	}

	ttl := 72
	if v, err := strconv.Atoi(os.Getenv("GUEST_CART_TTL_HOURS")); err == nil && v > 0 {
		ttl = v
	}
	cutoff := time.Now().Add(-time.Duration(ttl) * time.Hour)

	removed, err := repo.DeleteIdleGuestCarts(cutoff)
	if err != nil {
		log.Printf("guestcartcleanup: delete: %v", err)
		return
	}
	log.Printf("guestcartcleanup: removed %d guest carts idle since %s", removed, cutoff.Format(time.RFC3339))
}

func openDB() (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return gorm.Open(mysql.Open(dsn), cfg)
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "storefront.db"
	}
	return gorm.Open(sqlite.Open(path), cfg)
}

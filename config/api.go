package config

// GetAuthSkipperPaths returns a list of paths to skip admin authentication for
func GetAuthSkipperPaths() []string {
	// Storefront paths are public: identified by guest token or user
	// signature headers, not admin credentials.
	return []string{
		"/api/products/:id",
		"/api/cart",
		"/api/cart/items",
		"/api/cart/items/:itemId",
		"/api/cart/guest-exists",
		"/api/cart/user-exists",
		"/api/cart/transfer",
	}
}

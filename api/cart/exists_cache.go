package cart

import (
	"encoding/json"
	"time"

	"storefront.GO/config"
	"storefront.GO/core/cache"
	cartEntity "storefront.GO/model/entity/cart"
	cartService "storefront.GO/service/cart"
)

// Existence checks are issued on every auth transition by every mounted
// cart-aware component, so the stub keeps a short server-side cache too:
// redis when configured, in-process memory otherwise.
const existsTTL = 5 * time.Second

var existsCache = cache.NewCache()

func existsKey(kind, key string) string {
	return "cart:exists:" + kind + ":" + key
}

func ownerTag(kind, key string) string {
	return "owner:" + kind + ":" + key
}

func cachedExists(svc *cartService.Service, kind, key string) (cartEntity.ExistsResult, error) {
	ck := existsKey(kind, key)

	if config.RedisClient != nil {
		if raw, err := config.RedisClient.Get(config.RedisCtx(), ck).Result(); err == nil {
			var res cartEntity.ExistsResult
			if json.Unmarshal([]byte(raw), &res) == nil {
				return res, nil
			}
		}
	} else if v, ok := existsCache.Get(ck); ok {
		if res, ok := v.(cartEntity.ExistsResult); ok {
			return res, nil
		}
	}

	res, err := svc.Carts().Exists(kind, key)
	if err != nil {
		return res, err
	}

	if config.RedisClient != nil {
		if raw, err := json.Marshal(res); err == nil {
			config.RedisClient.Set(config.RedisCtx(), ck, raw, existsTTL)
		}
	} else {
		existsCache.Set(ck, res, int64(existsTTL/time.Second), []string{ownerTag(kind, key)})
	}
	return res, nil
}

// invalidateExists drops the cached check after any mutation touching the
// owner's cart.
func invalidateExists(kind, key string) {
	if config.RedisClient != nil {
		config.RedisClient.Del(config.RedisCtx(), existsKey(kind, key))
		return
	}
	existsCache.DeleteByTag(ownerTag(kind, key))
}

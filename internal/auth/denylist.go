// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/sage/internal/cache"
)

const denylistPrefix = "revoked:"

// Denylist records revoked token IDs in a cache.
type Denylist struct {
	cache cache.Cache
}

func NewDenylist(c cache.Cache) *Denylist {
	return &Denylist{cache: c}
}

// Revoke denies tokenID for ttl. Tokens that already expired are skipped.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.cache.Set(ctx, denylistPrefix+tokenID, "1", ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok, err := d.cache.Get(ctx, denylistPrefix+tokenID)
	return ok, err
}

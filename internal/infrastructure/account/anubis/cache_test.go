package anubis

import (
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/user"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(200*time.Millisecond, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	principal, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if principal.UserID != "u-1" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
}

func TestPrincipalCache_Expired(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(20*time.Millisecond, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})
	time.Sleep(40 * time.Millisecond)

	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected cache miss after expiry")
	}
}

func TestPrincipalCache_EvictsAtCapacity(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 3)
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		cache.Set(key, user.Principal{UserID: fmt.Sprintf("u-%d", i)})
	}

	hits := 0
	for i := 0; i < 5; i++ {
		if _, ok := cache.Get(fmt.Sprintf("k%d", i)); ok {
			hits++
		}
	}
	if hits > 3 {
		t.Fatalf("expected at most 3 cached principals, got %d", hits)
	}
}

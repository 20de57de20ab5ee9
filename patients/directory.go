package patients

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/dengueguard/monitor/config"
)

type cacheEntry struct {
	patient Patient
	expiry  time.Time
}

func (c cacheEntry) IsExpired() bool {
	return time.Now().After(c.expiry)
}

// CachingDirectory keeps recently resolved patients in an LRU so bursts of
// breaches for the same patient don't repeat the lookup. Misses are never cached.
type CachingDirectory struct {
	delegate   getter
	expiration time.Duration
	lru        *simplelru.LRU
	mu         *sync.Mutex
}

type getter interface {
	Get(ctx context.Context, userId string) (*Patient, error)
}

var _ Directory = &CachingDirectory{}

func NewDirectory(cfg *config.Config, repo Repository) (Directory, error) {
	directory, err := NewCachingDirectory(cfg.PatientCacheSize, cfg.PatientCacheExpiration, repo)
	if err != nil {
		return nil, err
	}
	return directory, nil
}

func NewCachingDirectory(size int, expiration time.Duration, delegate getter) (*CachingDirectory, error) {
	var onEvict simplelru.EvictCallback
	lru, err := simplelru.NewLRU(size, onEvict)
	if err != nil {
		return nil, err
	}

	return &CachingDirectory{
		delegate:   delegate,
		expiration: expiration,
		lru:        lru,
		mu:         &sync.Mutex{},
	}, nil
}

func (c *CachingDirectory) Get(ctx context.Context, userId string) (*Patient, error) {
	if patient := c.getCachedEntry(userId); patient != nil {
		return patient, nil
	}

	patient, err := c.delegate.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	c.setCacheEntry(userId, *patient)
	return patient, nil
}

// Invalidate drops the cached entry for a patient, e.g. after a discharge
func (c *CachingDirectory) Invalidate(userId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Remove(userId)
}

func (c *CachingDirectory) getCachedEntry(userId string) *Patient {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Get(userId); ok {
		entry := e.(cacheEntry)
		if entry.IsExpired() {
			c.lru.Remove(userId)
			return nil
		}
		patient := entry.patient
		return &patient
	}

	return nil
}

func (c *CachingDirectory) setCacheEntry(userId string, patient Patient) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.lru.Add(userId, cacheEntry{
		patient: patient,
		expiry:  time.Now().Add(c.expiration),
	})
}

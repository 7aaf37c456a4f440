// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/quickly-elect/models"
)

const snapshotKey = "snapshot"

// Cache serves catalog snapshots no older than ttl. Concurrent refreshes
// share one load. Voter lookups always go to the reader because has_voted
// changes on every commit.
type Cache struct {
	reader Reader
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	snap     *Snapshot
	loadedAt time.Time
	gen      uint64
}

// NewCache wraps r. A ttl of zero disables caching.
func NewCache(r Reader, ttl time.Duration) *Cache {
	return &Cache{reader: r, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached snapshot, reloading it when older than ttl.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap, loadedAt, gen := c.snap, c.loadedAt, c.gen
	c.mu.RUnlock()

	if snap != nil && c.ttl > 0 && c.now().Sub(loadedAt) < c.ttl {
		return snap, nil
	}

	// The shared load must outlive any single caller's cancellation.
	ch := c.group.DoChan(snapshotKey, func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Cache) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	started := c.now()
	snap, err := BuildSnapshot(ctx, c.reader, started)
	if err != nil {
		log.Error().Err(err).Msg("catalog refresh failed")
		return nil, err
	}

	c.mu.Lock()
	// An Invalidate during the load means the data may predate it
	if c.gen == gen {
		c.snap = snap
		c.loadedAt = started
	}
	c.mu.Unlock()

	log.Debug().
		Int("positions", snap.Len()).
		Dur("took", c.now().Sub(started)).
		Msg("catalog refreshed")
	return snap, nil
}

// Invalidate drops the cached snapshot so the next call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget(snapshotKey)
}

func (c *Cache) Voter(ctx context.Context, id models.VoterID) (models.Voter, error) {
	return c.reader.Voter(ctx, id)
}

func (c *Cache) VoterByLogin(ctx context.Context, login string) (models.Voter, error) {
	return c.reader.VoterByLogin(ctx, login)
}

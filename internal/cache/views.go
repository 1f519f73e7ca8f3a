// Package cache tracks versions for groups of cached views.  Instead of
// scanning Redis for keys to delete, every cached response key embeds
// the current version of its view group; invalidating a group is a
// single INCR, after which stale entries are unreachable and age out via
// their TTL.
package cache

import (
	"context"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// View groups invalidated by mutation handlers.  PropertyGroup(id)
// derives the per-listing group for detail pages.
const (
	GroupHome      = "home"
	GroupBookings  = "bookings"
	GroupDashboard = "dashboard"
)

// PropertyGroup returns the view group for a single listing's detail
// page.
func PropertyGroup(propertyID uint64) string {
	return "property:" + strconv.FormatUint(propertyID, 10)
}

// Views bumps and reads view-group versions in Redis.  A nil client
// turns every operation into a no-op so the application runs without
// Redis, just without caching.
type Views struct {
	rdb    *redis.Client
	prefix string
}

// NewViews returns a Views helper namespaced under prefix.
func NewViews(rdb *redis.Client, prefix string) *Views {
	return &Views{rdb: rdb, prefix: prefix}
}

// Version returns the current version of a view group.  Missing keys
// read as version 0 so cold groups need no initialization.
func (v *Views) Version(ctx context.Context, group string) int64 {
	if v == nil || v.rdb == nil {
		return 0
	}
	n, err := v.rdb.Get(ctx, v.key(group)).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Invalidate bumps the version of each group, detaching all cached
// responses built against the old versions.  Failures are logged and
// swallowed: a stale view for one TTL beats failing the mutation.
func (v *Views) Invalidate(ctx context.Context, groups ...string) {
	if v == nil || v.rdb == nil {
		return
	}
	for _, g := range groups {
		if err := v.rdb.Incr(ctx, v.key(g)).Err(); err != nil {
			log.Printf("views: invalidate %s failed: %v", g, err)
		}
	}
}

func (v *Views) key(group string) string {
	return v.prefix + ":ver:" + group
}

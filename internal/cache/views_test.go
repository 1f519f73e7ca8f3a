package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyGroup(t *testing.T) {
	assert.Equal(t, "property:7", PropertyGroup(7))
	assert.Equal(t, "property:18446744073709551615", PropertyGroup(^uint64(0)))
}

func TestViewsKeyNamespacing(t *testing.T) {
	v := NewViews(nil, "views")
	assert.Equal(t, "views:ver:home", v.key(GroupHome))
	assert.Equal(t, "views:ver:property:7", v.key(PropertyGroup(7)))
}

// The service runs without Redis; every views operation must degrade to
// a no-op instead of panicking.
func TestViewsWithoutRedis(t *testing.T) {
	ctx := context.Background()

	var nilViews *Views
	assert.Equal(t, int64(0), nilViews.Version(ctx, GroupHome))
	nilViews.Invalidate(ctx, GroupHome, GroupBookings)

	v := NewViews(nil, "views")
	assert.Equal(t, int64(0), v.Version(ctx, GroupHome))
	v.Invalidate(ctx, GroupHome, GroupDashboard)
}

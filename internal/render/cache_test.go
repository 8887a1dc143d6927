package render

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, time.Hour), mr
}

func TestCache_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	source := "@startuml\nA -> B\n@enduml"

	_, ok := cache.Get(ctx, source, FormatSVG)
	assert.False(t, ok)

	cache.Set(ctx, source, FormatSVG, []byte("<svg/>"))

	data, ok := cache.Get(ctx, source, FormatSVG)
	require.True(t, ok)
	assert.Equal(t, "<svg/>", string(data))
}

func TestCache_FormatsAreSeparate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	source := "@startuml\nA -> B\n@enduml"

	cache.Set(ctx, source, FormatSVG, []byte("<svg/>"))

	_, ok := cache.Get(ctx, source, FormatPNG)
	assert.False(t, ok)
}

func TestCache_ExpiresWithTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	source := "@startuml\nA -> B\n@enduml"

	cache.Set(ctx, source, FormatSVG, []byte("<svg/>"))
	mr.FastForward(2 * time.Hour)

	_, ok := cache.Get(ctx, source, FormatSVG)
	assert.False(t, ok)
}

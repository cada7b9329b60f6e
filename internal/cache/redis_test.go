package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = parseOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = parseOptions("  ")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	c, err := Connect(context.Background(), addr)
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	mr.Close()
	_, err = Connect(context.Background(), addr)
	assert.Error(t, err)
}

func TestInitRedisWithoutServer(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	InitRedis(addr)
	assert.Nil(t, GetClient())
}

func TestKeyspace(t *testing.T) {
	assert.Equal(t, "profile:u-1", Profiles.Key("u-1"))
	assert.Equal(t, Profiles.Key("u-1"), ProfileKey("u-1"))
	assert.Equal(t, ProfileTTL, Profiles.TTL)
	assert.Equal(t, "profile", keyspaceOf(ProfileKey("u-1")))
}

func TestInvalidateManyKeys(t *testing.T) {
	mr := useMiniredis(t)
	require.NoError(t, mr.Set("profile:a", "{}"))
	require.NoError(t, mr.Set("profile:b", "{}"))
	require.NoError(t, mr.Set("profile:c", "{}"))

	Invalidate(context.Background(), ProfileKey("a"), ProfileKey("b"))

	assert.False(t, mr.Exists("profile:a"))
	assert.False(t, mr.Exists("profile:b"))
	assert.True(t, mr.Exists("profile:c"))
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_GetSet(t *testing.T) {
	client, clock := newTestMemoryClient(t)
	ctx := context.Background()

	_, found, err := client.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte("hello")
	require.NoError(t, client.Set(ctx, "k", value, time.Minute))
	value[0] = 'j' // stored copy is independent of the caller's slice

	got, found, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", string(got))

	clock.Advance(time.Minute)
	_, found, _ = client.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryClient_Cleanup(t *testing.T) {
	client, clock := newTestMemoryClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, client.Set(ctx, "long", []byte("1"), time.Hour))
	assert.Equal(t, 2, client.Size())

	clock.Advance(2 * time.Second)
	client.cleanup()
	assert.Equal(t, 1, client.Size())
}

func TestMemoryClient_DeletePattern(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	ctx := context.Background()

	keys := []string{
		"p:sanmar:a",
		"p:sanmar:b",
		"p:sanmar:fetchProduct:PC61/LPC61",
		`p:sanmar:fetchProducts:{"url":"https://api.sanmar.com/v1"}`,
		"p:as-colour:a",
	}
	for _, k := range keys {
		require.NoError(t, client.Set(ctx, k, []byte("1"), time.Minute))
	}

	n, err := client.DeletePattern(ctx, "p:sanmar:*")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "'*' spans '/' like Redis MATCH")
	assert.Equal(t, 1, client.Size())

	_, err = client.DeletePattern(ctx, "p:[")
	assert.Error(t, err)
}

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		match   bool
	}{
		{"supplier:sanmar:*", "supplier:sanmar:fetchProduct:PC61/LPC61", true},
		{"supplier:sanmar:*", "supplier:ss-activewear:fetchProduct:G500", false},
		{"supplier:*:fetchProduct:*", "supplier:as-colour:fetchProduct:5001", true},
		{"p:?", "p:/", true},
		{"p:?", "p:ab", false},
		{"p:[ab]", "p:b", true},
		{"p:[^ab]", "p:b", false},
		{"p:[a-c]x", "p:bx", true},
		{"p:[a-c]x", "p:dx", false},
		{`p:\*`, "p:*", true},
		{`p:\*`, "p:x", false},
		{"p:a.b", "p:axb", false},
		{"p:(x)+", "p:(x)+", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.key, func(t *testing.T) {
			re, err := compileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.match, re.MatchString(tt.key))
		})
	}
}

func TestMemoryClient_CloseIsIdempotent(t *testing.T) {
	client := NewMemoryClient(time.Millisecond)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestClientFactory_MemoryBackend(t *testing.T) {
	f := NewClientFactory(RedisConfig{})
	client, err := f.CreateClient(BackendMemory)
	require.NoError(t, err)
	defer client.Close()
	assert.IsType(t, &MemoryClient{}, client)
}

func TestClientFactory_FallsBackWhenRedisIsDown(t *testing.T) {
	// Nothing listens on port 1
	cfg := RedisConfig{Host: "127.0.0.1", Port: 1}

	client, err := NewClientFactory(cfg).CreateClient(BackendRedis)
	require.NoError(t, err)
	defer client.Close()
	assert.IsType(t, &MemoryClient{}, client)

	_, err = NewClientFactory(cfg, WithInMemoryFallback(false)).CreateClient(BackendRedis)
	assert.Error(t, err)
}

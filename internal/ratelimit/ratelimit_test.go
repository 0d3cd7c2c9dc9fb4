package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/ratelimit"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := ratelimit.New(1, 3)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	krl := ratelimit.New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-b"))
	assert.Equal(t, 2, krl.Keys())
}

func TestWaitRespectsContext(t *testing.T) {
	krl := ratelimit.New(0.1, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("client-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := krl.Wait(ctx, "client-a")
	assert.Error(t, err)
}

package closer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/closer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloserLIFO(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	c := closer.NewCloser(time.Second)
	c.AddFunc("db", record("db"))
	c.AddFunc("redis", record("redis"))
	c.AddFunc("http", record("http"))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloserCollectsErrors(t *testing.T) {
	t.Parallel()

	c := closer.NewCloser(time.Second)
	c.Add("kafka", func(context.Context) error { return errors.New("writer closed") })
	c.AddFunc("db", func() {})

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: writer closed")
}

func TestCloserForcedOnTimeout(t *testing.T) {
	t.Parallel()

	var forced bool
	c := closer.NewCloser(100 * time.Millisecond)
	c.Add("first", func(context.Context) error {
		forced = true
		return nil
	})
	c.Add("hanging", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	assert.True(t, forced)
}

func TestCloserRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	c := closer.NewCloser(0)
	c.AddFunc("counter", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

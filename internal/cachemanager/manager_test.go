package cachemanager

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_GetSet(t *testing.T) {
	m := New[int]("test", NoExpiration, DefaultCleanupInterval)

	_, ok := m.Get("a")
	require.False(t, ok)

	m.Set("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, m.Len())
}

func TestManager_DeleteAndFlush(t *testing.T) {
	m := New[string]("test", NoExpiration, DefaultCleanupInterval)
	m.Set("a", "x")
	m.Set("b", "y")
	m.Set("c", "z")

	m.Delete("a", "b")
	_, ok := m.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, m.Len())

	m.Flush()
	require.Equal(t, 0, m.Len())
}

func TestManager_Expiration(t *testing.T) {
	m := New[int]("test", 10*time.Millisecond, time.Hour)
	m.Set("a", 1)

	require.Eventually(t, func() bool {
		_, ok := m.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestManager_GetOrLoad_CachesResult(t *testing.T) {
	m := New[int]("test", NoExpiration, DefaultCleanupInterval)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := m.GetOrLoad("k", load)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	v, err = m.GetOrLoad("k", load)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)
}

func TestManager_GetOrLoad_ErrorNotCached(t *testing.T) {
	m := New[int]("test", NoExpiration, DefaultCleanupInterval)
	boom := errors.New("boom")

	_, err := m.GetOrLoad("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, m.Len())

	v, err := m.GetOrLoad("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestManager_GetOrLoad_ConcurrentMissesLoadOnce(t *testing.T) {
	m := New[int]("test", NoExpiration, DefaultCleanupInterval)
	var calls atomic.Int32

	var wg sync.WaitGroup
	for j := 0; j < 16; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.GetOrLoad("k", func() (int, error) {
				calls.Add(1)
				return 1, nil
			})
			require.NoError(t, err)
			require.Equal(t, 1, v)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
}

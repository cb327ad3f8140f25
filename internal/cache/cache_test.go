package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRistretto_SetGetDelete(t *testing.T) {
	c, err := NewRistretto[string](100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("insights", "v1")
	got, ok := c.Get("insights")
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	c.Delete("insights")
	_, ok = c.Get("insights")
	assert.False(t, ok)
}

func TestRistretto_Clear(t *testing.T) {
	c, err := NewRistretto[int](100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestRistretto_ZeroTTLDisablesCaching(t *testing.T) {
	c, err := NewRistretto[int](100, 0)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestRistretto_Expires(t *testing.T) {
	c, err := NewRistretto[int](100, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRistretto_StatsCountHitsAndMisses(t *testing.T) {
	c, err := NewRistretto[int](100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	assert.EqualValues(t, 1, s.Hits)
	assert.EqualValues(t, 1, s.Misses)
}

func TestRistretto_StatsSurviveClear(t *testing.T) {
	c, err := NewRistretto[int](100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Clear()

	assert.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())

	c.Get("a")
	assert.Equal(t, Stats{Hits: 2, Misses: 2}, c.Stats(), "counters keep growing after Clear")
}

func TestNewRistretto_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewRistretto[int](0, time.Minute)
	assert.Error(t, err)
}

package geocoding

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	calls  int
	places []domain.Place
	err    error
}

func (f *fakeGeocoder) Search(_ context.Context, _ string, _ int) ([]domain.Place, error) {
	f.calls++
	return f.places, f.err
}

var berlin = []domain.Place{{Name: "Berlin", Country: "Germany", Latitude: 52.5, Longitude: 13.4}}

func TestCachedGeocoder_SecondLookupHitsCache(t *testing.T) {
	inner := &fakeGeocoder{places: berlin}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	first, err := cached.Search(context.Background(), "berlin", 5)
	require.NoError(t, err)
	second, err := cached.Search(context.Background(), "berlin", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DifferentCountIsDifferentKey(t *testing.T) {
	inner := &fakeGeocoder{places: berlin}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.Search(context.Background(), "berlin", 1)
	require.NoError(t, err)
	_, err = cached.Search(context.Background(), "berlin", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &fakeGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.Search(context.Background(), "nowhere", 5)
	require.NoError(t, err)
	_, err = cached.Search(context.Background(), "nowhere", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &fakeGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.Search(context.Background(), "berlin", 5)
	require.Error(t, err)
	_, err = cached.Search(context.Background(), "berlin", 5)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", berlin)
	c.put("b", berlin)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", berlin)

	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", berlin)
	updated := []domain.Place{{Name: "Berlin", Admin1: "Land Berlin"}}
	c.put("a", updated)

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, updated, got)
	assert.Len(t, c.entries, 1)
}

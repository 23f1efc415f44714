package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shopgifter/internal/cache"
	"shopgifter/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopBody = `{
  "status": 200,
  "data": {
    "entries": [
      {"offerId": "A", "devName": "[VIRTUAL]1 x Femininomenon for 500 MtxCurrency", "finalPrice": 500, "regularPrice": 500, "giftable": true,
       "brItems": [{"id": "EID_Femininomenon", "name": "Femininomenon Emote"}]},
      {"offerId": "T", "finalPrice": 500, "tracks": [{"id": "sid_song"}], "layout": {"id": "JamTracks", "name": "Jam Tracks"}}
    ]
  }
}`

func newShopServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesEntries(t *testing.T) {
	srv := newShopServer(t, http.StatusOK, shopBody, nil)
	c := NewClient(Config{URL: srv.URL, Timeout: time.Second}, srv.Client(), nil, nil)

	entries := c.Fetch(context.Background())

	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].OfferID)
	assert.Equal(t, "Femininomenon Emote", DisplayName(entries[0]))
	assert.Equal(t, 500, entries[0].EffectivePrice())
	assert.True(t, IsSpecialTrack(entries[1]))

	giftable := Giftable(entries)
	require.Len(t, giftable, 1)
	assert.Equal(t, "A", giftable[0].OfferID)
}

func TestFetchReturnsEmptyOnFailure(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := newShopServer(t, http.StatusServiceUnavailable, `{"error":"down"}`, nil)
		c := NewClient(Config{URL: srv.URL}, srv.Client(), nil, nil)

		entries := c.Fetch(context.Background())
		assert.NotNil(t, entries)
		assert.Empty(t, entries)

		_, err := c.FetchEntries(context.Background())
		assert.True(t, apierror.IsPlatform(err))
	})

	t.Run("decode", func(t *testing.T) {
		srv := newShopServer(t, http.StatusOK, `{"data": [`, nil)
		c := NewClient(Config{URL: srv.URL}, srv.Client(), nil, nil)

		assert.Empty(t, c.Fetch(context.Background()))
		_, err := c.FetchEntries(context.Background())
		assert.True(t, apierror.IsTransport(err))
	})

	t.Run("transport", func(t *testing.T) {
		srv := newShopServer(t, http.StatusOK, shopBody, nil)
		url := srv.URL
		srv.Close()
		c := NewClient(Config{URL: url}, nil, nil, nil)

		assert.Empty(t, c.Fetch(context.Background()))
		_, err := c.FetchEntries(context.Background())
		assert.True(t, apierror.IsTransport(err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		c := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client(), nil, nil)

		assert.Empty(t, c.Fetch(context.Background()))
	})

	t.Run("missing entries", func(t *testing.T) {
		srv := newShopServer(t, http.StatusOK, `{"data": {}}`, nil)
		c := NewClient(Config{URL: srv.URL}, srv.Client(), nil, nil)

		entries, err := c.FetchEntries(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestFetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newShopServer(t, http.StatusOK, shopBody, &hits)
	mem := cache.NewMemoryCache(0)
	defer mem.Close()

	c := NewClient(Config{URL: srv.URL, CacheTTL: time.Minute}, srv.Client(), mem, nil)

	first := c.Fetch(context.Background())
	second := c.Fetch(context.Background())

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchDropsUndecodableCachedPayload(t *testing.T) {
	var hits atomic.Int32
	srv := newShopServer(t, http.StatusOK, `not json`, &hits)
	mem := cache.NewMemoryCache(0)
	defer mem.Close()

	c := NewClient(Config{URL: srv.URL, CacheTTL: time.Minute}, srv.Client(), mem, nil)

	assert.Empty(t, c.Fetch(context.Background()))
	assert.Equal(t, 0, mem.Len())

	assert.Empty(t, c.Fetch(context.Background()))
	assert.Equal(t, int32(2), hits.Load())
}

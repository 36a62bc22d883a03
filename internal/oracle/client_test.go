package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchPrefersDexscreener(t *testing.T) {
	ds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"priceUsd":"0.01","marketCap":50000,"liquidity":{"usd":10000}}]}`))
	}))
	defer ds.Close()
	jp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("fallback should not be queried when primary has liquidity")
	}))
	defer jp.Close()

	c := NewClient(Options{DexscreenerURL: ds.URL, JupiterLiteURL: jp.URL})
	q, err := c.Fetch(context.Background(), "TOKEN_A")
	require.NoError(t, err)
	assert.Equal(t, "dexscreener", q.Source)
	assert.Equal(t, 0.01, q.PriceUsd)
	assert.Equal(t, 50000.0, q.MarketCap())
	assert.Equal(t, 10000.0, q.Liquidity())
}

func TestClient_FetchFallsBackToJupiter(t *testing.T) {
	ds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ds.Close()
	jp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"usdPrice":0.002,"mcap":80000,"liquidity":4000}]`))
	}))
	defer jp.Close()

	c := NewClient(Options{DexscreenerURL: ds.URL, JupiterLiteURL: jp.URL})
	q, err := c.Fetch(context.Background(), "TOKEN_B")
	require.NoError(t, err)
	assert.Equal(t, "jupiter", q.Source)
	assert.Equal(t, 0.002, q.PriceUsd)
	assert.Equal(t, 4000.0, q.Liquidity())
}

func TestClient_FetchMissingLiquidityTriesFallback(t *testing.T) {
	ds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"priceUsd":"0.01","marketCap":50000}]}`))
	}))
	defer ds.Close()
	jp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"usdPrice":0.011,"mcap":51000,"liquidity":9000}]`))
	}))
	defer jp.Close()

	c := NewClient(Options{DexscreenerURL: ds.URL, JupiterLiteURL: jp.URL})
	q, err := c.Fetch(context.Background(), "TOKEN_C")
	require.NoError(t, err)
	assert.Equal(t, "jupiter", q.Source)
}

func TestClient_FetchBothSourcesDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	c := NewClient(Options{DexscreenerURL: down.URL, JupiterLiteURL: down.URL})
	_, err := c.Fetch(context.Background(), "TOKEN_D")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_PartialPrimaryBeatsFailedFallback(t *testing.T) {
	ds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"priceUsd":"0.01","marketCap":50000}]}`))
	}))
	defer ds.Close()
	jp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer jp.Close()

	c := NewClient(Options{DexscreenerURL: ds.URL, JupiterLiteURL: jp.URL})
	q, err := c.Fetch(context.Background(), "TOKEN_E")
	require.NoError(t, err)
	assert.Equal(t, "dexscreener", q.Source)
	assert.Nil(t, q.LiquidityUsd)
}

package openfoodfacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beepbasket/backend/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "beepbasket-test/1.0", 2*time.Second, zerolog.Nop())
}

func TestNewClient(t *testing.T) {
	client := NewClient("https://world.openfoodfacts.org/", "agent", 0, zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "https://world.openfoodfacts.org", client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
}

func TestLookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/4006381333931.json", r.URL.Path)
		assert.Equal(t, "beepbasket-test/1.0", r.Header.Get("User-Agent"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 1,
			"product": map[string]string{
				"product_name": "Whole Milk",
				"brands":       "Dairyco",
				"categories":   "Beverages, Milks",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	rec, err := client.Lookup(context.Background(), "4006381333931")

	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", rec.Name)
	assert.Equal(t, "Dairyco", rec.Brands)
	assert.Equal(t, "Beverages, Milks", rec.Categories)
	assert.Equal(t, SourceCatalog, rec.Source)
	// Status, counts and timestamps belong to the cache store.
	assert.Empty(t, rec.Status)
	assert.Zero(t, rec.ScannedCount)
	assert.Empty(t, rec.FirstSeen)
}

func TestLookup_NameFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		product  map[string]string
		wantName string
	}{
		{
			name: "generic name when product name empty",
			product: map[string]string{
				"product_name": "  ",
				"generic_name": "Oat Drink",
			},
			wantName: "Oat Drink",
		},
		{
			name: "brands when names empty",
			product: map[string]string{
				"brands": "Oatco",
			},
			wantName: "Oatco",
		},
		{
			name: "first categories segment as last resort",
			product: map[string]string{
				"categories": " Plant milks, Oat milks",
			},
			wantName: "Plant milks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  1,
					"product": tt.product,
				})
			}))
			defer server.Close()

			rec, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rec.Name)
		})
	}
}

func TestLookup_NoUsableName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  1,
			"product": map[string]string{"product_name": "   "},
		})
	}))
	defer server.Close()

	rec, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLookup_ProductAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": 0})
	}))
	defer server.Close()

	rec, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLookup_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLookup_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLookup_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestClient(server.URL).Lookup(context.Background(), "01234567")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name    string
		payload productPayload
		want    string
	}{
		{"product name wins", productPayload{ProductName: "Milk", Brands: "Dairyco"}, "Milk"},
		{"trims whitespace", productPayload{ProductName: "  Milk  "}, "Milk"},
		{"all empty", productPayload{}, ""},
		{"categories without comma", productPayload{Categories: "Snacks"}, "Snacks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveName(tt.payload))
		})
	}
}

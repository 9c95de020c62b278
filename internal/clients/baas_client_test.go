package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *BaaSClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBaaSClient(srv.URL+"/", "anon-key", 2*time.Second, quietLogger())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchProductsSendsFiltersAndMapsRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "*,categories(name)", q.Get("select"))
		assert.Equal(t, "eq.true", q.Get("is_active"))
		assert.Equal(t, "eq.electronics", q.Get("category_id"))

		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": "p1", "name": "Pixel", "brand": "Google", "price": 499.5, "original_price": 599.0,
				"rating": 4.4, "stock_quantity": 3, "category_id": "electronics",
				"categories": map[string]string{"name": "Electronics"}, "is_active": true,
				"created_at": "2025-02-01T10:00:00Z"},
			{"id": "p2", "name": "Case", "price": 10, "original_price": nil, "brand": nil, "is_active": true,
				"created_at": "2025-02-02T10:00:00Z"},
		})
	})

	products, err := c.FetchProducts(context.Background(), domain.ProductQuery{CategoryID: "electronics", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Electronics", products[0].CategoryName)
	assert.Equal(t, 599.0, products[0].OriginalPrice)
	assert.Equal(t, 3, products[0].StockQuantity)
	assert.Zero(t, products[1].OriginalPrice)
	assert.Empty(t, products[1].Brand)
}

func TestFetchProductsByIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `in.("a","b")`, r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, []interface{}{})
	})

	products, err := c.FetchProducts(context.Background(), domain.ProductQuery{IDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestGetProductByIDNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []interface{}{})
	})

	_, err := c.GetProductByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   interface{}
		want   error
	}{
		{"server error", http.StatusServiceUnavailable, map[string]string{"message": "down"}, domain.ErrBackendUnavailable},
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "JWT expired"}, domain.ErrNotAuthenticated},
		{"fk violation", http.StatusConflict, map[string]string{"code": "23503", "message": "violates foreign key"}, domain.ErrNotFound},
		{"unique violation", http.StatusConflict, map[string]string{"code": "23505"}, domain.ErrConflict},
		{"bad input", http.StatusBadRequest, map[string]string{"code": "22P02"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.FetchCategories(context.Background())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewBaaSClient(addr, "k", time.Second, quietLogger())
	_, err := c.FetchCategories(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestPing(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusOK, nil},
		{http.StatusServiceUnavailable, domain.ErrBackendUnavailable},
		{http.StatusUnauthorized, domain.ErrNotAuthenticated},
	}
	for _, tc := range cases {
		status := tc.status
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "/rest/v1/", r.URL.Path)
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			w.WriteHeader(status)
		})
		err := c.Ping(context.Background())
		if tc.want == nil {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()
	down := NewBaaSClient(addr, "k", time.Second, quietLogger())
	assert.ErrorIs(t, down.Ping(context.Background()), domain.ErrBackendUnavailable)
}

func TestTimeoutIsBackendUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewBaaSClient(srv.URL, "k", 50*time.Millisecond, quietLogger())
	_, err := c.FetchCategories(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestFetchCartLinesEmbedsProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/cart", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": "l1", "user_id": "u1", "product_id": "p1", "quantity": 2,
				"products": map[string]interface{}{"id": "p1", "name": "Mug", "price": 50, "created_at": "2025-01-01T00:00:00Z"}},
		})
	})

	lines, err := c.FetchCartLines(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 50.0, lines[0].Product.Price)
	assert.True(t, lines[0].Product.IsActive)
}

func TestUpsertCartLine(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "user_id,product_id", r.URL.Query().Get("on_conflict"))
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.NotContains(t, body[0], "id")
		assert.Equal(t, 3.0, body[0]["quantity"])

		writeJSON(w, http.StatusCreated, []map[string]interface{}{
			{"id": "l9", "user_id": "u1", "product_id": "p1", "quantity": 3},
		})
	})

	line, err := c.UpsertCartLine(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, "l9", line.ID)

	_, err = c.UpsertCartLine(context.Background(), "u1", "p1", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteCartLineMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.l1", r.URL.Query().Get("id"))
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		writeJSON(w, http.StatusOK, []interface{}{})
	})

	assert.ErrorIs(t, c.DeleteCartLine(context.Background(), "u1", "l1"), domain.ErrNotFound)
}

func TestWishlistCalls(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]string{{"product_id": "p1"}, {"product_id": "p2"}})
		case http.MethodPost:
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505"})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	ids, err := c.FetchWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
	assert.NoError(t, c.AddWishlistEntry(ctx, "u1", "p1"), "duplicate add is not an error")
	assert.NoError(t, c.RemoveWishlistEntry(ctx, "u1", "p3"))
	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodDelete}, methods)
}

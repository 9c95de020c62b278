package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// BaaSClient talks to the managed backend's PostgREST endpoint. It serves
// as the product, category, cart and wishlist repository.
type BaaSClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

var (
	_ domain.ProductRepository  = (*BaaSClient)(nil)
	_ domain.CategoryRepository = (*BaaSClient)(nil)
	_ domain.CartRepository     = (*BaaSClient)(nil)
	_ domain.WishlistRepository = (*BaaSClient)(nil)
)

func NewBaaSClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *BaaSClient {
	return &BaaSClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

type baasCategoryRef struct {
	Name string `json:"name"`
}

type baasProduct struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Brand              *string          `json:"brand"`
	Description        *string          `json:"description"`
	ImageURL           *string          `json:"image_url"`
	Price              float64          `json:"price"`
	OriginalPrice      *float64         `json:"original_price"`
	DiscountPercentage *int             `json:"discount_percentage"`
	Rating             *float64         `json:"rating"`
	ReviewCount        *int             `json:"review_count"`
	StockQuantity      *int             `json:"stock_quantity"`
	CategoryID         *string          `json:"category_id"`
	Category           *baasCategoryRef `json:"categories"`
	IsActive           *bool            `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
}

func (p baasProduct) toDomain() domain.Product {
	out := domain.Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		IsActive:  true,
		CreatedAt: p.CreatedAt,
	}
	if p.Brand != nil {
		out.Brand = *p.Brand
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}
	if p.OriginalPrice != nil {
		out.OriginalPrice = *p.OriginalPrice
	}
	if p.DiscountPercentage != nil {
		out.DiscountPercentage = *p.DiscountPercentage
	}
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	if p.ReviewCount != nil {
		out.ReviewCount = *p.ReviewCount
	}
	if p.StockQuantity != nil {
		out.StockQuantity = *p.StockQuantity
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.Category != nil {
		out.CategoryName = p.Category.Name
	}
	if p.IsActive != nil {
		out.IsActive = *p.IsActive
	}
	return out
}

type baasCartRow struct {
	ID        string       `json:"id,omitempty"`
	UserID    string       `json:"user_id"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *baasProduct `json:"products,omitempty"`
}

func (r baasCartRow) toDomain() domain.CartLine {
	line := domain.CartLine{ID: r.ID, UserID: r.UserID, ProductID: r.ProductID, Quantity: r.Quantity}
	if r.Product != nil {
		line.Product = r.Product.toDomain()
	}
	return line
}

// baasError is the PostgREST error body.
type baasError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

const productSelect = "*,categories(name)"

func inList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

// do sends one request and decodes a JSON response into out when out is
// non-nil. what names the resource in errors and logs.
func (c *BaaSClient) do(ctx context.Context, method, table string, params url.Values, body interface{}, prefer string, out interface{}, what string) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, table)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.log.Errorf("BaaSClient: Failed to marshal %s payload: %v", what, err)
			return fmt.Errorf("failed to prepare %s request: %w", what, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		c.log.Errorf("BaaSClient: Failed to create %s request: %v", what, err)
		return fmt.Errorf("failed to create %s request: %w", what, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	c.log.Debugf("BaaSClient: %s %s", method, endpoint)
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s request aborted: %w", what, ctxErr)
		}
		c.log.Errorf("BaaSClient: Failed to execute %s request: %v", what, err)
		return fmt.Errorf("failed to communicate with backend for %s: %v: %w", what, err, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp, what)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Errorf("BaaSClient: Failed to decode %s response: %v", what, err)
		return fmt.Errorf("failed to decode %s response: %v: %w", what, err, domain.ErrBackendUnavailable)
	}
	return nil
}

// Ping checks that the REST root answers with the configured key.
func (c *BaaSClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ping aborted: %w", ctxErr)
		}
		return fmt.Errorf("backend unreachable: %v: %w", err, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp, "ping")
	}
	return nil
}

func (c *BaaSClient) statusError(resp *http.Response, what string) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr baasError
	_ = json.Unmarshal(bodyBytes, &apiErr)
	msg := apiErr.Message
	if msg == "" {
		msg = strings.TrimSpace(string(bodyBytes))
	}

	var kind error
	switch {
	case apiErr.Code == "23503":
		kind = domain.ErrNotFound
	case apiErr.Code == "23505":
		kind = domain.ErrConflict
	case apiErr.Code == "23514" || apiErr.Code == "22P02":
		kind = domain.ErrValidation
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = domain.ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotAcceptable:
		kind = domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		kind = domain.ErrConflict
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		kind = domain.ErrBackendUnavailable
	default:
		kind = domain.ErrValidation
	}

	c.log.Warnf("BaaSClient: %s request failed with status %d (code %q): %s", what, resp.StatusCode, apiErr.Code, msg)
	return fmt.Errorf("backend returned status %d for %s: %s: %w", resp.StatusCode, what, msg, kind)
}

func (c *BaaSClient) FetchProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("select", productSelect)
	if q.ActiveOnly {
		params.Set("is_active", "eq.true")
	}
	if q.CategoryID != "" {
		params.Set("category_id", "eq."+q.CategoryID)
	}
	if len(q.IDs) > 0 {
		params.Set("id", inList(q.IDs))
	}
	params.Set("order", "created_at.desc,id")

	var rows []baasProduct
	if err := c.do(ctx, http.MethodGet, "products", params, nil, "", &rows, "products"); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	c.log.Infof("BaaSClient: Fetched %d products", len(products))
	return products, nil
}

func (c *BaaSClient) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("select", productSelect)
	params.Set("id", "eq."+id)
	params.Set("limit", "1")

	var rows []baasProduct
	if err := c.do(ctx, http.MethodGet, "products", params, nil, "", &rows, "product "+id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		c.log.Warnf("BaaSClient: Product with ID %s not found", id)
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	product := rows[0].toDomain()
	return &product, nil
}

func (c *BaaSClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	params := url.Values{}
	params.Set("select", "id,name,icon")
	params.Set("order", "name")

	categories := []domain.Category{}
	if err := c.do(ctx, http.MethodGet, "categories", params, nil, "", &categories, "categories"); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *BaaSClient) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	params := url.Values{}
	params.Set("select", "id,name,icon")
	params.Set("id", "eq."+id)
	params.Set("limit", "1")

	var rows []domain.Category
	if err := c.do(ctx, http.MethodGet, "categories", params, nil, "", &rows, "category "+id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return &rows[0], nil
}

func (c *BaaSClient) FetchCartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	params := url.Values{}
	params.Set("select", "id,user_id,product_id,quantity,products("+productSelect+")")
	params.Set("user_id", "eq."+userID)
	params.Set("order", "created_at,id")

	var rows []baasCartRow
	if err := c.do(ctx, http.MethodGet, "cart", params, nil, "", &rows, "cart"); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.toDomain())
	}
	return lines, nil
}

func (c *BaaSClient) FindCartLine(ctx context.Context, userID, productID string) (*domain.CartLine, error) {
	params := url.Values{}
	params.Set("select", "id,user_id,product_id,quantity")
	params.Set("user_id", "eq."+userID)
	params.Set("product_id", "eq."+productID)
	params.Set("limit", "1")

	var rows []baasCartRow
	if err := c.do(ctx, http.MethodGet, "cart", params, nil, "", &rows, "cart line"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cart line for product %s: %w", productID, domain.ErrNotFound)
	}
	line := rows[0].toDomain()
	return &line, nil
}

func (c *BaaSClient) UpsertCartLine(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("cart quantity must be at least 1: %w", domain.ErrValidation)
	}
	params := url.Values{}
	params.Set("on_conflict", "user_id,product_id")
	body := []baasCartRow{{UserID: userID, ProductID: productID, Quantity: quantity}}

	var rows []baasCartRow
	err := c.do(ctx, http.MethodPost, "cart", params, body, "resolution=merge-duplicates,return=representation", &rows, "cart upsert")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cart upsert returned no row: %w", domain.ErrBackendUnavailable)
	}
	line := rows[0].toDomain()
	c.log.Infof("BaaSClient: Cart line %s set to quantity %d", line.ID, line.Quantity)
	return &line, nil
}

func (c *BaaSClient) DeleteCartLine(ctx context.Context, userID, lineID string) error {
	params := url.Values{}
	params.Set("id", "eq."+lineID)
	params.Set("user_id", "eq."+userID)

	var rows []baasCartRow
	if err := c.do(ctx, http.MethodDelete, "cart", params, nil, "return=representation", &rows, "cart delete"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("cart line %s: %w", lineID, domain.ErrNotFound)
	}
	return nil
}

type baasWishlistRow struct {
	UserID    string `json:"user_id,omitempty"`
	ProductID string `json:"product_id"`
}

func (c *BaaSClient) FetchWishlist(ctx context.Context, userID string) ([]string, error) {
	params := url.Values{}
	params.Set("select", "product_id")
	params.Set("user_id", "eq."+userID)
	params.Set("order", "created_at,product_id")

	var rows []baasWishlistRow
	if err := c.do(ctx, http.MethodGet, "wishlist", params, nil, "", &rows, "wishlist"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	return ids, nil
}

func (c *BaaSClient) AddWishlistEntry(ctx context.Context, userID, productID string) error {
	params := url.Values{}
	params.Set("on_conflict", "user_id,product_id")
	body := []baasWishlistRow{{UserID: userID, ProductID: productID}}
	err := c.do(ctx, http.MethodPost, "wishlist", params, body, "resolution=ignore-duplicates,return=minimal", nil, "wishlist add")
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}

func (c *BaaSClient) RemoveWishlistEntry(ctx context.Context, userID, productID string) error {
	params := url.Values{}
	params.Set("user_id", "eq."+userID)
	params.Set("product_id", "eq."+productID)
	return c.do(ctx, http.MethodDelete, "wishlist", params, nil, "return=minimal", nil, "wishlist remove")
}

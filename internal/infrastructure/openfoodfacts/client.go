package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/beepbasket/backend/internal/domain"
)

// SourceCatalog marks records resolved through the catalog.
const SourceCatalog = "catalog"

// Client handles communication with the OpenFoodFacts product catalog.
// It implements domain.CatalogClient.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a catalog client. The timeout bounds each lookup;
// OpenFoodFacts asks integrations to stay under roughly 100 requests per
// minute for product queries, so requests are rate limited below that.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Limit(1), 10) // 1 req/sec, burst of 10

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
		logger:      logger.With().Str("component", "catalog").Logger(),
	}
}

// productResponse is the catalog's lookup payload. Status is 1 when the
// barcode is known.
type productResponse struct {
	Status  int            `json:"status"`
	Product productPayload `json:"product"`
}

type productPayload struct {
	ProductName string `json:"product_name"`
	GenericName string `json:"generic_name"`
	Brands      string `json:"brands"`
	Categories  string `json:"categories"`
}

// Lookup queries the catalog for a barcode and returns a partial record
// carrying name, brands, categories and source. Transient failures, absent
// products and entries without any usable name all degrade to
// domain.ErrProductNotFound; this method never aborts a scan.
func (c *Client) Lookup(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("barcode", barcode).Msg("catalog lookup error")
		return nil, domain.ErrProductNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("barcode", barcode).Msg("catalog lookup failed")
		return nil, domain.ErrProductNotFound
	}

	var payload productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn().Err(err).Str("barcode", barcode).Msg("catalog response decode error")
		return nil, domain.ErrProductNotFound
	}

	if payload.Status != 1 {
		c.logger.Debug().Str("barcode", barcode).Msg("product not in catalog")
		return nil, domain.ErrProductNotFound
	}

	name := deriveName(payload.Product)
	if name == "" {
		c.logger.Debug().Str("barcode", barcode).Msg("catalog entry has no usable name")
		return nil, domain.ErrProductNotFound
	}

	c.logger.Debug().Str("barcode", barcode).Str("name", name).Msg("catalog hit")
	return &domain.ProductRecord{
		Name:       name,
		Brands:     payload.Product.Brands,
		Categories: payload.Product.Categories,
		Source:     SourceCatalog,
	}, nil
}

// deriveName picks a display name from the heterogeneous catalog fields:
// product name, then generic name, then brands, then the first
// comma-separated segment of categories. First non-empty trimmed candidate
// wins.
func deriveName(p productPayload) string {
	candidates := []string{
		p.ProductName,
		p.GenericName,
		p.Brands,
		firstSegment(p.Categories),
	}
	for _, c := range candidates {
		if name := strings.TrimSpace(c); name != "" {
			return name
		}
	}
	return ""
}

func firstSegment(s string) string {
	if idx := strings.Index(s, ","); idx >= 0 {
		return s[:idx]
	}
	return s
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/repository"
	"golang.org/x/sync/singleflight"
)

const defaultRequestTimeout = 10 * time.Second

type CatalogClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// catalogClient fetches live product records from the catalog's REST API.
// Concurrent fetches for the same product collapse into one request via
// singleflight.
type catalogClient struct {
	baseURL    string
	httpClient *http.Client
	sfg        singleflight.Group
}

func NewCatalogClient(cfg CatalogClientConfig) (repository.ProductCatalog, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base URL is not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &catalogClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *catalogClient) GetProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	key := strconv.FormatInt(productID, 10)
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		return c.fetchProduct(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Product), nil
}

func (c *catalogClient) fetchProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	url := fmt.Sprintf("%s/api/productos/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var product entity.Product
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			return nil, fmt.Errorf("failed to decode catalog response for product %d: %w", productID, err)
		}
		return &product, nil
	case http.StatusNotFound:
		return nil, repository.ErrNotFound
	default:
		return nil, fmt.Errorf("catalog service returned status %d for product %d", resp.StatusCode, productID)
	}
}

package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crazygels/internal/logger"
)

// Client talks to the Shopify Admin REST API with a private app token.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken, apiVersion string, logger *logger.Logger) *Client {
	if apiVersion == "" {
		apiVersion = "2024-01"
	}
	return &Client{
		shopDomain:  strings.TrimSuffix(shopDomain, ".myshopify.com"),
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/%s", c.shopDomain, c.apiVersion, path)
}

// GetProducts fetches a page of products from Shopify.
func (c *Client) GetProducts(limit int, pageInfo string) (*ProductsResponse, error) {
	req, err := http.NewRequest("GET", c.adminURL("products.json"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productsResp ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&productsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Cursor for the next page lives in the Link header
	productsResp.NextPageInfo = parseNextPageInfo(resp.Header.Get("Link"))

	return &productsResp, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(productID int64) (*Product, error) {
	req, err := http.NewRequest("GET", c.adminURL(fmt.Sprintf("products/%d.json", productID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &productResp.Product, nil
}

// CreateProduct creates a product in Shopify and returns it with IDs filled.
func (c *Client) CreateProduct(product *NewProduct) (*Product, error) {
	payload := struct {
		Product NewProduct `json:"product"`
	}{
		Product: *product,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequest("POST", c.adminURL("products.json"), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &productResp.Product, nil
}

// UpdateProduct updates a product in Shopify.
func (c *Client) UpdateProduct(product *Product) error {
	payload := struct {
		Product Product `json:"product"`
	}{
		Product: *product,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequest("PUT", c.adminURL(fmt.Sprintf("products/%d.json", product.ID)), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetShopInfo fetches shop information.
func (c *Client) GetShopInfo() (*Shop, error) {
	req, err := http.NewRequest("GET", c.adminURL("shop.json"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var shopResp struct {
		Shop Shop `json:"shop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&shopResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &shopResp.Shop, nil
}

// parseNextPageInfo extracts the page_info cursor from a Shopify Link header
// like: <https://shop.myshopify.com/...&page_info=abc>; rel="next".
func parseNextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "page_info=")
		if start == -1 {
			return ""
		}
		cursor := part[start+len("page_info="):]
		if end := strings.IndexAny(cursor, ">&"); end != -1 {
			cursor = cursor[:end]
		}
		return cursor
	}
	return ""
}

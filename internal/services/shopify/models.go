package shopify

import (
	"time"
)

// Product represents a Shopify product (Admin REST shape).
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	Options     []Option   `json:"options"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant represents a product variant.
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	Sku               string  `json:"sku"`
	Position          int     `json:"position"`
	InventoryPolicy   string  `json:"inventory_policy"`
	CompareAtPrice    *string `json:"compare_at_price"`
	Taxable           bool    `json:"taxable"`
	Barcode           *string `json:"barcode"`
	Grams             int     `json:"grams"`
	Weight            float64 `json:"weight"`
	WeightUnit        string  `json:"weight_unit"`
	InventoryQuantity int     `json:"inventory_quantity"`
	RequiresShipping  bool    `json:"requires_shipping"`
}

// Image represents a product image.
type Image struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Position  int     `json:"position"`
	Alt       *string `json:"alt"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Src       string  `json:"src"`
}

// Option represents a product option.
type Option struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Values    []string `json:"values"`
}

// NewProduct is the create payload for the Admin API. Shopify assigns IDs, so
// the nested types carry only the writable fields.
type NewProduct struct {
	Title       string       `json:"title"`
	BodyHTML    string       `json:"body_html,omitempty"`
	Vendor      string       `json:"vendor,omitempty"`
	ProductType string       `json:"product_type,omitempty"`
	Tags        string       `json:"tags,omitempty"`
	Status      string       `json:"status,omitempty"`
	Variants    []NewVariant `json:"variants,omitempty"`
	Images      []NewImage   `json:"images,omitempty"`
}

type NewVariant struct {
	Price             string `json:"price"`
	Sku               string `json:"sku,omitempty"`
	InventoryQuantity int    `json:"inventory_quantity,omitempty"`
	RequiresShipping  bool   `json:"requires_shipping"`
	Taxable           bool   `json:"taxable"`
}

type NewImage struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Shop holds the subset of shop info the app reads.
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	Currency        string `json:"currency"`
	Timezone        string `json:"timezone"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// ProductsResponse represents a page of products plus the cursor for the
// next page, taken from the Link header.
type ProductsResponse struct {
	Products     []Product `json:"products"`
	NextPageInfo string    `json:"-"`
}

// WebhookPayload is the body of a products/* webhook.
type WebhookPayload struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"`
	Variants    []Variant `json:"variants"`
	UpdatedAt   time.Time `json:"updated_at"`
}

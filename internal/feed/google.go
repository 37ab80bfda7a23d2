package feed

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"crazygels/internal/logger"
	"crazygels/internal/services/shopify"
)

const (
	gNamespace   = "http://base.google.com/ns/1.0"
	feedTitle    = "Crazy Gels"
	feedCurrency = "EUR"
)

// ProductSource is the slice of the Admin API the feed walks.
type ProductSource interface {
	GetProducts(limit int, pageInfo string) (*shopify.ProductsResponse, error)
}

// Feed renders the Google Shopping merchant feed from live Shopify products.
type Feed struct {
	shopify ProductSource
	baseURL string
	logger  *logger.Logger
}

func New(client ProductSource, baseURL string, logger *logger.Logger) *Feed {
	return &Feed{
		shopify: client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	XMLNSG  string   `xml:"xmlns:g,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	ID           string `xml:"g:id"`
	Title        string `xml:"g:title"`
	Description  string `xml:"g:description"`
	Link         string `xml:"g:link"`
	ImageLink    string `xml:"g:image_link,omitempty"`
	Availability string `xml:"g:availability"`
	Price        string `xml:"g:price"`
	Brand        string `xml:"g:brand,omitempty"`
	GTIN         string `xml:"g:gtin,omitempty"`
	MPN          string `xml:"g:mpn,omitempty"`
	Condition    string `xml:"g:condition"`
	ProductType  string `xml:"g:product_type,omitempty"`
	ItemGroupID  string `xml:"g:item_group_id,omitempty"`
}

var gtinPattern = regexp.MustCompile(`^\d{12,14}$`)
var tagStripper = regexp.MustCompile(`<[^>]*>`)

// Generate walks all Shopify products and renders one feed item per variant.
func (f *Feed) Generate() ([]byte, error) {
	items := []item{}
	pageInfo := ""

	for {
		resp, err := f.shopify.GetProducts(250, pageInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products for feed: %w", err)
		}

		for _, product := range resp.Products {
			if product.Status != "active" {
				continue
			}
			items = append(items, f.productItems(product)...)
		}

		if resp.NextPageInfo == "" {
			break
		}
		pageInfo = resp.NextPageInfo
	}

	doc := rss{
		Version: "2.0",
		XMLNSG:  gNamespace,
		Channel: channel{
			Title:       feedTitle,
			Link:        f.baseURL,
			Description: "Crazy Gels product feed",
			Items:       items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func (f *Feed) productItems(product shopify.Product) []item {
	items := make([]item, 0, len(product.Variants))

	imageLink := ""
	if len(product.Images) > 0 {
		imageLink = product.Images[0].Src
	}

	description := tagStripper.ReplaceAllString(product.BodyHTML, " ")
	description = strings.Join(strings.Fields(description), " ")
	if description == "" {
		description = product.Title
	}
	if runes := []rune(description); len(runes) > 5000 {
		description = string(runes[:5000])
	}

	for _, variant := range product.Variants {
		price, err := strconv.ParseFloat(variant.Price, 64)
		if err != nil || price <= 0 {
			f.logger.Warn("Skipping variant %d of product %d: no usable price", variant.ID, product.ID)
			continue
		}

		title := product.Title
		if variant.Title != "" && variant.Title != "Default Title" {
			title = fmt.Sprintf("%s - %s", product.Title, variant.Title)
		}

		entry := item{
			ID:           fmt.Sprintf("shopify_%d_%d", product.ID, variant.ID),
			Title:        title,
			Description:  description,
			Link:         fmt.Sprintf("%s/products/%s", f.baseURL, product.Handle),
			ImageLink:    imageLink,
			Availability: availability(variant),
			Price:        fmt.Sprintf("%.2f %s", price, feedCurrency),
			Brand:        product.Vendor,
			Condition:    "new",
			ProductType:  product.ProductType,
			MPN:          variant.Sku,
		}
		if variant.Barcode != nil && gtinPattern.MatchString(*variant.Barcode) {
			entry.GTIN = *variant.Barcode
		}
		if len(product.Variants) > 1 {
			entry.ItemGroupID = fmt.Sprintf("shopify_%d", product.ID)
		}
		items = append(items, entry)
	}
	return items
}

func availability(variant shopify.Variant) string {
	if variant.InventoryQuantity > 0 {
		return "in stock"
	}
	return "out of stock"
}

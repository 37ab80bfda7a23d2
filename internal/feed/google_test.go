package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"unicode/utf8"

	"crazygels/internal/logger"
	"crazygels/internal/services/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type fakeSource struct {
	pages []*shopify.ProductsResponse
	calls int
}

func (f *fakeSource) GetProducts(limit int, pageInfo string) (*shopify.ProductsResponse, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func storeProducts() []shopify.Product {
	return []shopify.Product{
		{
			ID:          111,
			Title:       "Gel Polish Kit",
			BodyHTML:    "<p>Long lasting <b>gel</b> polish.</p>",
			Vendor:      "Crazy Gels",
			ProductType: "nail_polish",
			Handle:      "gel-polish-kit",
			Status:      "active",
			Images:      []shopify.Image{{Src: "https://cdn.example.com/kit.jpg"}},
			Variants: []shopify.Variant{
				{ID: 1, Title: "Red", Price: "19.99", Sku: "CG-RED", Barcode: ptr("4006381333931"), InventoryQuantity: 12},
				{ID: 2, Title: "Blue", Price: "19.99", Sku: "CG-BLUE", Barcode: ptr("not-a-gtin"), InventoryQuantity: 0},
			},
		},
		{
			ID:     222,
			Title:  "Hidden Draft",
			Status: "draft",
			Variants: []shopify.Variant{
				{ID: 3, Title: "Default Title", Price: "9.99"},
			},
		},
	}
}

func TestGenerateFeed(t *testing.T) {
	source := &fakeSource{pages: []*shopify.ProductsResponse{
		{Products: storeProducts(), NextPageInfo: ""},
	}}
	f := New(source, "https://crazygels.com/", logger.New("error"))

	data, err := f.Generate()
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `xmlns:g="http://base.google.com/ns/1.0"`)

	// One item per variant of the active product, none for the draft.
	assert.Contains(t, out, "<g:id>shopify_111_1</g:id>")
	assert.Contains(t, out, "<g:id>shopify_111_2</g:id>")
	assert.NotContains(t, out, "shopify_222")

	assert.Contains(t, out, "<g:title>Gel Polish Kit - Red</g:title>")
	assert.Contains(t, out, "<g:price>19.99 EUR</g:price>")
	assert.Contains(t, out, "<g:link>https://crazygels.com/products/gel-polish-kit</g:link>")
	assert.Contains(t, out, "<g:availability>in stock</g:availability>")
	assert.Contains(t, out, "<g:availability>out of stock</g:availability>")
	assert.Contains(t, out, "<g:item_group_id>shopify_111</g:item_group_id>")

	// HTML is stripped from descriptions.
	assert.Contains(t, out, "Long lasting gel polish.")
	assert.NotContains(t, out, "<p>")

	// Only numeric 12-14 digit barcodes become GTINs.
	assert.Contains(t, out, "<g:gtin>4006381333931</g:gtin>")
	assert.NotContains(t, out, "not-a-gtin")
}

func TestGenerateFeedSkipsUnpricedVariants(t *testing.T) {
	source := &fakeSource{pages: []*shopify.ProductsResponse{
		{Products: []shopify.Product{
			{
				ID:     333,
				Title:  "Top Coat",
				Handle: "top-coat",
				Status: "active",
				Variants: []shopify.Variant{
					{ID: 10, Title: "Default Title", Price: "8.5", InventoryQuantity: 3},
					{ID: 11, Title: "Broken", Price: "", InventoryQuantity: 3},
					{ID: 12, Title: "Zero", Price: "0.00", InventoryQuantity: 3},
				},
			},
		}},
	}}
	f := New(source, "https://crazygels.com", logger.New("error"))

	data, err := f.Generate()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "<g:id>shopify_333_10</g:id>")
	assert.Contains(t, out, "<g:price>8.50 EUR</g:price>")
	assert.NotContains(t, out, "shopify_333_11")
	assert.NotContains(t, out, "shopify_333_12")
	assert.NotContains(t, out, "<g:price> EUR</g:price>")
}

func TestGenerateFeedTruncatesDescriptionOnRuneBoundary(t *testing.T) {
	source := &fakeSource{pages: []*shopify.ProductsResponse{
		{Products: []shopify.Product{
			{
				ID:       444,
				Title:    "Longform",
				Handle:   "longform",
				Status:   "active",
				BodyHTML: strings.Repeat("é", 5100),
				Variants: []shopify.Variant{
					{ID: 20, Title: "Default Title", Price: "12.00", InventoryQuantity: 1},
				},
			},
		}},
	}}
	f := New(source, "https://crazygels.com", logger.New("error"))

	data, err := f.Generate()
	require.NoError(t, err)
	require.True(t, utf8.Valid(data))

	out := string(data)
	start := strings.Index(out, "<g:description>") + len("<g:description>")
	end := strings.Index(out, "</g:description>")
	require.Greater(t, end, start)
	assert.Equal(t, 5000, utf8.RuneCountInString(out[start:end]))
}

func TestGenerateFeedPaginates(t *testing.T) {
	source := &fakeSource{pages: []*shopify.ProductsResponse{
		{Products: storeProducts()[:1], NextPageInfo: "cursor"},
		{Products: []shopify.Product{}, NextPageInfo: ""},
	}}
	f := New(source, "https://crazygels.com", logger.New("error"))

	_, err := f.Generate()
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

package shopify

import (
	"context"
	"fmt"

	"crazygels/internal/logger"

	"github.com/machinebox/graphql"
)

// Storefront talks to the Shopify Storefront GraphQL API. It carries the
// public token, so it only ever sees published data.
type Storefront struct {
	client *graphql.Client
	token  string
	logger *logger.Logger
}

func NewStorefront(shopDomain, token, apiVersion string, logger *logger.Logger) *Storefront {
	if apiVersion == "" {
		apiVersion = "2024-01"
	}
	url := fmt.Sprintf("https://%s.myshopify.com/api/%s/graphql.json", shopDomain, apiVersion)
	return &Storefront{
		client: graphql.NewClient(url),
		token:  token,
		logger: logger,
	}
}

type StorefrontImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type StorefrontMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type StorefrontVariant struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	AvailableForSale  bool            `json:"availableForSale"`
	Price             StorefrontMoney `json:"price"`
	QuantityAvailable int             `json:"quantityAvailable"`
}

type StorefrontProduct struct {
	ID            string          `json:"id"`
	Handle        string          `json:"handle"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Vendor        string          `json:"vendor"`
	FeaturedImage StorefrontImage `json:"featuredImage"`
	Variants      struct {
		Edges []struct {
			Node StorefrontVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type StorefrontCollection struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	Products struct {
		Edges []struct {
			Node StorefrontProduct `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

type CartLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Merchandise struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"merchandise"`
}

type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	TotalQuantity int  `json:"totalQuantity"`
	Cost        struct {
		TotalAmount StorefrontMoney `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node CartLine `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func (s *Storefront) run(ctx context.Context, req *graphql.Request, out interface{}) error {
	req.Header.Set("X-Shopify-Storefront-Access-Token", s.token)
	req.Header.Set("Content-Type", "application/json")
	return s.client.Run(ctx, req, out)
}

// GetCollection fetches a collection with its first page of products.
// Returns nil when no collection has the handle.
func (s *Storefront) GetCollection(ctx context.Context, handle string, first int) (*StorefrontCollection, error) {
	req := graphql.NewRequest(`
	query getCollection($handle: String!, $first: Int!) {
		collectionByHandle(handle: $handle) {
			id
			handle
			title
			products(first: $first) {
				edges {
					node {
						id
						handle
						title
						description
						vendor
						featuredImage { url altText }
						variants(first: 10) {
							edges {
								node {
									id
									title
									availableForSale
									quantityAvailable
									price { amount currencyCode }
								}
							}
						}
					}
				}
			}
		}
	}`)
	req.Var("handle", handle)
	req.Var("first", first)

	var resp struct {
		CollectionByHandle *StorefrontCollection `json:"collectionByHandle"`
	}
	if err := s.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch collection %s: %w", handle, err)
	}
	return resp.CollectionByHandle, nil
}

// GetProductByHandle fetches a single published product.
func (s *Storefront) GetProductByHandle(ctx context.Context, handle string) (*StorefrontProduct, error) {
	req := graphql.NewRequest(`
	query getProductByHandle($handle: String!) {
		productByHandle(handle: $handle) {
			id
			handle
			title
			description
			vendor
			featuredImage { url altText }
			variants(first: 10) {
				edges {
					node {
						id
						title
						availableForSale
						quantityAvailable
						price { amount currencyCode }
					}
				}
			}
		}
	}`)
	req.Var("handle", handle)

	var resp struct {
		ProductByHandle *StorefrontProduct `json:"productByHandle"`
	}
	if err := s.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", handle, err)
	}
	return resp.ProductByHandle, nil
}

// CreateCart creates an empty cart.
func (s *Storefront) CreateCart(ctx context.Context) (*Cart, error) {
	req := graphql.NewRequest(`
	mutation cartCreate {
		cartCreate {
			cart {
				id
				checkoutUrl
				totalQuantity
				cost { totalAmount { amount currencyCode } }
				lines(first: 50) {
					edges { node { id quantity merchandise { ... on ProductVariant { id title } } } }
				}
			}
		}
	}`)

	var resp struct {
		CartCreate struct {
			Cart *Cart `json:"cart"`
		} `json:"cartCreate"`
	}
	if err := s.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if resp.CartCreate.Cart == nil {
		return nil, fmt.Errorf("cart creation returned no cart")
	}
	return resp.CartCreate.Cart, nil
}

// AddCartLines adds a variant to an existing cart.
func (s *Storefront) AddCartLines(ctx context.Context, cartID, variantID string, quantity int) (*Cart, error) {
	req := graphql.NewRequest(`
	mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
		cartLinesAdd(cartId: $cartId, lines: $lines) {
			cart {
				id
				checkoutUrl
				totalQuantity
				cost { totalAmount { amount currencyCode } }
				lines(first: 50) {
					edges { node { id quantity merchandise { ... on ProductVariant { id title } } } }
				}
			}
		}
	}`)
	req.Var("cartId", cartID)
	req.Var("lines", []map[string]interface{}{
		{"merchandiseId": variantID, "quantity": quantity},
	})

	var resp struct {
		CartLinesAdd struct {
			Cart *Cart `json:"cart"`
		} `json:"cartLinesAdd"`
	}
	if err := s.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to add cart lines: %w", err)
	}
	if resp.CartLinesAdd.Cart == nil {
		return nil, fmt.Errorf("cart %s not found", cartID)
	}
	return resp.CartLinesAdd.Cart, nil
}

// GetCart fetches an existing cart by ID.
func (s *Storefront) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	req := graphql.NewRequest(`
	query getCart($cartId: ID!) {
		cart(id: $cartId) {
			id
			checkoutUrl
			totalQuantity
			cost { totalAmount { amount currencyCode } }
			lines(first: 50) {
				edges { node { id quantity merchandise { ... on ProductVariant { id title } } } }
			}
		}
	}`)
	req.Var("cartId", cartID)

	var resp struct {
		Cart *Cart `json:"cart"`
	}
	if err := s.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return resp.Cart, nil
}

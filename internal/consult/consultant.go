package consult

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"gorm.io/gorm"
)

const systemPrompt = `You are Gigi, the Crazy Gels skincare consultant. You help shoppers pick
products for their skin concerns. Be warm, concise and honest: if nothing in
the catalog fits, say so. Ask one clarifying question when the concern is
unclear. Always mention contraindications (for example retinoids during
pregnancy) when recommending a product that has them. Use the
recommend_products tool to look up matching products before recommending
anything; never invent products.`

// Recommendation is one catalog match returned to the chat.
type Recommendation struct {
	ProductHash       string   `json:"product_hash"`
	DisplayName       string   `json:"display_name"`
	ProductType       string   `json:"product_type"`
	Brand             string   `json:"brand,omitempty"`
	RetailPrice       *float64 `json:"retail_price,omitempty"`
	EfficacyScore     *float64 `json:"efficacy_score,omitempty"`
	KeyActives        []string `json:"key_actives,omitempty"`
	SuitableFor       []string `json:"suitable_for,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`
	Status            string   `json:"status"`
}

// toolArgs are the model-provided arguments for recommend_products.
type toolArgs struct {
	Concern     string  `json:"concern"`
	ProductType string  `json:"product_type"`
	MaxPrice    float64 `json:"max_price"`
}

type Consultant struct {
	db         *gorm.DB
	logger     *logger.Logger
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

func New(db *gorm.DB, logger *logger.Logger, apiKey, model string) *Consultant {
	return &Consultant{
		db:     db,
		logger: logger,
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithAPIURL overrides the completion endpoint, used by tests.
func (c *Consultant) WithAPIURL(url string) *Consultant {
	c.apiURL = url
	return c
}

// Reply runs one consultation turn: forward the conversation, resolve any
// recommend_products tool call against the catalog, and return the final
// answer plus the products that were recommended.
func (c *Consultant) Reply(ctx context.Context, conversation []Message) (string, []Recommendation, error) {
	if c.apiKey == "" {
		return "", nil, fmt.Errorf("consultant is not configured")
	}

	messages := append([]Message{{Role: "system", Content: systemPrompt}}, conversation...)

	reqBody := &chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       []tool{recommendTool()},
		Temperature: 0.4,
		MaxTokens:   700,
	}

	msg, err := c.callChat(ctx, reqBody)
	if err != nil {
		return "", nil, err
	}

	if len(msg.ToolCalls) == 0 {
		return msg.Content, nil, nil
	}

	// Resolve tool calls and ask the model for its final answer.
	messages = append(messages, *msg)
	var recommended []Recommendation
	for _, call := range msg.ToolCalls {
		if call.Function.Name != "recommend_products" {
			messages = append(messages, Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    `{"error": "unknown tool"}`,
			})
			continue
		}

		var args toolArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			c.logger.Error("Bad tool arguments: %v", err)
			messages = append(messages, Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    `{"error": "invalid arguments"}`,
			})
			continue
		}

		matches, err := c.Recommend(args)
		if err != nil {
			return "", nil, err
		}
		recommended = append(recommended, matches...)

		result, _ := json.Marshal(matches)
		messages = append(messages, Message{
			Role:       "tool",
			ToolCallID: call.ID,
			Content:    string(result),
		})
	}

	final, err := c.callChat(ctx, &chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   700,
	})
	if err != nil {
		return "", nil, err
	}

	return final.Content, recommended, nil
}

// Recommend queries the catalog for products matching a concern. Listed and
// sampled products rank before research candidates, then by efficacy.
func (c *Consultant) Recommend(args toolArgs) ([]Recommendation, error) {
	query := c.db.Model(&models.CatalogProduct{})

	if args.Concern != "" {
		// suitable_for is a JSON array; match the quoted element
		query = query.Where(models.JSONTextExpr(c.db, "suitable_for")+" LIKE ?", `%"`+args.Concern+`"%`)
	}
	if args.ProductType != "" {
		query = query.Where("product_type = ?", args.ProductType)
	}
	if args.MaxPrice > 0 {
		query = query.Where("retail_price IS NULL OR retail_price <= ?", args.MaxPrice)
	}

	var products []models.CatalogProduct
	err := query.
		Order("CASE status WHEN 'listed' THEN 0 WHEN 'sampled' THEN 1 ELSE 2 END").
		Order("(efficacy_score IS NULL), efficacy_score DESC").
		Limit(5).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	recommendations := make([]Recommendation, 0, len(products))
	for _, p := range products {
		rec := Recommendation{
			ProductHash:       p.ProductHash,
			DisplayName:       p.DisplayName,
			ProductType:       p.ProductType,
			RetailPrice:       p.RetailPrice,
			EfficacyScore:     p.EfficacyScore,
			KeyActives:        p.KeyActives,
			SuitableFor:       p.SuitableFor,
			Contraindications: p.Contraindications,
			Status:            p.Status,
		}
		if p.Brand != nil {
			rec.Brand = *p.Brand
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

func recommendTool() tool {
	return tool{
		Type: "function",
		Function: toolFunction{
			Name:        "recommend_products",
			Description: "Look up catalog products matching a skin concern, optionally filtered by product type and maximum price in EUR.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"concern": map[string]interface{}{
						"type":        "string",
						"description": "Skin concern, e.g. acne, aging, dryness, hyperpigmentation, sensitivity",
					},
					"product_type": map[string]interface{}{
						"type":        "string",
						"description": "Optional product type: serum, moisturizer, cleanser, toner, mask",
					},
					"max_price": map[string]interface{}{
						"type":        "number",
						"description": "Optional maximum price in EUR",
					},
				},
				"required": []string{"concern"},
			},
		},
	}
}

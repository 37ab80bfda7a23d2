package klaviyo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crazygels/internal/logger"
)

const apiRevision = "2024-02-15"

// Client subscribes storefront visitors to the Klaviyo newsletter list.
type Client struct {
	apiKey     string
	listID     string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(apiKey, listID string, logger *logger.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		listID: listID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.listID != ""
}

// Subscribe creates a profile subscription job for the configured list.
func (c *Client) Subscribe(email string) error {
	if !c.Configured() {
		return fmt.Errorf("klaviyo is not configured")
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "profile-subscription-bulk-create-job",
			"attributes": map[string]interface{}{
				"profiles": map[string]interface{}{
					"data": []map[string]interface{}{
						{
							"type": "profile",
							"attributes": map[string]interface{}{
								"email": email,
								"subscriptions": map[string]interface{}{
									"email": map[string]interface{}{
										"marketing": map[string]interface{}{
											"consent": "SUBSCRIBED",
										},
									},
								},
							},
						},
					},
				},
			},
			"relationships": map[string]interface{}{
				"list": map[string]interface{}{
					"data": map[string]interface{}{
						"type": "list",
						"id":   c.listID,
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	req, err := http.NewRequest("POST", "https://a.klaviyo.com/api/profile-subscription-bulk-create-jobs/", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("revision", apiRevision)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("Subscribed %s to list %s", email, c.listID)
	return nil
}

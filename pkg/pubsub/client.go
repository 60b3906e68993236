package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/rcabrera/tillpoint-backend/pkg/config"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

// Client publishes register events to the configured Pub/Sub topics.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewClient creates a Pub/Sub v2 client for the configured project.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		projectID: gcp.ProjectID,
		cfg:       cfg,
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}

	return c, nil
}

// SaleCompletedEvent is the payload published after a successful checkout.
type SaleCompletedEvent struct {
	InvoiceID        string    `json:"invoice_id"`
	InvoiceNumber    int64     `json:"invoice_number"`
	RegisterID       string    `json:"register_id"`
	GrandTotalAmount string    `json:"grand_total_amount"`
	TotalTaxAmount   string    `json:"total_tax_amount"`
	LineCount        int       `json:"line_count"`
	IssuedAt         time.Time `json:"issued_at"`
}

// PublishSaleCompleted publishes the event to the sales topic and waits for
// the server acknowledgement.
func (c *Client) PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding sale event: %w", err)
	}

	publisher := c.publisher(c.cfg.SalesTopic)
	if publisher == nil {
		return fmt.Errorf("sales topic %q not configured", c.cfg.SalesTopic)
	}

	result := publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type":  "sale.completed",
			"register_id": event.RegisterID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing sale event: %w", err)
	}
	return nil
}

func (c *Client) publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.topicResourceName(name)
	if fullName == "" {
		return nil
	}
	return c.client.Publisher(fullName)
}

// Close releases the Pub/Sub client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}

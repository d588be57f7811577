package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// Client publishes enrollment domain events to Google Cloud Pub/Sub.
type Client struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	projectID string
}

// NewClient creates a Pub/Sub v2 client bound to the enrollment topic.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.EnrollmentTopic) == "" {
		return nil, errors.New("pubsub topic name is required")
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		publisher: psClient.Publisher(cfg.EnrollmentTopic),
		projectID: gcp.ProjectID,
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}

	return c, nil
}

// Publish sends one message and waits for the server acknowledgement.
func (c *Client) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	result := c.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing message: %w", err)
	}
	return id, nil
}

// IsTopicNotFound reports whether a publish failed because the topic has not
// been provisioned. Retrying these without operator action is pointless.
func IsTopicNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Close releases the publisher and the underlying client.
func (c *Client) Close() error {
	if c.publisher != nil {
		c.publisher.Stop()
	}
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

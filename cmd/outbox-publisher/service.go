package main

import (
	"context"
	"time"

	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
	"github.com/nadiaferrer/studiohub-backend/pkg/pubsub"
)

// eventPublisher is the transport surface; satisfied by the pubsub client.
type eventPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// Publisher drains unpublished outbox rows and relays them to Pub/Sub.
// Delivery is at-least-once: a row is only marked published after the broker
// acknowledges, so a crash in between republishes the event.
type Publisher struct {
	repo      *outbox.Repository
	transport eventPublisher
	cfg       config.OutboxConfig
	logg      *logger.Logger
}

// NewPublisher wires the relay loop.
func NewPublisher(repo *outbox.Repository, transport eventPublisher, cfg config.OutboxConfig, logg *logger.Logger) *Publisher {
	return &Publisher{repo: repo, transport: transport, cfg: cfg, logg: logg}
}

// Run polls until the context is canceled.
func (p *Publisher) Run(ctx context.Context) error {
	interval := p.cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	batch := p.cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	rows, err := p.repo.FetchUnpublished(batch)
	if err != nil {
		p.logg.Error(ctx, "fetching outbox batch failed", err)
		return
	}
	for _, row := range rows {
		p.relay(ctx, row)
	}
}

func (p *Publisher) relay(ctx context.Context, row models.OutboxEvent) {
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"event_id":   row.ID.String(),
		"event_type": row.EventType.String(),
	})

	attrs := map[string]string{
		"event_type":     row.EventType.String(),
		"aggregate_type": row.AggregateType.String(),
		"aggregate_id":   row.AggregateID.String(),
	}
	if _, err := p.transport.Publish(ctx, row.Payload, attrs); err != nil {
		if pubsub.IsTopicNotFound(err) {
			p.logg.Error(logCtx, "enrollment topic is not provisioned", err)
		} else {
			p.logg.Error(logCtx, "publish failed", err)
		}
		if markErr := p.repo.MarkFailed(row.ID, err); markErr != nil {
			p.logg.Error(logCtx, "recording publish failure failed", markErr)
		}
		return
	}
	if err := p.repo.MarkPublished(row.ID); err != nil {
		p.logg.Error(logCtx, "marking event published failed", err)
		return
	}
	p.logg.Info(logCtx, "outbox event published")
}

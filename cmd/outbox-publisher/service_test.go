package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
)

type fakeTransport struct {
	published [][]byte
	attrs     []map[string]string
	err       error
}

func (f *fakeTransport) Publish(_ context.Context, data []byte, attributes map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, data)
	f.attrs = append(f.attrs, attributes)
	return uuid.NewString(), nil
}

func newPublisherFixture(t *testing.T, transport eventPublisher) (*Publisher, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:outbox_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}))

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	publisher := NewPublisher(outbox.NewRepository(conn), transport, config.OutboxConfig{BatchSize: 10}, logg)
	return publisher, conn
}

func seedOutboxEvent(t *testing.T, conn *gorm.DB) models.OutboxEvent {
	t.Helper()
	row := models.OutboxEvent{
		EventType:     enums.EventEnrollmentCommitted,
		AggregateType: enums.AggregateCart,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
	}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func TestDrainPublishesAndMarks(t *testing.T) {
	transport := &fakeTransport{}
	publisher, conn := newPublisherFixture(t, transport)
	row := seedOutboxEvent(t, conn)

	publisher.drain(context.Background())

	require.Len(t, transport.published, 1)
	assert.Equal(t, "enrollment.committed", transport.attrs[0]["event_type"])
	assert.Equal(t, row.AggregateID.String(), transport.attrs[0]["aggregate_id"])

	var reloaded models.OutboxEvent
	require.NoError(t, conn.Where("id = ?", row.ID).First(&reloaded).Error)
	assert.NotNil(t, reloaded.PublishedAt)
}

func TestDrainRecordsFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("broker down")}
	publisher, conn := newPublisherFixture(t, transport)
	row := seedOutboxEvent(t, conn)

	publisher.drain(context.Background())

	var reloaded models.OutboxEvent
	require.NoError(t, conn.Where("id = ?", row.ID).First(&reloaded).Error)
	assert.Nil(t, reloaded.PublishedAt)
	assert.Equal(t, 1, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)
	assert.Contains(t, *reloaded.LastError, "broker down")

	// The row stays eligible for the next poll.
	rows, err := outbox.NewRepository(conn).FetchUnpublished(10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// Package trigger consumes record-created events from a Redis Stream and
// hands the referenced documents to the dispatch pipeline. Delivery is
// at-least-once: an event is acknowledged only after the handler returns,
// so a crashed consumer leaves its batch pending for redelivery.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"email-dispatch/internal/common/config"
	"email-dispatch/internal/common/logger"
	"email-dispatch/internal/common/metrics"
	"email-dispatch/internal/store"
)

// Event field names on the stream. Producers append an entry per created
// record; the consumer loads the document itself, so a stale event body can
// never override the stored request.
const (
	fieldCollection = "collection"
	fieldDocumentID = "documentId"
)

const errorBackoff = time.Second

// Handler processes one created record. Satisfied by dispatch.Service.
type Handler interface {
	Process(ctx context.Context, collection, id string, doc store.Document) error
}

// Consumer is a consumer-group reader over the trigger stream.
type Consumer struct {
	client  *redis.Client
	store   store.DocumentStore
	handler Handler
	cfg     config.TriggerConfig
	logger  logger.Logger
}

func NewConsumer(client *redis.Client, docs store.DocumentStore, handler Handler, cfg config.TriggerConfig, log logger.Logger) *Consumer {
	return &Consumer{
		client:  client,
		store:   docs,
		handler: handler,
		cfg:     cfg,
		logger: log.WithFields(map[string]interface{}{
			"stream": cfg.Stream,
			"group":  cfg.Group,
		}),
	}
}

// Run blocks consuming events until ctx is cancelled. In-flight handlers are
// waited for before returning.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	maxInFlight := c.cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	block := time.Duration(c.cfg.BlockMs) * time.Millisecond
	if block <= 0 {
		block = 5 * time.Second
	}

	c.logger.Info("trigger consumer started", map[string]interface{}{
		"consumer":    c.cfg.Consumer,
		"maxInFlight": maxInFlight,
	})

	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup

	for {
		if ctx.Err() != nil {
			break
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    int64(maxInFlight),
			Block:    block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			c.logger.WithError(err).Error("stream read failed", nil)
			sleep(ctx, errorBackoff)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					// Unclaimed messages stay pending for the next run.
					wg.Wait()
					c.logger.Info("trigger consumer stopped", nil)
					return ctx.Err()
				}
				wg.Add(1)
				go func(msg redis.XMessage) {
					defer wg.Done()
					defer func() { <-sem }()
					c.handle(ctx, msg)
				}(msg)
			}
		}
	}

	wg.Wait()
	c.logger.Info("trigger consumer stopped", nil)
	return ctx.Err()
}

// ensureGroup creates the consumer group at the stream head, creating the
// stream itself when missing. An already-existing group is fine.
func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", c.cfg.Group, c.cfg.Stream, err)
	}
	return nil
}

// handle processes one stream entry and acknowledges it. Malformed events
// and absent documents are acknowledged too: redelivering them can never
// succeed. A handler error is also acknowledged, because the pipeline has
// already recorded the terminal error status on the document.
func (c *Consumer) handle(ctx context.Context, msg redis.XMessage) {
	collection, _ := msg.Values[fieldCollection].(string)
	id, _ := msg.Values[fieldDocumentID].(string)
	log := c.logger.WithFields(map[string]interface{}{
		"messageId":  msg.ID,
		"collection": collection,
		"documentId": id,
	})

	if collection == "" || id == "" {
		metrics.EventsConsumed.WithLabelValues("malformed").Inc()
		log.Warn("dropping malformed trigger event", map[string]interface{}{
			"values": msg.Values,
		})
		c.ack(ctx, log, msg.ID)
		return
	}

	doc, err := c.store.Get(ctx, collection, id)
	if err != nil {
		// Leave the event pending so a later claim can retry the load.
		metrics.EventsConsumed.WithLabelValues("load_failed").Inc()
		log.WithError(err).Error("document load failed, leaving event pending", nil)
		return
	}
	if doc == nil {
		metrics.EventsConsumed.WithLabelValues("missing").Inc()
		log.Warn("document referenced by event does not exist", nil)
		c.ack(ctx, log, msg.ID)
		return
	}

	// Redelivered event for a record that already went out.
	if status, _ := doc["status"].(string); status == "sent" {
		metrics.EventsConsumed.WithLabelValues("skipped").Inc()
		log.Info("record already sent, skipping redelivery", nil)
		c.ack(ctx, log, msg.ID)
		return
	}

	if err := c.handler.Process(ctx, collection, id, doc); err != nil {
		metrics.EventsConsumed.WithLabelValues("failed").Inc()
	} else {
		metrics.EventsConsumed.WithLabelValues("processed").Inc()
	}
	c.ack(ctx, log, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, log logger.Logger, msgID string) {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msgID).Err(); err != nil {
		log.WithError(err).Error("event acknowledge failed", nil)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

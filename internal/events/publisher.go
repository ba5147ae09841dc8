package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

const (
	StreamName    = "CATALOG_EVENTS"
	SubjectPrefix = "catalog"

	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ItemEvent is the payload published for every catalog item change.
type ItemEvent struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Kind          models.ItemKind `json:"kind"`
	ItemID        string          `json:"itemId"`
	Name          string          `json:"name,omitempty"`
	Price         float64         `json:"price,omitempty"`
	IsAvailable   bool            `json:"isAvailable"`
	CategoryID    string          `json:"categoryId,omitempty"`
	OwnerID       string          `json:"ownerId,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	ChangedFields []string        `json:"changedFields,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Subject is the NATS subject for a change of kind, e.g. catalog.product.created.
func Subject(kind models.ItemKind, change string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, kind, change)
}

// Publisher publishes catalog item events to JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the catalog stream exists.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	log := logger.WithField("component", "catalog-events")

	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("Disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to ensure catalog stream (may already exist)")
	}

	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}

func (p *Publisher) PublishItemCreated(ctx context.Context, item *models.CatalogItem) error {
	return p.publish(ctx, BuildItemEvent(ChangeCreated, item, nil))
}

func (p *Publisher) PublishItemUpdated(ctx context.Context, item *models.CatalogItem, changedFields []string) error {
	return p.publish(ctx, BuildItemEvent(ChangeUpdated, item, changedFields))
}

func (p *Publisher) PublishItemDeleted(ctx context.Context, kind models.ItemKind, id uuid.UUID) error {
	return p.publish(ctx, &ItemEvent{
		EventID:   uuid.New().String(),
		EventType: Subject(kind, ChangeDeleted),
		Kind:      kind,
		ItemID:    id.String(),
		Timestamp: time.Now().UTC(),
	})
}

// BuildItemEvent flattens a catalog item into an event payload.
func BuildItemEvent(change string, item *models.CatalogItem, changedFields []string) *ItemEvent {
	event := &ItemEvent{
		EventID:       uuid.New().String(),
		EventType:     Subject(item.Kind(), change),
		Kind:          item.Kind(),
		ItemID:        item.ID().String(),
		Name:          item.Base.Name,
		Price:         item.Base.Price,
		IsAvailable:   item.Available(),
		OwnerID:       item.Base.OwnerID.String(),
		ChangedFields: changedFields,
		Timestamp:     time.Now().UTC(),
	}
	if item.Base.CategoryID != nil {
		event.CategoryID = item.Base.CategoryID.String()
	}
	if pv, ok := item.Variant.(models.ProductVariant); ok {
		event.SKU = pv.SKU
	}
	return event
}

// publish sends the event asynchronously so the request path never waits on NATS.
func (p *Publisher) publish(_ context.Context, event *ItemEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fields := logrus.Fields{
			"eventType": event.EventType,
			"itemID":    event.ItemID,
		}
		if _, err := p.js.Publish(pubCtx, event.EventType, data, jetstream.WithMsgID(event.EventID)); err != nil {
			p.logger.WithFields(fields).WithError(err).Error("Failed to publish catalog event")
			return
		}
		p.logger.WithFields(fields).Debug("Catalog event published")
	}()

	return nil
}

package mqtt

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"elektropregled/internal/service"
)

// Publisher is the part of the broker client the sync publisher needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// SyncPublisher forwards committed syncs to an MQTT topic so back-office
// consumers can pick up new inspections.
type SyncPublisher struct {
	client Publisher
	topic  string
	qos    byte
	logger *zap.Logger
}

func NewSyncPublisher(client Publisher, topic string, qos byte, logger *zap.Logger) *SyncPublisher {
	return &SyncPublisher{client: client, topic: topic, qos: qos, logger: logger}
}

var _ service.SyncNotifier = (*SyncPublisher)(nil)

// Notify publishes evt as JSON. Failures are logged only.
func (p *SyncPublisher) Notify(_ context.Context, evt service.SyncedEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("Failed to encode sync event", zap.Error(err))
		return
	}
	if err := p.client.Publish(p.topic, p.qos, false, payload); err != nil {
		p.logger.Warn("Failed to publish sync event",
			zap.String("topic", p.topic),
			zap.Int64("inspection_id", evt.InspectionID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Sync event published",
		zap.String("topic", p.topic),
		zap.Int64("inspection_id", evt.InspectionID),
	)
}

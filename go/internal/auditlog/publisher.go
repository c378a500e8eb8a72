package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher relays audit events to a NATS subject per action, e.g.
// fantamarket.market.BID_PLACED.
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *slog.Logger
}

func NewNATSPublisher(conn *nats.Conn, subjectPrefix string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	subject := fmt.Sprintf("%s.market.%s", p.subjectPrefix, event.Action)

	envelope := map[string]interface{}{
		"eventId":   event.ID.String(),
		"action":    event.Action,
		"timestamp": event.CreatedAt,
		"payload":   event.Details,
	}
	if event.ActorID != nil {
		envelope["actorId"] = event.ActorID.String()
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(subject, messageBytes); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("published audit event",
		slog.String("subject", subject),
		slog.Int("size", len(messageBytes)))

	return nil
}

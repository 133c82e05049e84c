package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// SummaryEnvelope is the wire envelope for aggregate snapshots fanned
// out between devices.
type SummaryEnvelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	GameID    string          `json:"game_id"`
	DeviceID  string          `json:"device_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

const envelopeTypeSummary = "GameSummary"

// summarySubject builds the per-session snapshot subject.
func summarySubject(prefix, sessionID string) string {
	return fmt.Sprintf("%s.session.%s.summary", prefix, sessionID)
}

// Publisher fans aggregate snapshots out over NATS so other devices in
// the session can reconcile.
type Publisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewPublisher wraps an existing NATS connection.
func NewPublisher(nc *nats.Conn, subjectPrefix string) *Publisher {
	return &Publisher{nc: nc, subjectPrefix: subjectPrefix}
}

// PublishSummary publishes the snapshot envelope. Fire-and-forget:
// delivery is best effort, reconciliation tolerates missed snapshots.
func (p *Publisher) PublishSummary(ctx context.Context, sum models.GameSummary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	envelope := SummaryEnvelope{
		Type:      envelopeTypeSummary,
		SessionID: sum.SessionID.String(),
		GameID:    sum.GameID.String(),
		DeviceID:  sum.DeviceID,
		Timestamp: sum.SavedAt,
		Payload:   payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	subject := summarySubject(p.subjectPrefix, envelope.SessionID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

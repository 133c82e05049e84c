package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// ListenerConfig holds the NATS snapshot subscription settings.
type ListenerConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultListenerConfig returns the standard subscription settings.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "jass",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// SnapshotHandler receives decoded aggregate snapshots.
type SnapshotHandler interface {
	ApplySnapshot(ctx context.Context, sum models.GameSummary) (bool, error)
}

// Listener subscribes to a session's snapshot subject and feeds
// incoming aggregates to the reconciler. Subscription failures are
// connectivity warnings; local state continues unsynced until
// recovery.
type Listener struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	handler SnapshotHandler
	config  ListenerConfig
}

// NewListener connects to NATS with reconnect handlers.
func NewListener(config ListenerConfig, handler SnapshotHandler) (*Listener, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Listener{
		nc:      nc,
		handler: handler,
		config:  config,
	}, nil
}

// Conn exposes the underlying connection so a Publisher can share it.
func (l *Listener) Conn() *nats.Conn { return l.nc }

// Start subscribes to the session's snapshot subject.
func (l *Listener) Start(ctx context.Context, sessionID string) error {
	subject := summarySubject(l.config.SubjectPrefix, sessionID)
	sub, err := l.nc.Subscribe(subject, func(msg *nats.Msg) {
		l.handleMessage(ctx, msg)
	})
	if err != nil {
		return &RemoteReadError{Op: "subscribe", Err: err}
	}
	l.sub = sub
	log.Info().Str("subject", subject).Msg("listening for remote snapshots")
	return nil
}

func (l *Listener) handleMessage(ctx context.Context, msg *nats.Msg) {
	var envelope SummaryEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("malformed snapshot envelope")
		return
	}
	if envelope.Type != envelopeTypeSummary {
		log.Debug().Str("type", envelope.Type).Msg("ignoring unknown envelope type")
		return
	}

	var sum models.GameSummary
	if err := json.Unmarshal(envelope.Payload, &sum); err != nil {
		log.Warn().Err(err).Msg("malformed snapshot payload")
		return
	}

	adopted, err := l.handler.ApplySnapshot(ctx, sum)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot reconciliation failed")
		return
	}
	if adopted {
		log.Debug().
			Str("game_id", envelope.GameID).
			Str("source_device", envelope.DeviceID).
			Msg("remote snapshot applied")
	}
}

// Close unsubscribes and drops the connection.
func (l *Listener) Close() {
	if l.sub != nil {
		_ = l.sub.Unsubscribe()
	}
	if l.nc != nil {
		l.nc.Close()
	}
}

package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const connectTimeout = 5 * time.Second

// Publisher fans out notifications to per-owner Redis channels so live
// clients can react without polling. Delivery is fire and forget; the
// notification is already persisted before it reaches this layer.
type Publisher struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewPublisher connects to Redis, or returns a no-op publisher when the
// feature is disabled.
func NewPublisher(cfg config.PublisherConfig, logger zerolog.Logger) (*Publisher, error) {
	componentLogger := logger.With().Str("component", "Publisher").Logger()

	p := &Publisher{
		prefix: cfg.ChannelPrefix,
		logger: componentLogger,
	}
	if !cfg.Enabled {
		componentLogger.Info().Msg("Publisher disabled, running with no-op sink")
		return p, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errorwrapper.WrapError(err, "connecting to redis at "+cfg.RedisAddr)
	}

	p.client = client
	componentLogger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	return p, nil
}

// PublishNotification sends the notification on the owner's channel. Failures
// are logged, never propagated; a dead Redis must not fail a check cycle.
func (p *Publisher) PublishNotification(ctx context.Context, n *models.Notification) {
	if p.client == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		p.logger.Error().Err(err).Str("notification_id", n.ID).Msg("Failed to encode notification")
		return
	}
	p.PublishToOwner(ctx, n.OwnerID, payload)
}

// PublishToOwner sends a raw payload on an owner's channel.
func (p *Publisher) PublishToOwner(ctx context.Context, ownerID string, payload []byte) {
	if p.client == nil {
		return
	}

	channel := p.prefix + ":" + ownerID
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn().Err(err).Str("channel", channel).Msg("Failed to publish update")
		return
	}
	p.logger.Debug().Str("channel", channel).Msg("Update published")
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/charlesng35/collegehub/pkg/logger"
)

// DefaultRelayChannel is the pub/sub channel shared by every instance.
const DefaultRelayChannel = "collegehub:notifications"

// envelope is the wire format published on the relay channel.
// An empty AccountID means the message goes to every connected account.
type envelope struct {
	Origin    string  `json:"origin"`
	AccountID string  `json:"account_id,omitempty"`
	Message   Message `json:"message"`
}

// RedisRelay fans realtime messages out across server instances.
// Messages are delivered to the local hub immediately and published for the other instances.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	local   *Hub
	origin  string
	log     *zap.Logger
}

// NewRedisRelay wraps a local hub with a redis pub/sub relay.
func NewRedisRelay(client redis.UniversalClient, channel string, local *Hub) (*RedisRelay, error) {
	if client == nil {
		return nil, errors.New("realtime relay: redis client is required")
	}
	if local == nil {
		return nil, errors.New("realtime relay: local hub is required")
	}
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		origin:  uuid.NewString(),
		log:     logger.WithModule("realtime"),
	}, nil
}

// BroadcastToUser delivers locally and publishes the message for accountID.
func (r *RedisRelay) BroadcastToUser(accountID string, message Message) {
	r.local.BroadcastToUser(accountID, message)
	r.publish(envelope{Origin: r.origin, AccountID: accountID, Message: message})
}

// Broadcast delivers locally and publishes the message for every account.
func (r *RedisRelay) Broadcast(message Message) {
	r.local.Broadcast(message)
	r.publish(envelope{Origin: r.origin, Message: message})
}

// Run subscribes to the relay channel and forwards remote messages to the local hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("realtime relay: subscribe %s: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver([]byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) publish(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		r.log.Warn("encode relay message", zap.Error(err))
		return
	}
	if err := r.client.Publish(context.Background(), r.channel, payload).Err(); err != nil {
		r.log.Warn("publish relay message", zap.String("channel", r.channel), zap.Error(err))
	}
}

// deliver hands a remote envelope to the local hub. Envelopes from this instance are skipped.
func (r *RedisRelay) deliver(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		r.log.Warn("decode relay message", zap.Error(err))
		return
	}
	if env.Origin == r.origin {
		return
	}
	if env.AccountID == "" {
		r.local.Broadcast(env.Message)
		return
	}
	r.local.BroadcastToUser(env.AccountID, env.Message)
}

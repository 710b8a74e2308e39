package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	EventTransactionCreated  = "transaction.created"
	EventTransactionUpdated  = "transaction.updated"
	EventTransactionAccepted = "transaction.accepted"
	EventTransactionRejected = "transaction.rejected"
	EventTransactionSettled  = "transaction.settled"
	EventFriendOnline        = "friend.online"
	EventFriendOffline       = "friend.offline"
)

// Event is the JSON envelope published to each interested user's channel.
type Event struct {
	Name          string  `json:"name"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Type          string  `json:"type,omitempty"`
	FromUserID    string  `json:"from_user_id,omitempty"`
	ToUserID      string  `json:"to_user_id,omitempty"`
	UserID        string  `json:"user_id,omitempty"`
}

// RedisNotifier fans events out over Redis pub/sub, one channel per user.
// Delivery to connected clients is whatever subscribes to those channels.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func userChannel(userID string) string {
	return "events:user:" + userID
}

func (n *RedisNotifier) publish(ctx context.Context, userIDs []string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	for _, id := range userIDs {
		if err := n.client.Publish(ctx, userChannel(id), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish %s to %s: %w", ev.Name, id, err)
		}
	}
	return nil
}

func (n *RedisNotifier) TransactionCreated(ctx context.Context, txID string, amount float64, txType, fromUserID, toUserID string) error {
	return n.publish(ctx, []string{fromUserID, toUserID}, Event{
		Name:          EventTransactionCreated,
		TransactionID: txID,
		Amount:        amount,
		Type:          txType,
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
	})
}

func (n *RedisNotifier) TransactionUpdated(ctx context.Context, txID string, userIDs []string) error {
	return n.publish(ctx, userIDs, Event{Name: EventTransactionUpdated, TransactionID: txID})
}

func (n *RedisNotifier) TransactionAccepted(ctx context.Context, txID, senderID, receiverID string) error {
	return n.publish(ctx, []string{senderID, receiverID}, Event{
		Name:          EventTransactionAccepted,
		TransactionID: txID,
		FromUserID:    senderID,
		ToUserID:      receiverID,
	})
}

func (n *RedisNotifier) TransactionRejected(ctx context.Context, txID, senderID, receiverID string) error {
	return n.publish(ctx, []string{senderID, receiverID}, Event{
		Name:          EventTransactionRejected,
		TransactionID: txID,
		FromUserID:    senderID,
		ToUserID:      receiverID,
	})
}

func (n *RedisNotifier) TransactionSettled(ctx context.Context, txID string, userIDs []string) error {
	return n.publish(ctx, userIDs, Event{Name: EventTransactionSettled, TransactionID: txID})
}

func (n *RedisNotifier) FriendOnline(ctx context.Context, friendIDs []string, userID string) error {
	return n.publish(ctx, friendIDs, Event{Name: EventFriendOnline, UserID: userID})
}

func (n *RedisNotifier) FriendOffline(ctx context.Context, friendIDs []string, userID string) error {
	return n.publish(ctx, friendIDs, Event{Name: EventFriendOffline, UserID: userID})
}

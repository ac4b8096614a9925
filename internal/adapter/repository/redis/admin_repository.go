package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/rtc-event-log/internal/domain"
)

// AdminRepository implements domain.StreamAdminRepository on Redis.
type AdminRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewAdminRepository creates a new Redis admin repository.
func NewAdminRepository(client *redis.Client, logger *slog.Logger) *AdminRepository {
	return &AdminRepository{client: client, logger: logger}
}

// GroupStatus lists the consumer groups attached to a stream.
func (r *AdminRepository) GroupStatus(ctx context.Context, stream string) ([]domain.GroupStatus, error) {
	groups, err := r.client.XInfoGroups(ctx, stream).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get group info for stream %s: %w", stream, err)
	}

	result := make([]domain.GroupStatus, len(groups))
	for i, g := range groups {
		result[i] = domain.GroupStatus{
			Name:            g.Name,
			Consumers:       g.Consumers,
			Pending:         g.Pending,
			LastDeliveredID: g.LastDeliveredID,
		}
	}
	return result, nil
}

// ConsumerStatus lists the consumers in a group.
func (r *AdminRepository) ConsumerStatus(ctx context.Context, stream, group string) ([]domain.ConsumerStatus, error) {
	consumers, err := r.client.XInfoConsumers(ctx, stream, group).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer info for stream %s, group %s: %w", stream, group, err)
	}

	result := make([]domain.ConsumerStatus, len(consumers))
	for i, c := range consumers {
		result[i] = domain.ConsumerStatus{
			Name:    c.Name,
			Pending: c.Pending,
			Idle:    time.Duration(c.Idle) * time.Millisecond,
		}
	}
	return result, nil
}

// PendingSummary summarizes unacknowledged deliveries for a group.
func (r *AdminRepository) PendingSummary(ctx context.Context, stream, group string) (*domain.PendingSummary, error) {
	pending, err := r.client.XPending(ctx, stream, group).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending summary for stream %s, group %s: %w", stream, group, err)
	}
	return newPendingSummary(pending), nil
}

func newPendingSummary(p *redis.XPending) *domain.PendingSummary {
	return &domain.PendingSummary{
		Total:          p.Count,
		FirstMessageID: p.Lower,
		LastMessageID:  p.Higher,
		ConsumerTotals: p.Consumers,
	}
}

// PendingEntries lists unacknowledged deliveries in detail.
func (r *AdminRepository) PendingEntries(ctx context.Context, stream, group, consumer, startID string, count int64) ([]domain.PendingEntry, error) {
	args := &redis.XPendingExtArgs{
		Stream:   stream,
		Group:    group,
		Start:    startID,
		End:      "+",
		Count:    count,
		Consumer: consumer,
	}

	messages, err := r.client.XPendingExt(ctx, args).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending entries: %w", err)
	}

	result := make([]domain.PendingEntry, len(messages))
	for i, m := range messages {
		result[i] = domain.PendingEntry{
			ID:         m.ID,
			Consumer:   m.Consumer,
			IdleTime:   m.Idle,
			RetryCount: m.RetryCount,
		}
	}
	return result, nil
}

// ClaimRecords claims pending deliveries for a new consumer and decodes
// them back into records.
func (r *AdminRepository) ClaimRecords(ctx context.Context, stream, group, consumer string, minIdle time.Duration, messageIDs []string) ([]domain.Record, error) {
	args := &redis.XClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: messageIDs,
	}

	claimed, err := r.client.XClaim(ctx, args).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim messages: %w", err)
	}

	recs := make([]domain.Record, 0, len(claimed))
	for _, msg := range claimed {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			r.logger.Warn("claimed message has no payload field", "message_id", msg.ID)
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			r.logger.Warn("failed to unmarshal claimed message into record", "message_id", msg.ID, "error", err)
			continue
		}
		rec.StreamMessageID = msg.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// AcknowledgeMessages acknowledges messages in a stream.
func (r *AdminRepository) AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, errors.New("at least one message ID is required")
	}
	return r.client.XAck(ctx, stream, group, messageIDs...).Result()
}

// TrimStream trims a stream to a maximum length.
func (r *AdminRepository) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	return r.client.XTrimMaxLen(ctx, stream, maxLen).Result()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/rtc-event-log/internal/adapter/metrics"
	"github.com/user/rtc-event-log/internal/domain"
)

const recordStreamKey = "rtc_event_records"

var errNotImplemented = errors.New("method not implemented for this repository type")

// RecordRepository implements domain.RecordRepository on Redis Streams.
// When Redis is unreachable the collector keeps accepting records by
// spilling them to the local WAL; a background health check replays the
// WAL once Redis recovers.
type RecordRepository struct {
	client       *redis.Client
	logger       *slog.Logger
	wal          domain.WALRepository
	metrics      *metrics.CollectorMetrics
	dlqStreamKey string
	isAvailable  atomic.Bool
}

// NewRecordRepository creates a new Redis-backed RecordRepository. The WAL
// and metrics are optional; consumers pass nil for both.
func NewRecordRepository(client *redis.Client, logger *slog.Logger, group, dlqStreamKey string, wal domain.WALRepository, m *metrics.CollectorMetrics) (*RecordRepository, error) {
	repo := &RecordRepository{
		client:       client,
		logger:       logger.With("component", "redis_repository"),
		wal:          wal,
		metrics:      m,
		dlqStreamKey: dlqStreamKey,
	}
	repo.isAvailable.Store(true)

	if err := repo.setupConsumerGroup(context.Background(), group); err != nil {
		repo.isAvailable.Store(false)
		repo.logger.Error("failed to setup consumer group, Redis may be unavailable on startup", "error", err)
	}
	return repo, nil
}

// StartHealthCheck monitors Redis connectivity and triggers WAL replay on
// recovery. It blocks until ctx is cancelled.
func (r *RecordRepository) StartHealthCheck(ctx context.Context, interval time.Duration) {
	if r.wal == nil {
		r.logger.Info("WAL is not configured, skipping health check/replayer")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("starting Redis health check and WAL replayer")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping Redis health check")
			return
		case <-ticker.C:
			if err := r.client.Ping(ctx).Err(); err != nil {
				if r.isAvailable.CompareAndSwap(true, false) {
					r.setWALActive(true)
					r.logger.Error("Redis connection lost", "error", err)
				}
				continue
			}
			if r.isAvailable.CompareAndSwap(false, true) {
				r.logger.Info("Redis connection recovered")
				if err := r.ReplayWAL(ctx); err != nil {
					r.logger.Error("failed to replay WAL after Redis recovery", "error", err)
					r.isAvailable.Store(false)
					continue
				}
				r.setWALActive(false)
			}
		}
	}
}

// ReplayWAL replays spilled records into Redis and truncates the WAL on
// success.
func (r *RecordRepository) ReplayWAL(ctx context.Context) error {
	r.logger.Info("attempting to replay WAL to Redis")

	if err := r.wal.Replay(ctx, func(rec domain.Record) error {
		return r.bufferToRedis(ctx, rec)
	}); err != nil {
		return fmt.Errorf("WAL replay failed: %w", err)
	}
	if err := r.wal.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate WAL after successful replay: %w", err)
	}

	r.logger.Info("WAL replay to Redis completed")
	return nil
}

func (r *RecordRepository) setupConsumerGroup(ctx context.Context, group string) error {
	err := r.client.XGroupCreateMkStream(ctx, recordStreamKey, group, "0").Err()
	if err != nil && !isRedisBusyGroupError(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (r *RecordRepository) setWALActive(active bool) {
	if r.metrics == nil {
		return
	}
	if active {
		r.metrics.WALActive.Set(1)
	} else {
		r.metrics.WALActive.Set(0)
	}
}

// BufferRecord adds a record to the stream, spilling to the WAL when Redis
// is unavailable.
func (r *RecordRepository) BufferRecord(ctx context.Context, rec domain.Record) error {
	if !r.isAvailable.Load() {
		if r.wal == nil {
			return errors.New("redis is unavailable and WAL is not configured")
		}
		r.logger.Warn("Redis is unavailable, writing to WAL", "record_id", rec.ID)
		return r.wal.Write(ctx, rec)
	}

	err := r.bufferToRedis(ctx, rec)
	if err == nil {
		return nil
	}
	if !isNetworkError(err) {
		return err
	}

	if r.isAvailable.CompareAndSwap(true, false) {
		r.setWALActive(true)
		r.logger.Error("Redis connection lost during write", "error", err)
	}
	if r.wal == nil {
		return fmt.Errorf("redis became unavailable and WAL is not configured: %w", err)
	}
	r.logger.Warn("Redis became unavailable, writing to WAL", "record_id", rec.ID)
	return r.wal.Write(ctx, rec)
}

func (r *RecordRepository) bufferToRedis(ctx context.Context, rec domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: recordStreamKey,
		Values: map[string]interface{}{"payload": payload},
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

// ReadRecordBatch reads a batch of records from the stream for a consumer
// group.
func (r *RecordRepository) ReadRecordBatch(ctx context.Context, group, consumer string, count int) ([]domain.Record, error) {
	args := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{recordStreamKey, ">"},
		Count:    int64(count),
		Block:    2 * time.Second,
	}

	streams, err := r.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to XREADGROUP from redis: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	messages := streams[0].Messages
	recs := make([]domain.Record, 0, len(messages))
	for _, msg := range messages {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			r.logger.Warn("invalid message format in stream, skipping", "message_id", msg.ID)
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			r.logger.Warn("failed to unmarshal record from stream, skipping", "message_id", msg.ID, "error", err)
			continue
		}
		rec.StreamMessageID = msg.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// AcknowledgeRecords acknowledges processed messages in the stream.
func (r *RecordRepository) AcknowledgeRecords(ctx context.Context, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := r.client.XAck(ctx, recordStreamKey, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("failed to XACK messages in redis: %w", err)
	}
	return nil
}

// MoveToDLQ parks a batch of records on the dead-letter stream.
func (r *RecordRepository) MoveToDLQ(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			r.logger.Error("failed to marshal record for DLQ", "record_id", rec.ID, "error", err)
			continue
		}
		args := &redis.XAddArgs{
			Stream: r.dlqStreamKey,
			Values: map[string]interface{}{
				"payload":         payload,
				"original_stream": recordStreamKey,
				"original_msg_id": rec.StreamMessageID,
				"failed_at":       time.Now().UTC().Format(time.RFC3339),
			},
		}
		pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute DLQ pipeline: %w", err)
	}
	r.logger.Warn("moved records to DLQ", "count", len(recs))
	return nil
}

// WriteRecordBatch is not implemented for the buffer repository.
func (r *RecordRepository) WriteRecordBatch(ctx context.Context, recs []domain.Record) error {
	return errNotImplemented
}

func isRedisBusyGroupError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

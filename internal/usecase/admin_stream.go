package usecase

import (
	"context"
	"time"

	"github.com/user/rtc-event-log/internal/domain"
)

// AdminStreamUseCase provides operational controls over the record buffer
// stream.
type AdminStreamUseCase struct {
	repo domain.StreamAdminRepository
}

// NewAdminStreamUseCase creates a new AdminStreamUseCase.
func NewAdminStreamUseCase(repo domain.StreamAdminRepository) *AdminStreamUseCase {
	return &AdminStreamUseCase{repo: repo}
}

func (uc *AdminStreamUseCase) GroupStatus(ctx context.Context, stream string) ([]domain.GroupStatus, error) {
	return uc.repo.GroupStatus(ctx, stream)
}

func (uc *AdminStreamUseCase) ConsumerStatus(ctx context.Context, stream, group string) ([]domain.ConsumerStatus, error) {
	return uc.repo.ConsumerStatus(ctx, stream, group)
}

func (uc *AdminStreamUseCase) PendingSummary(ctx context.Context, stream, group string) (*domain.PendingSummary, error) {
	return uc.repo.PendingSummary(ctx, stream, group)
}

func (uc *AdminStreamUseCase) PendingEntries(ctx context.Context, stream, group, consumer, startID string, count int64) ([]domain.PendingEntry, error) {
	if startID == "" {
		startID = "-"
	}
	if count <= 0 {
		count = 100
	}
	return uc.repo.PendingEntries(ctx, stream, group, consumer, startID, count)
}

func (uc *AdminStreamUseCase) ClaimRecords(ctx context.Context, stream, group, consumer string, minIdle time.Duration, messageIDs []string) ([]domain.Record, error) {
	return uc.repo.ClaimRecords(ctx, stream, group, consumer, minIdle, messageIDs)
}

func (uc *AdminStreamUseCase) AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error) {
	return uc.repo.AcknowledgeMessages(ctx, stream, group, messageIDs...)
}

func (uc *AdminStreamUseCase) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	return uc.repo.TrimStream(ctx, stream, maxLen)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

// AuditCleanupWorker prunes audit logs past their retention and outbox rows
// that were published long enough ago.
type AuditCleanupWorker struct {
	auditRepo       repository.AuditRepository
	outboxRepo      repository.OutboxRepository
	retentionDays   int
	outboxRetention time.Duration
	cleanupInterval time.Duration
}

func NewAuditCleanupWorker(auditRepo repository.AuditRepository, outboxRepo repository.OutboxRepository,
	retentionDays int, outboxRetention, cleanupInterval time.Duration) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		auditRepo:       auditRepo,
		outboxRepo:      outboxRepo,
		retentionDays:   retentionDays,
		outboxRetention: outboxRetention,
		cleanupInterval: cleanupInterval,
	}
}

func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Cleanup(ctx, time.Now()); err != nil {
				log.Error().Err(err).Msg("cleanup failed")
			}
		}
	}
}

// Cleanup runs one pruning pass relative to now.
func (w *AuditCleanupWorker) Cleanup(ctx context.Context, now time.Time) error {
	cutoff := now.AddDate(0, 0, -w.retentionDays)
	rows, err := w.auditRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	log.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("cleaned up audit logs")

	if w.outboxRepo == nil || w.outboxRetention <= 0 {
		return nil
	}
	rows, err = w.outboxRepo.DeleteProcessedBefore(ctx, now.Add(-w.outboxRetention))
	if err != nil {
		return fmt.Errorf("failed to cleanup outbox events: %w", err)
	}
	log.Info().Int64("rows", rows).Msg("cleaned up processed outbox events")
	return nil
}

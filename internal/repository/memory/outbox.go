package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.s.outbox = append(r.s.outbox, &cp)
	return nil
}

func (r *outboxRepo) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := now()
	out := []*model.OutboxEvent{}
	for _, e := range r.s.outbox {
		if len(out) >= limit {
			break
		}
		if e.Status != model.OutboxStatusPending || (e.RetryAt != nil && e.RetryAt.After(t)) {
			continue
		}
		e.Status = model.OutboxStatusProcessing
		e.UpdatedAt = t
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *outboxRepo) find(id uuid.UUID) (*model.OutboxEvent, error) {
	for _, e := range r.s.outbox {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *outboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, err := r.find(id)
	if err != nil {
		return err
	}
	t := now()
	e.Status = model.OutboxStatusProcessed
	e.ErrorMessage = nil
	e.ProcessedAt = &t
	e.UpdatedAt = t
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, err := r.find(id)
	if err != nil {
		return err
	}
	e.Status = model.OutboxStatusFailed
	if retryAt != nil {
		e.Status = model.OutboxStatusPending
	}
	e.ErrorMessage = &errorMessage
	e.RetryAt = retryAt
	e.RetryCount++
	e.UpdatedAt = now()
	return nil
}

func (r *outboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var n int64
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return n, nil
}

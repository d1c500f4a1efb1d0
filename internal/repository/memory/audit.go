package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now()
	}
	cp := *log
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r *auditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.audit[:0]
	var n int64
	for _, l := range r.s.audit {
		if l.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.s.audit = kept
	return n, nil
}

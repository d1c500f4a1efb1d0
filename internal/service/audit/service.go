package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type metaKey struct{}

// WithRequestMeta stores the client details audit entries are stamped with.
func WithRequestMeta(ctx context.Context, meta model.RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) model.RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(model.RequestMeta)
	return meta
}

// Entry describes one audited action.
type Entry struct {
	UserID     *int64
	Action     string
	EntityType string
	EntityID   int64
	Metadata   map[string]interface{}
}

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, e Entry) error {
	var metadata json.RawMessage
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = raw
	}

	meta := RequestMetaFrom(ctx)
	entry := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   strconv.FormatInt(e.EntityID, 10),
		Metadata:   metadata,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}
	return s.repo.Create(ctx, entry)
}

// Record logs the entry and only warns on failure; auditing never fails a request.
func (s *Service) Record(ctx context.Context, e Entry) {
	if err := s.Log(ctx, e); err != nil {
		log.Warn().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Int64("entity_id", e.EntityID).
			Msg("failed to write audit log")
	}
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}

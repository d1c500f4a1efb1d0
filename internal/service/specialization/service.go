package specialization

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/jwalitptl/careconnect-api/internal/access"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/common"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

const (
	resource   = "specialization"
	listKey    = "specializations:active"
	defaultTTL = 30 * time.Second
)

// Service serves specializations. The active listing is cached and concurrent
// misses share one load. A load only fills the cache if no write invalidated
// it while the load was running.
type Service struct {
	repo       repository.SpecializationRepository
	cache      *cache.Cache
	group      singleflight.Group
	generation atomic.Uint64
}

func NewService(repo repository.SpecializationRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *Service) List(ctx context.Context, principal model.Principal, includeDeleted bool) ([]*model.Specialization, error) {
	if includeDeleted {
		if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
			return nil, err
		}
		specs, err := s.repo.List(ctx, model.ScopeAll)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		return specs, nil
	}

	if cached, ok := s.cache.Get(listKey); ok {
		return cached.([]*model.Specialization), nil
	}
	// the load is shared, so it must outlive the caller that started it
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(listKey, func() (interface{}, error) {
		gen := s.generation.Load()
		specs, err := s.repo.List(loadCtx, model.ScopeActive)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			s.cache.SetDefault(listKey, specs)
		}
		return specs, nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return v.([]*model.Specialization), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Specialization, error) {
	spec, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}
	return spec, nil
}

func (s *Service) Create(ctx context.Context, principal model.Principal, req *model.CreateSpecializationRequest) (*model.Specialization, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	spec := &model.Specialization{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, spec); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.Invalidate()
	return spec, nil
}

func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, req *model.UpdateSpecializationRequest) (*model.Specialization, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	spec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(spec)
	if err := s.repo.Update(ctx, spec); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	s.Invalidate()
	return spec, nil
}

func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return common.FromRepo(resource, err)
	}
	s.Invalidate()
	return nil
}

func (s *Service) Restore(ctx context.Context, principal model.Principal, id int64) (*model.Specialization, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	s.Invalidate()
	return s.Get(ctx, id)
}

// Invalidate drops the cached listing. A load already in flight is detached
// so later callers start a fresh one, and its result is not cached.
func (s *Service) Invalidate() {
	s.generation.Add(1)
	s.group.Forget(listKey)
	s.cache.Delete(listKey)
}

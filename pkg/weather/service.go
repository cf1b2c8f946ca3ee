package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/singleflight"
)

// Cache stores recent readings keyed by coordinates.
type Cache interface {
	Get(ctx context.Context, lat, lon float64) (*Conditions, bool, error)
	Set(ctx context.Context, lat, lon float64, c *Conditions, ttl time.Duration) error
}

// Service fronts a Provider with request collapsing and an optional cache.
type Service struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	group    singleflight.Group
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache enables read-through caching for ttl.
func WithCache(c Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// NewService wraps provider.
func NewService(provider Provider, opts ...ServiceOption) *Service {
	s := &Service{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the conditions at lat/lon. Concurrent requests for the
// same coordinates share one upstream call.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrFetchFailed)
	}
	if s.cache != nil && s.ttl > 0 {
		cached, ok, err := s.cache.Get(ctx, lat, lon)
		if err != nil {
			logx.WithContext(ctx).Errorf("weather cache get %.4f,%.4f: %v", lat, lon, err)
		} else if ok {
			return cached, nil
		}
	}

	key := fmt.Sprintf("%.4f:%.4f", lat, lon)
	v, err, _ := s.group.Do(key, func() (any, error) {
		c, err := s.provider.Current(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.ttl > 0 {
			if err := s.cache.Set(ctx, lat, lon, c, s.ttl); err != nil {
				logx.WithContext(ctx).Errorf("weather cache set %s: %v", key, err)
			}
		}
		return c, nil
	})
	if err != nil {
		if !errors.Is(err, ErrFetchFailed) {
			err = fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		return nil, err
	}
	out := *v.(*Conditions)
	return &out, nil
}

// ForEstate resolves name against the estate registry and fetches its
// conditions.
func (s *Service) ForEstate(ctx context.Context, name string) (Estate, *Conditions, error) {
	estate, ok := LookupEstate(name)
	if !ok {
		return Estate{}, nil, fmt.Errorf("%w: %q", ErrUnknownEstate, name)
	}
	c, err := s.Current(ctx, estate.Latitude, estate.Longitude)
	if err != nil {
		return estate, nil, err
	}
	return estate, c, nil
}

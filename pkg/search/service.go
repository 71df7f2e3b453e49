// Package search passes catalog queries through to the backend with two
// guards: a per-session debounce on the query stream, and suppression of
// duplicate in-flight requests for the same query.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded means a newer query from the same session arrived during
// the debounce window; the caller should discard this request silently.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Backend runs the actual catalog search.
type Backend interface {
	SearchProducts(ctx context.Context, query commerce.ProductQuery) (*models.ProductPage, error)
}

type Service struct {
	backend  Backend
	debounce *Debouncer
	group    singleflight.Group
	logger   *zap.Logger
}

func NewService(backend Backend, debounce *Debouncer, logger *zap.Logger) *Service {
	return &Service{
		backend:  backend,
		debounce: debounce,
		logger:   logger,
	}
}

// Search debounces per session, then fetches. Identical queries already in
// flight share one backend call instead of issuing duplicates.
func (s *Service) Search(ctx context.Context, sessionID string, query commerce.ProductQuery) (*models.ProductPage, error) {
	if !s.debounce.Wait(ctx, sessionID) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrSuperseded
	}

	key := fmt.Sprintf("%s|%d|%d", query.Keyword, query.Page, query.Size)
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.backend.SearchProducts(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("search shared an in-flight request", zap.String("key", key))
	}
	return v.(*models.ProductPage), nil
}

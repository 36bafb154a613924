// Package cart persists the PWA's per-user cart. It is convenience state:
// checkout takes the lines the client submits, and a successful checkout
// clears the stored cart.
package cart

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Daddtdrey/eatai/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "cart").Logger()

type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetCart returns the stored cart, or an empty one for users who have none.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, cacheErr := s.cache.Get(ctx, userID)
		if cacheErr == nil {
			return cached, nil
		}
		if !errors.Is(cacheErr, ErrCacheMiss) {
			logger.Warn().Err(cacheErr).Msg("cache get error") // degrade to repository
		}

		stored, repoErr := s.repo.GetCart(ctx, userID)
		if errors.Is(repoErr, ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if repoErr != nil {
			return nil, repoErr
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if setErr := s.cache.Set(setCtx, userID, stored); setErr != nil {
				logger.Warn().Err(setErr).Msg("cache set error")
			}
		}()

		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *Service) AddLine(ctx context.Context, userID string, item domain.CartItem) error {
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) error {
	if err := s.repo.RemoveItem(ctx, userID, lineID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// Clear drops the stored cart, e.g. after a successful checkout. A missing
// cart is not an error here.
func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		logger.Warn().Err(err).Msg("cache invalidate error")
	}
}

// Package catalog owns admin product CRUD and the location-scoped shop
// listing. Every write goes through domain.NewProduct so the rest of the
// system only ever sees validated, normalized products.
package catalog

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Daddtdrey/eatai/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "catalog").Logger()

// ProductRepository is what the service needs from storage.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProductsByLocation(ctx context.Context, location string) ([]*domain.Product, error)
}

type Service struct {
	repo  ProductRepository
	cache ProductCache
	sfg   singleflight.Group // Prevents cache stampede on listing
}

func NewService(repo ProductRepository, cache ProductCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ProductInput is the raw boundary shape for create and update.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Vendor      string  `json:"vendor"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := domain.NewProduct(in.Name, in.Description, in.Vendor, in.Location, in.Category, in.ImageURL, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(p.Location)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := domain.NewProduct(in.Name, in.Description, in.Vendor, in.Location, in.Category, in.ImageURL, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	p.ID = id

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(p.Location)
	if existing.Location != p.Location {
		s.invalidate(existing.Location)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(existing.Location)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListByLocation serves the shop view: cache first, then the repository
// behind singleflight so concurrent misses for the same town trigger a
// single query.
func (s *Service) ListByLocation(ctx context.Context, location string) ([]*domain.Product, error) {
	loc, err := domain.NormalizeLocation(location)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.sfg.Do(loc, func() (interface{}, error) {
		products, cacheErr := s.cache.Get(ctx, loc)
		if cacheErr == nil {
			return products, nil
		}
		if !errors.Is(cacheErr, ErrCacheMiss) {
			logger.Warn().Err(cacheErr).Msg("cache get error") // degrade to repository
		}

		products, repoErr := s.repo.ListProductsByLocation(ctx, loc)
		if repoErr != nil {
			return nil, repoErr
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if setErr := s.cache.Set(setCtx, loc, products); setErr != nil {
				logger.Warn().Err(setErr).Msg("cache set error")
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (s *Service) invalidate(location string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, location); err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("cache invalidate error")
	}
}

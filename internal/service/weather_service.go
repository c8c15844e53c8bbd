package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ForecastSource is the upstream weather API.
type ForecastSource interface {
	SearchCities(ctx context.Context, query string, limit int) ([]model.City, error)
	Forecast(ctx context.Context, lat, lon float64) (*model.ForecastBundle, error)
}

type WeatherService interface {
	SearchCities(ctx context.Context, query string, limit int) ([]model.City, error)
	Forecast(ctx context.Context, lat, lon float64) (*model.ForecastBundle, error)
}

type weatherService struct {
	source ForecastSource
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewWeatherService wraps the upstream API with an optional Redis cache.
// cache may be nil, in which case every call goes upstream.
func NewWeatherService(source ForecastSource, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) WeatherService {
	return &weatherService{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("service", "WeatherService").Logger(),
	}
}

func (s *weatherService) SearchCities(ctx context.Context, query string, limit int) ([]model.City, error) {
	return s.source.SearchCities(ctx, query, limit)
}

func (s *weatherService) Forecast(ctx context.Context, lat, lon float64) (*model.ForecastBundle, error) {
	key := forecastCacheKey(lat, lon)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var bundle model.ForecastBundle
			if err := json.Unmarshal(raw, &bundle); err == nil {
				return &bundle, nil
			}
			s.logger.Warn().Str("key", key).Msg("Corrupt forecast cache entry, refetching")
		case !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Str("key", key).Msg("Forecast cache read failed")
		}
	}

	bundle, err := s.source.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(bundle); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Forecast cache write failed")
			}
		}
	}
	return bundle, nil
}

// forecastCacheKey rounds coordinates to two decimals (~1km) so nearby
// requests share a cache entry.
func forecastCacheKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.2f:%.2f", lat, lon)
}
